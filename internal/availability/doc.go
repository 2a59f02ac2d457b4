// Package availability implements the pure scheduling engine: resolving a
// calendar day into open work windows, expanding windows into candidate
// slots, and filtering candidates against notice, booking and blackout
// constraints. The package holds no state and performs no I/O; callers feed
// it the rows they fetched and the current instant.
package availability
