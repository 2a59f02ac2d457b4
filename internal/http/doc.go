// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - GET /availability?date=YYYY-MM-DD: resolves the bookable slots for one
//     date. Response: {"date","slots","duration_minutes","buffer_minutes"}.
//     The slot list is advisory; booking revalidates against live state.
//   - GET /bookings, POST /bookings, PUT /bookings/{id},
//     POST /bookings/{id}/cancel: booking lifecycle endpoints exchanging the
//     `bookingDTO` payload defined in booking_handler.go. A slot taken between
//     read and commit yields 409 Conflict.
//   - GET /settings, PUT /settings: the organizer's rule set (timezone,
//     meeting duration, buffer, minimum notice).
//   - GET /schedule/defaults, PUT /schedule/defaults (replace-all),
//     DELETE /schedule/defaults/{id}: the recurring weekly template.
//   - GET /schedule/overrides[?date=], POST /schedule/overrides,
//     DELETE /schedule/overrides/{id}: date-specific replacement windows.
//   - GET /blackouts, POST /blackouts, DELETE /blackouts/{id}: hard
//     unavailable intervals.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
