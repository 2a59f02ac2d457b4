package http

import "context"

type contextKey string

const (
	bookingIDContextKey  contextKey = "booking_id"
	defaultIDContextKey  contextKey = "weekly_default_id"
	overrideIDContextKey contextKey = "override_id"
	blackoutIDContextKey contextKey = "blackout_id"
)

// ContextWithBookingID injects the booking identifier resolved from the request path.
func ContextWithBookingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, bookingIDContextKey, id)
}

// BookingIDFromContext extracts a booking identifier previously associated with the context.
func BookingIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(bookingIDContextKey).(string)
	return id, ok
}

// ContextWithDefaultID injects a weekly default identifier resolved from the request path.
func ContextWithDefaultID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, defaultIDContextKey, id)
}

// DefaultIDFromContext extracts a weekly default identifier previously associated with the context.
func DefaultIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(defaultIDContextKey).(string)
	return id, ok
}

// ContextWithOverrideID injects an override identifier resolved from the request path.
func ContextWithOverrideID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, overrideIDContextKey, id)
}

// OverrideIDFromContext extracts an override identifier previously associated with the context.
func OverrideIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(overrideIDContextKey).(string)
	return id, ok
}

// ContextWithBlackoutID injects a blackout identifier resolved from the request path.
func ContextWithBlackoutID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, blackoutIDContextKey, id)
}

// BlackoutIDFromContext extracts a blackout identifier previously associated with the context.
func BlackoutIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(blackoutIDContextKey).(string)
	return id, ok
}
