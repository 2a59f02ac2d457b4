package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.Default().With("request_id", "req-1")
	ctx := ContextWithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected the attached logger back, got %v", got)
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil for a bare context, got %v", got)
	}
}

func TestFromContextOr(t *testing.T) {
	t.Parallel()

	attached := slog.Default().With("request_id", "req-2")
	fallback := slog.Default().With("service", "booking")

	if got := FromContextOr(ContextWithLogger(context.Background(), attached), fallback); got != attached {
		t.Fatalf("context logger must win over the fallback, got %v", got)
	}
	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Fatalf("expected the fallback logger, got %v", got)
	}
	if got := FromContextOr(context.Background(), nil); got == nil {
		t.Fatal("FromContextOr must never return nil")
	}
}
