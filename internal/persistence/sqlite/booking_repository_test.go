package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

func testBooking(id string, start time.Time, buffer time.Duration) persistence.Booking {
	end := start.Add(30 * time.Minute)
	return persistence.Booking{
		ID:            id,
		OrganizerID:   "org-1",
		GuestName:     "Ada Lovelace",
		GuestEmail:    "ada@example.com",
		Start:         start,
		End:           end,
		BufferedStart: start.Add(-buffer),
		BufferedEnd:   end.Add(buffer),
		Status:        persistence.BookingStatusConfirmed,
		CreatedAt:     start.Add(-24 * time.Hour),
		UpdatedAt:     start.Add(-24 * time.Hour),
	}
}

func TestBookingRepository_InsertAndGet(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	booking := testBooking("booking-1", start, 10*time.Minute)

	if err := repo.InsertConfirmedIfNoConflict(ctx, booking); err != nil {
		t.Fatalf("InsertConfirmedIfNoConflict failed: %v", err)
	}

	stored, err := repo.GetBooking(ctx, "org-1", "booking-1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if !stored.Start.Equal(start) {
		t.Fatalf("expected start %v, got %v", start, stored.Start)
	}
	if !stored.BufferedStart.Equal(start.Add(-10 * time.Minute)) {
		t.Fatalf("buffered start not persisted: %v", stored.BufferedStart)
	}
	if stored.Status != persistence.BookingStatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", stored.Status)
	}
}

func TestBookingRepository_InsertRejectsBufferedOverlap(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 30, 0, 0, time.UTC)
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	// 09:00-09:30 buffers to 08:50-09:40 and collides with 09:20-10:10.
	conflicting := testBooking("booking-2", start.Add(-30*time.Minute), 10*time.Minute)
	err := repo.InsertConfirmedIfNoConflict(ctx, conflicting)
	if !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if _, err := repo.GetBooking(ctx, "org-1", "booking-2"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("conflicting insert must not persist anything, got %v", err)
	}
}

func TestBookingRepository_InsertAllowsAbuttingBufferedIntervals(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	// First booking's buffered interval ends 09:40; a booking whose buffered
	// interval starts exactly there does not intersect under half-open
	// semantics.
	next := testBooking("booking-2", start.Add(50*time.Minute), 10*time.Minute)
	if err := repo.InsertConfirmedIfNoConflict(ctx, next); err != nil {
		t.Fatalf("abutting buffered intervals must not conflict: %v", err)
	}
}

func TestBookingRepository_CancelledRowsDoNotBlock(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}
	if err := repo.SetStatus(ctx, "org-1", "booking-1", persistence.BookingStatusCancelled, start); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-2", start, 10*time.Minute)); err != nil {
		t.Fatalf("cancelled booking must release its interval: %v", err)
	}
}

func TestBookingRepository_ConcurrentInsertsExactlyOneWins(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	const attempts = 8

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			booking := testBooking(fmt.Sprintf("booking-%d", i), start, 10*time.Minute)
			results[i] = repo.InsertConfirmedIfNoConflict(ctx, booking)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, persistence.ErrConflict):
		default:
			t.Fatalf("attempt %d returned unexpected error: %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}

	stored, err := repo.ListConfirmedOverlapping(ctx, "org-1", start.Add(-time.Hour), start.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListConfirmedOverlapping failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected exactly one confirmed row, got %d", len(stored))
	}
}

// Opens two pools over the same database file, the way two service instances
// would. Immediate transactions make the second writer block at BEGIN until
// the first commits, so the loser re-runs its overlap check against the
// committed row and reports ErrConflict instead of a raw busy error.
func TestBookingRepository_SeparatePoolsSameFileConflictCleanly(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "bookingd_shared.db")
	openPool := func() *ConnectionPool {
		pool, err := Open(dsn)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		t.Cleanup(func() {
			if err := pool.Close(); err != nil {
				t.Errorf("Close failed: %v", err)
			}
		})
		return pool
	}

	poolA := openPool()
	poolB := openPool()
	if err := poolA.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	repoA := NewBookingRepository(poolA)
	repoB := NewBookingRepository(poolB)
	ctx := context.Background()

	base := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	const rounds = 10
	for round := 0; round < rounds; round++ {
		start := base.Add(time.Duration(round) * 2 * time.Hour)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, repo := range []*BookingRepository{repoA, repoB} {
			wg.Add(1)
			go func(i int, repo *BookingRepository) {
				defer wg.Done()
				booking := testBooking(fmt.Sprintf("booking-%d-%d", round, i), start, 10*time.Minute)
				errs[i] = repo.InsertConfirmedIfNoConflict(ctx, booking)
			}(i, repo)
		}
		wg.Wait()

		winners := 0
		for i, err := range errs {
			switch {
			case err == nil:
				winners++
			case errors.Is(err, persistence.ErrConflict):
			default:
				t.Fatalf("round %d pool %d returned unexpected error: %v", round, i, err)
			}
		}
		if winners != 1 {
			t.Fatalf("round %d: expected exactly one winner, got %d", round, winners)
		}

		stored, err := repoA.ListConfirmedOverlapping(ctx, "org-1", start.Add(-time.Hour), start.Add(time.Hour))
		if err != nil {
			t.Fatalf("round %d: ListConfirmedOverlapping failed: %v", round, err)
		}
		if len(stored) != 1 {
			t.Fatalf("round %d: expected exactly one confirmed row, got %d", round, len(stored))
		}
	}
}

func TestBookingRepository_UpdateSwapsSlotInPlace(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	original := testBooking("booking-1", start, 10*time.Minute)
	if err := repo.InsertConfirmedIfNoConflict(ctx, original); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	moved := testBooking("booking-1", start.Add(2*time.Hour), 10*time.Minute)
	moved.GuestName = "Grace Hopper"
	moved.GuestEmail = "grace@example.com"
	if err := repo.UpdateIfNoConflict(ctx, moved); err != nil {
		t.Fatalf("UpdateIfNoConflict failed: %v", err)
	}

	stored, err := repo.GetBooking(ctx, "org-1", "booking-1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if !stored.Start.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected start moved, got %v", stored.Start)
	}
	if stored.GuestName != "Grace Hopper" {
		t.Fatalf("expected guest fields updated, got %s", stored.GuestName)
	}
	if !stored.CreatedAt.Equal(original.CreatedAt.Truncate(time.Second)) {
		t.Fatalf("created_at must survive a reschedule, got %v", stored.CreatedAt)
	}

	// The old interval is free again.
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-2", start, 10*time.Minute)); err != nil {
		t.Fatalf("old interval should be released after reschedule: %v", err)
	}
}

func TestBookingRepository_UpdateConflictLeavesRowUntouched(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	occupied := start.Add(3 * time.Hour)
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-2", occupied, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	attempt := testBooking("booking-1", occupied, 10*time.Minute)
	if err := repo.UpdateIfNoConflict(ctx, attempt); !errors.Is(err, persistence.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	stored, err := repo.GetBooking(ctx, "org-1", "booking-1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if !stored.Start.Equal(start) {
		t.Fatalf("failed reschedule must leave the original slot, got %v", stored.Start)
	}
}

func TestBookingRepository_UpdateExcludesSelfFromConflictCheck(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	// Shifting by less than the buffered width overlaps the booking's own
	// old interval; only the self-exclusion makes this legal.
	nudged := testBooking("booking-1", start.Add(15*time.Minute), 10*time.Minute)
	if err := repo.UpdateIfNoConflict(ctx, nudged); err != nil {
		t.Fatalf("reschedule overlapping own interval must succeed: %v", err)
	}
}

func TestBookingRepository_UpdateMissingOrCancelled(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	if err := repo.UpdateIfNoConflict(ctx, testBooking("ghost", start, 0)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}

	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 0)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}
	if err := repo.SetStatus(ctx, "org-1", "booking-1", persistence.BookingStatusCancelled, start); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := repo.UpdateIfNoConflict(ctx, testBooking("booking-1", start.Add(time.Hour), 0)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for cancelled booking, got %v", err)
	}
}

func TestBookingRepository_ListUpcoming(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	base := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	past := testBooking("past", base.Add(-48*time.Hour), 0)
	soon := testBooking("soon", base.Add(time.Hour), 0)
	later := testBooking("later", base.Add(72*time.Hour), 0)
	for _, booking := range []persistence.Booking{past, soon, later} {
		if err := repo.InsertConfirmedIfNoConflict(ctx, booking); err != nil {
			t.Fatalf("seed insert %s failed: %v", booking.ID, err)
		}
	}

	upcoming, err := repo.ListUpcoming(ctx, "org-1", base)
	if err != nil {
		t.Fatalf("ListUpcoming failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected 2 upcoming bookings, got %d", len(upcoming))
	}
	if upcoming[0].ID != "soon" || upcoming[1].ID != "later" {
		t.Fatalf("expected ascending order soon,later got %s,%s", upcoming[0].ID, upcoming[1].ID)
	}
}

func TestBookingRepository_SetStatusUnknownID(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)

	err := repo.SetStatus(context.Background(), "org-1", "ghost", persistence.BookingStatusCancelled, time.Now())
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookingRepository_OrganizersAreIsolated(t *testing.T) {
	pool := openTestPool(t)
	repo := NewBookingRepository(pool)
	ctx := context.Background()

	start := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)
	if err := repo.InsertConfirmedIfNoConflict(ctx, testBooking("booking-1", start, 10*time.Minute)); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	other := testBooking("booking-2", start, 10*time.Minute)
	other.OrganizerID = "org-2"
	if err := repo.InsertConfirmedIfNoConflict(ctx, other); err != nil {
		t.Fatalf("bookings of different organizers must not conflict: %v", err)
	}
}
