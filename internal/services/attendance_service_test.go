package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

func attendeeCount(t *testing.T, st store.DirectoryStore, eventID string) int {
	t.Helper()
	doc, err := st.Get(context.Background(), constants.CollectionEvents, eventID)
	if err != nil {
		t.Fatalf("Failed to fetch event %s: %v", eventID, err)
	}
	var event entities.Event
	if err := doc.Decode(&event); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	return event.AttendeeCount
}

func TestAttendanceService_MarkAttendance_Success(t *testing.T) {
	st := store.NewMemoryStore()
	seedClub(t, st, "club-1")
	seedEvent(t, st, "event-1", "club-1")
	seedUser(t, st, "user-1", 0)

	svc := NewAttendanceService(st, common.NewMutexKeyLock())

	record, err := svc.MarkAttendance(context.Background(), "event-1", "user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if record.EventID != "event-1" || record.UserID != "user-1" {
		t.Errorf("Unexpected record: %+v", record)
	}
	if record.MarkedAt.IsZero() {
		t.Error("Expected MarkedAt to be set")
	}
	if got := attendeeCount(t, st, "event-1"); got != 1 {
		t.Errorf("Expected attendee count 1, got %d", got)
	}
}

func TestAttendanceService_MarkAttendance_Duplicate(t *testing.T) {
	st := store.NewMemoryStore()
	seedClub(t, st, "club-1")
	seedEvent(t, st, "event-1", "club-1")
	seedUser(t, st, "user-1", 0)

	svc := NewAttendanceService(st, common.NewMutexKeyLock())
	ctx := context.Background()

	if _, err := svc.MarkAttendance(ctx, "event-1", "user-1"); err != nil {
		t.Fatalf("First mark failed: %v", err)
	}
	if _, err := svc.MarkAttendance(ctx, "event-1", "user-1"); !errors.Is(err, ErrAlreadyMarked) {
		t.Fatalf("Expected ErrAlreadyMarked, got %v", err)
	}
	if got := attendeeCount(t, st, "event-1"); got != 1 {
		t.Errorf("Expected attendee count 1 after duplicate mark, got %d", got)
	}
}

func TestAttendanceService_MarkAttendance_UnknownEvent(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	svc := NewAttendanceService(st, common.NewMutexKeyLock())

	_, err := svc.MarkAttendance(context.Background(), "missing", "user-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestAttendanceService_ConcurrentMark_OneRow(t *testing.T) {
	st := store.NewMemoryStore()
	seedClub(t, st, "club-1")
	seedEvent(t, st, "event-1", "club-1")
	seedUser(t, st, "user-1", 0)

	svc := NewAttendanceService(st, common.NewMutexKeyLock())
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.MarkAttendance(ctx, "event-1", "user-1")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadyMarked) {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly 1 successful mark, got %d", succeeded)
	}
	if got := attendeeCount(t, st, "event-1"); got != 1 {
		t.Errorf("Expected attendee count 1, got %d", got)
	}
}

func TestAttendanceService_GetUserAttendance_NewestFirst(t *testing.T) {
	st := store.NewMemoryStore()
	seedClub(t, st, "club-1")
	seedEvent(t, st, "event-1", "club-1")
	seedEvent(t, st, "event-2", "club-1")
	seedUser(t, st, "user-1", 0)

	svc := NewAttendanceService(st, common.NewMutexKeyLock())
	ctx := context.Background()

	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(2 * time.Hour)
	for _, rec := range []entities.Attendance{
		{ID: "att-1", EventID: "event-1", UserID: "user-1", MarkedAt: older},
		{ID: "att-2", EventID: "event-2", UserID: "user-1", MarkedAt: newer},
	} {
		if _, err := st.Insert(ctx, constants.CollectionAttendance, &rec); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	records, err := svc.GetUserAttendance(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserAttendance failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].EventID != "event-2" {
		t.Errorf("Expected newest record first, got %s", records[0].EventID)
	}
}
