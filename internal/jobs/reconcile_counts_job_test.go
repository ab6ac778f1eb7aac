package jobs

import (
	"context"
	"testing"
	"time"

	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

func seedDriftedClub(t *testing.T, st store.DirectoryStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	// Counter says 5, only 2 active rows exist
	_, err := st.Insert(ctx, constants.CollectionClubs, &entities.Club{
		ID:          "club-1",
		Name:        "Drifted",
		MemberCount: 5,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("Failed to seed club: %v", err)
	}

	for _, m := range []entities.Membership{
		{ID: "m-1", ClubID: "club-1", UserID: "user-1", Status: constants.MembershipActive, JoinedAt: now},
		{ID: "m-2", ClubID: "club-1", UserID: "user-2", Status: constants.MembershipActive, JoinedAt: now},
		{ID: "m-3", ClubID: "club-1", UserID: "user-3", Status: constants.MembershipRemoved, JoinedAt: now},
	} {
		if _, err := st.Insert(ctx, constants.CollectionMemberships, &m); err != nil {
			t.Fatalf("Failed to seed membership: %v", err)
		}
	}
}

func clubCount(t *testing.T, st store.DirectoryStore, clubID string) int {
	t.Helper()
	doc, err := st.Get(context.Background(), constants.CollectionClubs, clubID)
	if err != nil {
		t.Fatalf("Failed to fetch club: %v", err)
	}
	var club entities.Club
	if err := doc.Decode(&club); err != nil {
		t.Fatalf("Failed to decode club: %v", err)
	}
	return club.MemberCount
}

func TestReconcileCountsJob_RepairsClubDrift(t *testing.T) {
	st := store.NewMemoryStore()
	seedDriftedClub(t, st)

	job := NewReconcileCountsJob(st, metrics.NewMetricsRegistry())

	fixed, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("Expected 1 repaired counter, got %d", fixed)
	}

	// Removed rows don't count
	if got := clubCount(t, st, "club-1"); got != 2 {
		t.Errorf("Expected member count repaired to 2, got %d", got)
	}
}

// raceyQueryStore runs a hook after the first membership query, inside
// the window between the job's recount and its repair write.
type raceyQueryStore struct {
	store.DirectoryStore
	hook  func()
	fired bool
}

func (s *raceyQueryStore) Query(ctx context.Context, collection string, filter store.Filter, opts ...store.Option) ([]store.Document, error) {
	docs, err := s.DirectoryStore.Query(ctx, collection, filter, opts...)
	if err == nil && !s.fired && collection == constants.CollectionMemberships {
		s.fired = true
		s.hook()
	}
	return docs, err
}

func TestReconcileCountsJob_ConcurrentJoinSurvivesRepair(t *testing.T) {
	mem := store.NewMemoryStore()
	seedDriftedClub(t, mem)
	ctx := context.Background()

	// A join lands after the recount but before the repair write: one
	// more active row plus the counter bump every join performs.
	st := &raceyQueryStore{DirectoryStore: mem, hook: func() {
		_, err := mem.Insert(ctx, constants.CollectionMemberships, &entities.Membership{
			ID: "m-4", ClubID: "club-1", UserID: "user-4",
			Status: constants.MembershipActive, JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Failed to insert racing membership: %v", err)
		}
		if _, err := mem.IncrementField(ctx, constants.CollectionClubs, "club-1", "memberCount", 1); err != nil {
			t.Fatalf("Failed to bump racing counter: %v", err)
		}
	}}

	job := NewReconcileCountsJob(st, metrics.NewMetricsRegistry())

	fixed, err := job.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("Expected 1 repaired counter, got %d", fixed)
	}

	// 2 active rows at recount time plus the racing join
	if got := clubCount(t, mem, "club-1"); got != 3 {
		t.Errorf("Expected the racing join to survive the repair, member count = %d, want 3", got)
	}
}

func TestReconcileCountsJob_RepairsEventDrift(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := st.Insert(ctx, constants.CollectionEvents, &entities.Event{
		ID:            "event-1",
		ClubID:        "club-1",
		Title:         "Drifted",
		AttendeeCount: 0,
		StartDate:     now,
		EndDate:       now,
		CreatedAt:     now,
	})
	if err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	_, err = st.Insert(ctx, constants.CollectionAttendance, &entities.Attendance{
		ID: "a-1", EventID: "event-1", UserID: "user-1", MarkedAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to seed attendance: %v", err)
	}

	job := NewReconcileCountsJob(st, metrics.NewMetricsRegistry())

	fixed, err := job.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("Expected 1 repaired counter, got %d", fixed)
	}

	doc, err := st.Get(ctx, constants.CollectionEvents, "event-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	var event entities.Event
	if err := doc.Decode(&event); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if event.AttendeeCount != 1 {
		t.Errorf("Expected attendee count 1, got %d", event.AttendeeCount)
	}
}

func TestReconcileCountsJob_NoDriftNoWrites(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := st.Insert(ctx, constants.CollectionClubs, &entities.Club{
		ID: "club-1", Name: "Clean", MemberCount: 1, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to seed club: %v", err)
	}
	_, err = st.Insert(ctx, constants.CollectionMemberships, &entities.Membership{
		ID: "m-1", ClubID: "club-1", UserID: "user-1", Status: constants.MembershipActive, JoinedAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to seed membership: %v", err)
	}

	job := NewReconcileCountsJob(st, metrics.NewMetricsRegistry())

	fixed, err := job.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fixed != 0 {
		t.Errorf("Expected no repairs, got %d", fixed)
	}

	status := job.Status()
	if status["countersRepaired"] != 0 {
		t.Errorf("Expected status to report 0 repairs, got %v", status["countersRepaired"])
	}
}
