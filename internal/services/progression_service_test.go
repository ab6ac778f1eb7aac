package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/db/repositories"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

func newProgressionService(t *testing.T, st store.DirectoryStore) *ProgressionService {
	return NewProgressionService(st, common.NewMutexKeyLock(), newTestTxnRepo(t))
}

func userDoc(t *testing.T, st store.DirectoryStore, userID string) *entities.User {
	t.Helper()
	doc, err := st.Get(context.Background(), constants.CollectionUsers, userID)
	if err != nil {
		t.Fatalf("Failed to fetch user %s: %v", userID, err)
	}
	var user entities.User
	if err := doc.Decode(&user); err != nil {
		t.Fatalf("Failed to decode user: %v", err)
	}
	return &user
}

func TestProgressionService_AwardXP_LevelUp(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	svc := newProgressionService(t, st)

	result, err := svc.AwardXP(context.Background(), "user-1", constants.ActionAttendEvent, nil, "event-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Amount != 100 {
		t.Errorf("Expected amount 100, got %d", result.Amount)
	}
	if result.XP != 100 || result.Level != 2 {
		t.Errorf("Expected xp=100 level=2, got xp=%d level=%d", result.XP, result.Level)
	}
	if !result.LeveledUp {
		t.Error("Expected LeveledUp true")
	}
}

func TestProgressionService_AwardXP_NoLevelUp(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 480)

	svc := newProgressionService(t, st)

	result, err := svc.AwardXP(context.Background(), "user-1", constants.ActionDailyLogin, nil, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.XP != 490 || result.Level != 5 {
		t.Errorf("Expected xp=490 level=5, got xp=%d level=%d", result.XP, result.Level)
	}
	if result.LeveledUp {
		t.Error("Expected LeveledUp false, 480 and 490 are both level 5")
	}
}

func TestProgressionService_AwardXP_UnknownActionLogsZero(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 250)

	txnRepo := newTestTxnRepo(t)
	svc := NewProgressionService(st, common.NewMutexKeyLock(), txnRepo)
	ctx := context.Background()

	result, err := svc.AwardXP(ctx, "user-1", constants.XPAction("MYSTERY_ACTION"), nil, "ref-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Amount != 0 || result.XP != 250 {
		t.Errorf("Expected zero-amount no-op, got amount=%d xp=%d", result.Amount, result.XP)
	}

	// The audit row is still written
	logged, err := txnRepo.HasAward(ctx, "user-1", "MYSTERY_ACTION", "ref-1")
	if err != nil {
		t.Fatalf("HasAward failed: %v", err)
	}
	if !logged {
		t.Error("Expected a transaction row for the zero-amount award")
	}
}

func TestProgressionService_AwardXP_ExplicitAmountOverride(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	svc := newProgressionService(t, st)

	amount := 350
	result, err := svc.AwardXP(context.Background(), "user-1", constants.ActionClubLeadership, &amount, "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Amount != 350 || result.XP != 350 || result.Level != 4 {
		t.Errorf("Expected amount=350 xp=350 level=4, got %+v", result)
	}
}

func TestProgressionService_CheckAndAwardBadges_AllTiers(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 5200)

	svc := newProgressionService(t, st)

	awarded, err := svc.CheckAndAwardBadges(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Highest qualifying tier first, then the loop backfills the rest
	want := []string{
		string(constants.BadgeLegend),
		string(constants.BadgeSuperstar),
		string(constants.BadgeActive),
		string(constants.BadgeBeginner),
	}
	if !reflect.DeepEqual(awarded, want) {
		t.Errorf("Expected %v, got %v", want, awarded)
	}

	user := userDoc(t, st, "user-1")
	if len(user.Badges) != 4 {
		t.Errorf("Expected 4 badges persisted, got %v", user.Badges)
	}
}

func TestProgressionService_CheckAndAwardBadges_Monotonic(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 600)

	svc := newProgressionService(t, st)
	ctx := context.Background()

	if _, err := svc.CheckAndAwardBadges(ctx, "user-1"); err != nil {
		t.Fatalf("Badge check failed: %v", err)
	}
	before := userDoc(t, st, "user-1").Badges

	// Second pass with unchanged xp awards nothing and removes nothing
	awarded, err := svc.CheckAndAwardBadges(ctx, "user-1")
	if err != nil {
		t.Fatalf("Badge check failed: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("Expected no new badges, got %v", awarded)
	}
	after := userDoc(t, st, "user-1").Badges
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Badge set changed across a no-op pass: %v -> %v", before, after)
	}
}

func TestProgressionService_GetUserProgress(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 250)

	svc := newProgressionService(t, st)

	progress, err := svc.GetUserProgress(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if progress.XP != 250 || progress.Level != 3 {
		t.Errorf("Expected xp=250 level=3, got %+v", progress)
	}
	if progress.ProgressInLevel != 50 || progress.XPToNextLevel != 100 {
		t.Errorf("Expected 50/100 into level, got %+v", progress)
	}
}

func TestProgressionService_GetUserBadges(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 700)

	svc := newProgressionService(t, st)
	ctx := context.Background()

	if _, err := svc.CheckAndAwardBadges(ctx, "user-1"); err != nil {
		t.Fatalf("Badge check failed: %v", err)
	}

	resp, err := svc.GetUserBadges(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserBadges failed: %v", err)
	}
	if resp.CurrentXP != 700 {
		t.Errorf("Expected current xp 700, got %d", resp.CurrentXP)
	}
	if len(resp.Badges) != 4 {
		t.Fatalf("Expected full catalog of 4 badges, got %d", len(resp.Badges))
	}
	for _, b := range resp.Badges {
		earned := b.Type == string(constants.BadgeBeginner) || b.Type == string(constants.BadgeActive)
		if b.Earned != earned {
			t.Errorf("Badge %s: expected earned=%v, got %v", b.Type, earned, b.Earned)
		}
	}
}

func TestProgressionService_GetLeaderboard(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 300)
	seedUser(t, st, "user-2", 900)
	seedUser(t, st, "user-3", 100)

	svc := newProgressionService(t, st)

	entries, err := svc.GetLeaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != "user-2" || entries[0].Rank != 1 {
		t.Errorf("Expected user-2 at rank 1, got %+v", entries[0])
	}
	if entries[1].UserID != "user-1" || entries[1].Rank != 2 {
		t.Errorf("Expected user-1 at rank 2, got %+v", entries[1])
	}
}

func TestProgressionService_CheckDailyLogin_OncePerDay(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	svc := newProgressionService(t, st)
	ctx := context.Background()

	first, err := svc.CheckDailyLogin(ctx, "user-1")
	if err != nil {
		t.Fatalf("First claim failed: %v", err)
	}
	if first.AlreadyClaimed || first.XPAwarded != 10 {
		t.Errorf("Expected fresh claim of 10 XP, got %+v", first)
	}

	second, err := svc.CheckDailyLogin(ctx, "user-1")
	if err != nil {
		t.Fatalf("Second claim failed: %v", err)
	}
	if !second.AlreadyClaimed {
		t.Error("Expected second claim on the same date to be rejected")
	}

	if got := userDoc(t, st, "user-1").XP; got != 10 {
		t.Errorf("Expected xp 10 after duplicate claim, got %d", got)
	}
}

func TestProgressionService_CheckDailyLogin_NewDate(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	yesterday := time.Now().UTC().Add(-24 * time.Hour)
	err := st.Update(context.Background(), constants.CollectionUsers, "user-1", map[string]any{
		"lastLogin": yesterday,
	})
	if err != nil {
		t.Fatalf("Seeding lastLogin failed: %v", err)
	}

	svc := newProgressionService(t, st)

	resp, err := svc.CheckDailyLogin(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if resp.AlreadyClaimed {
		t.Error("Expected a fresh claim on a new calendar date")
	}
}

func TestProgressionService_CheckDailyLogin_ConcurrentSingleAward(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	txnRepo := newTestTxnRepo(t)
	svc := NewProgressionService(st, common.NewMutexKeyLock(), txnRepo)
	ctx := context.Background()

	const attempts = 6
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CheckDailyLogin(ctx, "user-1"); err != nil {
				t.Errorf("Claim failed: %v", err)
			}
		}()
	}
	wg.Wait()

	count, err := txnRepo.CountByUserAndAction(ctx, "user-1", string(constants.ActionDailyLogin))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 logged claim, got %d", count)
	}
	if got := userDoc(t, st, "user-1").XP; got != 10 {
		t.Errorf("Expected xp 10, got %d", got)
	}
}

// failingUpdateStore fails the first Update whose delta carries the named
// field, then behaves normally. Models a transient store error during a
// claim.
type failingUpdateStore struct {
	store.DirectoryStore
	field  string
	failed bool
}

func (s *failingUpdateStore) Update(ctx context.Context, collection, id string, delta map[string]any) error {
	if !s.failed {
		if _, ok := delta[s.field]; ok {
			s.failed = true
			return store.ErrUnavailable
		}
	}
	return s.DirectoryStore.Update(ctx, collection, id, delta)
}

func TestProgressionService_CheckDailyLogin_RetryAfterWriteFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	seedUser(t, mem, "user-1", 0)
	st := &failingUpdateStore{DirectoryStore: mem, field: "lastLogin"}

	txnRepo := newTestTxnRepo(t)
	svc := NewProgressionService(st, common.NewMutexKeyLock(), txnRepo)
	ctx := context.Background()

	if _, err := svc.CheckDailyLogin(ctx, "user-1"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Expected store.ErrUnavailable on the first claim, got %v", err)
	}
	if got := userDoc(t, mem, "user-1").XP; got != 0 {
		t.Fatalf("Expected no xp after the failed claim, got %d", got)
	}

	resp, err := svc.CheckDailyLogin(ctx, "user-1")
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if resp.AlreadyClaimed {
		t.Error("Expected the retry to claim, the failed attempt wrote nothing")
	}

	count, err := txnRepo.CountByUserAndAction(ctx, "user-1", string(constants.ActionDailyLogin))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 logged claim after retry, got %d", count)
	}
	if got := userDoc(t, mem, "user-1").XP; got != 10 {
		t.Errorf("Expected xp 10, got %d", got)
	}

	resp, err = svc.CheckDailyLogin(ctx, "user-1")
	if err != nil {
		t.Fatalf("Third claim failed: %v", err)
	}
	if !resp.AlreadyClaimed {
		t.Error("Expected a third claim on the same date to be rejected")
	}
}

func TestProgressionService_CheckDailyLogin_LogAppendFailureRollsBack(t *testing.T) {
	st := store.NewMemoryStore()
	seedUser(t, st, "user-1", 0)

	gdb := setupTestDB(t)
	txnRepo := repositories.NewXPTransactionRepository(gdb)
	svc := NewProgressionService(st, common.NewMutexKeyLock(), txnRepo)
	ctx := context.Background()

	if err := gdb.Migrator().DropTable(&entities.XPTransaction{}); err != nil {
		t.Fatalf("Dropping transaction table failed: %v", err)
	}
	if _, err := svc.CheckDailyLogin(ctx, "user-1"); err == nil {
		t.Fatal("Expected an error while the transaction log is down")
	}

	user := userDoc(t, st, "user-1")
	if user.XP != 0 {
		t.Errorf("Expected xp rolled back to 0, got %d", user.XP)
	}
	if user.LastLogin != nil {
		t.Errorf("Expected lastLogin rolled back to unset, got %v", user.LastLogin)
	}

	if err := gdb.AutoMigrate(&entities.XPTransaction{}); err != nil {
		t.Fatalf("Restoring transaction table failed: %v", err)
	}
	resp, err := svc.CheckDailyLogin(ctx, "user-1")
	if err != nil {
		t.Fatalf("Claim after recovery failed: %v", err)
	}
	if resp.AlreadyClaimed {
		t.Error("Expected a fresh claim after recovery")
	}
	count, err := txnRepo.CountByUserAndAction(ctx, "user-1", string(constants.ActionDailyLogin))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 logged claim, got %d", count)
	}
}
