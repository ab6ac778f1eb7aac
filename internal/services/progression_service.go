package services

import (
	"context"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/db/repositories"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

// ProgressionService owns XP accumulation, level derivation, badge
// evaluation and the daily-login bonus. All per-user read-modify-write
// runs under the user's key lock; state lives in the directory store and
// the append-only transaction log, never on the service.
type ProgressionService struct {
	store   store.DirectoryStore
	locks   common.KeyLocker
	txnRepo *repositories.XPTransactionRepository
	metrics *metrics.MetricsRegistry
}

func NewProgressionService(st store.DirectoryStore, locks common.KeyLocker, txnRepo *repositories.XPTransactionRepository) *ProgressionService {
	return &ProgressionService{
		store:   st,
		locks:   locks,
		txnRepo: txnRepo,
		metrics: metrics.NewMetricsRegistry(),
	}
}

func userKey(userID string) string {
	return "user:" + userID
}

func levelForXP(xp int) int {
	return xp/constants.XPPerLevel + 1
}

func (s *ProgressionService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	doc, err := s.store.Get(ctx, constants.CollectionUsers, userID)
	if err != nil {
		return nil, err
	}
	var user entities.User
	if err := doc.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AwardXP resolves the amount from the explicit override or the action
// table (unknown actions resolve to 0 and still log a transaction),
// applies it to the user's xp/level and appends one audit row.
func (s *ProgressionService) AwardXP(ctx context.Context, userID string, action constants.XPAction, explicitAmount *int, referenceID string) (*dtos.AwardResult, error) {
	release, err := s.locks.Acquire(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	return s.awardLocked(ctx, userID, action, explicitAmount, referenceID, nil, nil)
}

// awardLocked performs the read-modify-write cycle. Callers must hold the
// user's key lock. extraDelta rides along in the same document write as
// the xp fields so the award and any companion field land or fail as one
// unit; extraRollback restores those fields if the log append fails.
func (s *ProgressionService) awardLocked(ctx context.Context, userID string, action constants.XPAction, explicitAmount *int, referenceID string, extraDelta, extraRollback map[string]any) (*dtos.AwardResult, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	amount := 0
	if explicitAmount != nil {
		amount = *explicitAmount
	} else if v, ok := constants.XPValues[action]; ok {
		amount = v
	}

	oldLevel := levelForXP(user.XP)
	newXP := user.XP + amount
	newLevel := levelForXP(newXP)

	delta := map[string]any{
		"xp":        newXP,
		"level":     newLevel,
		"updatedAt": time.Now().UTC(),
	}
	for k, v := range extraDelta {
		delta[k] = v
	}
	if err := s.store.Update(ctx, constants.CollectionUsers, userID, delta); err != nil {
		return nil, err
	}

	txn := &entities.XPTransaction{
		UserID:      userID,
		Action:      string(action),
		Amount:      amount,
		ReferenceID: referenceID,
	}
	if err := s.txnRepo.Append(ctx, txn); err != nil {
		// Keep xp and the log consistent: undo the doc write before
		// reporting failure. The lock is still held so nobody has
		// observed the intermediate state through a mutation path.
		rollback := map[string]any{
			"xp":    user.XP,
			"level": oldLevel,
		}
		for k, v := range extraRollback {
			rollback[k] = v
		}
		rollbackErr := s.store.Update(ctx, constants.CollectionUsers, userID, rollback)
		if rollbackErr != nil {
			logging.Error("xp rollback failed after log append error",
				"user_id", userID, "error", rollbackErr.Error())
		}
		return nil, err
	}

	s.metrics.XPAwardsTotal.WithLabelValues(string(action)).Inc()
	logging.Info("xp awarded",
		"user_id", userID, "action", string(action), "amount", amount,
		"xp", newXP, "level", newLevel)

	return &dtos.AwardResult{
		UserID:    userID,
		Action:    string(action),
		Amount:    amount,
		XP:        newXP,
		Level:     newLevel,
		LeveledUp: newLevel > oldLevel,
	}, nil
}

// CheckAndAwardBadges evaluates thresholds highest-first and awards the
// single highest newly-qualifying tier per pass, looping until no pass
// adds a tier. The badge set only ever grows.
func (s *ProgressionService) CheckAndAwardBadges(ctx context.Context, userID string) ([]string, error) {
	release, err := s.locks.Acquire(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	var awarded []string
	for {
		user, err := s.getUser(ctx, userID)
		if err != nil {
			return awarded, err
		}

		var next constants.BadgeTier
		for _, tier := range constants.BadgeOrder {
			if user.XP >= constants.BadgeThresholds[tier] && !user.HasBadge(string(tier)) {
				next = tier
				break
			}
		}
		if next == "" {
			return awarded, nil
		}

		badges := append(user.Badges, string(next))
		err = s.store.Update(ctx, constants.CollectionUsers, userID, map[string]any{
			"badges": badges,
		})
		if err != nil {
			return awarded, err
		}

		awarded = append(awarded, string(next))
		s.metrics.BadgeAwardsTotal.WithLabelValues(string(next)).Inc()
		logging.Info("badge awarded", "user_id", userID, "tier", string(next), "xp", user.XP)
	}
}

// GetUserProgress is a pure read.
func (s *ProgressionService) GetUserProgress(ctx context.Context, userID string) (*dtos.ProgressResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	level := user.Level
	if level < 1 {
		level = 1
	}
	return &dtos.ProgressResponse{
		XP:              user.XP,
		Level:           level,
		ProgressInLevel: user.XP - (level-1)*constants.XPPerLevel,
		XPToNextLevel:   constants.XPPerLevel,
	}, nil
}

var badgeCatalog = []dtos.BadgeInfo{
	{Type: string(constants.BadgeBeginner), Title: "Beginner", Description: "Join your first club"},
	{Type: string(constants.BadgeActive), Title: "Active Member", Description: "500 XP earned"},
	{Type: string(constants.BadgeSuperstar), Title: "Superstar", Description: "2000 XP earned"},
	{Type: string(constants.BadgeLegend), Title: "Legend", Description: "5000 XP earned"},
}

// GetUserBadges returns the full badge catalog with the user's earned flags.
func (s *ProgressionService) GetUserBadges(ctx context.Context, userID string) (*dtos.BadgesResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	badges := make([]dtos.BadgeInfo, len(badgeCatalog))
	copy(badges, badgeCatalog)
	for i := range badges {
		badges[i].Threshold = constants.BadgeThresholds[constants.BadgeTier(badges[i].Type)]
		badges[i].Earned = user.HasBadge(badges[i].Type)
	}
	return &dtos.BadgesResponse{Badges: badges, CurrentXP: user.XP}, nil
}

// GetLeaderboard returns the top users ordered by xp descending.
func (s *ProgressionService) GetLeaderboard(ctx context.Context, limit int) ([]dtos.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	docs, err := s.store.Query(ctx, constants.CollectionUsers, nil,
		store.OrderBy("xp", true),
		store.Limit(limit),
	)
	if err != nil {
		return nil, err
	}

	entries := make([]dtos.LeaderboardEntry, 0, len(docs))
	for i, doc := range docs {
		var user entities.User
		if err := doc.Decode(&user); err != nil {
			return nil, err
		}
		level := user.Level
		if level < 1 {
			level = 1
		}
		badges := user.Badges
		if badges == nil {
			badges = []string{}
		}
		entries = append(entries, dtos.LeaderboardEntry{
			Rank:   i + 1,
			UserID: user.ID,
			Name:   user.Name,
			XP:     user.XP,
			Level:  level,
			Badges: badges,
		})
	}
	return entries, nil
}

// sameUTCDate compares only the date portion in the fixed reference
// timezone (UTC).
func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// CheckDailyLogin awards the DAILY_LOGIN bonus at most once per calendar
// date. The check and the award run under the user's key lock so two
// concurrent claims (two app tabs) yield exactly one transaction.
func (s *ProgressionService) CheckDailyLogin(ctx context.Context, userID string) (*dtos.DailyLoginResponse, error) {
	release, err := s.locks.Acquire(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}

	resp, err := func() (*dtos.DailyLoginResponse, error) {
		defer release()

		user, err := s.getUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		if user.LastLogin != nil && sameUTCDate(*user.LastLogin, now) {
			s.metrics.DailyLoginClaims.WithLabelValues("already_claimed").Inc()
			return &dtos.DailyLoginResponse{AlreadyClaimed: true}, nil
		}

		// lastLogin advances inside the award's own document write. A
		// failed claim leaves the date untouched, so retrying the same
		// day passes the check and cannot double-award.
		result, err := s.awardLocked(ctx, userID, constants.ActionDailyLogin, nil, "",
			map[string]any{"lastLogin": now},
			map[string]any{"lastLogin": user.LastLogin})
		if err != nil {
			return nil, err
		}

		s.metrics.DailyLoginClaims.WithLabelValues("claimed").Inc()
		return &dtos.DailyLoginResponse{AlreadyClaimed: false, XPAwarded: result.Amount}, nil
	}()
	if err != nil || resp.AlreadyClaimed {
		return resp, err
	}

	// Lock released above; badge evaluation takes it again.
	if _, err := s.CheckAndAwardBadges(ctx, userID); err != nil {
		logging.Warn("badge check after daily login failed", "user_id", userID, "error", err.Error())
	}
	return resp, nil
}
