package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

// MembershipService is the membership ledger. It owns the one-active-row-
// per-(club,user) invariant and keeps each club's memberCount equal to its
// active row count.
type MembershipService struct {
	store   store.DirectoryStore
	locks   common.KeyLocker
	metrics *metrics.MetricsRegistry
}

func NewMembershipService(st store.DirectoryStore, locks common.KeyLocker) *MembershipService {
	return &MembershipService{
		store:   st,
		locks:   locks,
		metrics: metrics.NewMetricsRegistry(),
	}
}

func membershipKey(clubID, userID string) string {
	return fmt.Sprintf("membership:%s:%s", clubID, userID)
}

func (s *MembershipService) activeMemberships(ctx context.Context, clubID, userID string) ([]store.Document, error) {
	return s.store.Query(ctx, constants.CollectionMemberships, store.Filter{
		"clubId": clubID,
		"userId": userID,
		"status": constants.MembershipActive,
	})
}

// JoinClub creates an active membership row and bumps the club counter.
// The existence check and the insert run under the pair's key lock; a
// duplicate that still slips past (lost lock on a crashed peer) is rolled
// back and reported as ErrConflict.
func (s *MembershipService) JoinClub(ctx context.Context, clubID, userID string) (*entities.Membership, error) {
	if _, err := s.store.Get(ctx, constants.CollectionClubs, clubID); err != nil {
		return nil, fmt.Errorf("club %s: %w", clubID, err)
	}
	if _, err := s.store.Get(ctx, constants.CollectionUsers, userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}

	release, err := s.locks.Acquire(ctx, membershipKey(clubID, userID))
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.activeMemberships(ctx, clubID, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyMember
	}

	membership := &entities.Membership{
		ClubID:   clubID,
		UserID:   userID,
		Status:   constants.MembershipActive,
		JoinedAt: time.Now().UTC(),
	}
	id, err := s.store.Insert(ctx, constants.CollectionMemberships, membership)
	if err != nil {
		return nil, err
	}
	membership.ID = id

	// Re-validate after the insert. Another instance may have raced us
	// between check and insert if the lock was not cluster-wide.
	rows, err := s.activeMemberships(ctx, clubID, userID)
	if err == nil && len(rows) > 1 {
		_ = s.store.Delete(ctx, constants.CollectionMemberships, id)
		return nil, ErrConflict
	}

	if _, err := s.store.IncrementField(ctx, constants.CollectionClubs, clubID, "memberCount", 1); err != nil {
		return nil, fmt.Errorf("increment member count: %w", err)
	}

	s.metrics.MembershipOpsTotal.WithLabelValues("join").Inc()
	logging.Info("membership created", "club_id", clubID, "user_id", userID)
	return membership, nil
}

// LeaveClub marks the active row removed and decrements the counter,
// floored at 0. A decrement below zero is an integrity fault: it is logged
// and counted for reconciliation, never surfaced to the caller.
func (s *MembershipService) LeaveClub(ctx context.Context, clubID, userID string) error {
	release, err := s.locks.Acquire(ctx, membershipKey(clubID, userID))
	if err != nil {
		return err
	}
	defer release()

	rows, err := s.activeMemberships(ctx, clubID, userID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotMember
	}

	for _, row := range rows {
		err := s.store.Update(ctx, constants.CollectionMemberships, row.ID, map[string]any{
			"status": constants.MembershipRemoved,
		})
		if err != nil {
			return err
		}
	}

	newCount, err := s.store.IncrementField(ctx, constants.CollectionClubs, clubID, "memberCount", -1)
	if err != nil {
		return fmt.Errorf("decrement member count: %w", err)
	}
	if newCount < 0 {
		s.metrics.CounterUnderflowTotal.WithLabelValues(constants.CollectionClubs).Inc()
		logging.Error("CounterUnderflow: club member count went negative",
			"club_id", clubID, "count", newCount)
		_ = s.store.Update(ctx, constants.CollectionClubs, clubID, map[string]any{"memberCount": 0})
	}

	s.metrics.MembershipOpsTotal.WithLabelValues("leave").Inc()
	logging.Info("membership removed", "club_id", clubID, "user_id", userID)
	return nil
}

// ListClubMembers returns the user documents behind a club's active rows,
// deduplicated by user id.
func (s *MembershipService) ListClubMembers(ctx context.Context, clubID string) ([]entities.User, error) {
	rows, err := s.store.Query(ctx, constants.CollectionMemberships, store.Filter{
		"clubId": clubID,
		"status": constants.MembershipActive,
	})
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		var m entities.Membership
		if err := row.Decode(&m); err != nil {
			return nil, err
		}
		if !seen[m.UserID] {
			seen[m.UserID] = true
			userIDs = append(userIDs, m.UserID)
		}
	}

	users := make([]entities.User, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, uid := range userIDs {
		g.Go(func() error {
			doc, err := s.store.Get(gctx, constants.CollectionUsers, uid)
			if err != nil {
				return err
			}
			return doc.Decode(&users[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return users, nil
}

// ListUserClubs returns the club documents a user is an active member of.
func (s *MembershipService) ListUserClubs(ctx context.Context, userID string) ([]entities.Club, error) {
	rows, err := s.store.Query(ctx, constants.CollectionMemberships, store.Filter{
		"userId": userID,
		"status": constants.MembershipActive,
	})
	if err != nil {
		return nil, err
	}

	clubIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		var m entities.Membership
		if err := row.Decode(&m); err != nil {
			return nil, err
		}
		if !seen[m.ClubID] {
			seen[m.ClubID] = true
			clubIDs = append(clubIDs, m.ClubID)
		}
	}

	clubs := make([]entities.Club, len(clubIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, cid := range clubIDs {
		g.Go(func() error {
			doc, err := s.store.Get(gctx, constants.CollectionClubs, cid)
			if err != nil {
				return err
			}
			return doc.Decode(&clubs[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clubs, nil
}
