package services

import (
	"context"
	"fmt"

	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/db/repositories"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/store"
)

// GamificationService composes the attendance recorder and the progression
// engine for the attend-event and join-club workflows. An XP failure after
// a successful primary mutation is surfaced as *XPAwardError; the primary
// record is never rolled back because re-marking is blocked by the
// at-most-once invariants.
type GamificationService struct {
	store       store.DirectoryStore
	attendance  *AttendanceService
	memberships *MembershipService
	progression *ProgressionService
	txnRepo     *repositories.XPTransactionRepository
}

func NewGamificationService(
	st store.DirectoryStore,
	attendance *AttendanceService,
	memberships *MembershipService,
	progression *ProgressionService,
	txnRepo *repositories.XPTransactionRepository,
) *GamificationService {
	return &GamificationService{
		store:       st,
		attendance:  attendance,
		memberships: memberships,
		progression: progression,
		txnRepo:     txnRepo,
	}
}

// RecordEventAttendance marks attendance, then awards ATTEND_EVENT and
// recomputes badges. If marking fails, no XP call is made.
func (s *GamificationService) RecordEventAttendance(ctx context.Context, eventID, userID string) (*dtos.AttendanceResult, error) {
	record, err := s.attendance.MarkAttendance(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	result := &dtos.AttendanceResult{
		EventID:  eventID,
		UserID:   userID,
		MarkedAt: record.MarkedAt,
	}

	award, err := s.progression.AwardXP(ctx, userID, constants.ActionAttendEvent, nil, eventID)
	if err != nil {
		logging.Error("xp award failed after attendance",
			"event_id", eventID, "user_id", userID, "error", err.Error())
		return result, &XPAwardError{
			Action:      string(constants.ActionAttendEvent),
			ReferenceID: eventID,
			UserID:      userID,
			Err:         err,
		}
	}
	result.XPAwarded = true
	result.Award = award

	newBadges, err := s.progression.CheckAndAwardBadges(ctx, userID)
	if err != nil {
		// Badge state is monotonic and recomputed on the next award;
		// the attendance and XP writes already committed.
		logging.Warn("badge check failed after attendance",
			"user_id", userID, "error", err.Error())
	}
	result.NewBadges = newBadges
	return result, nil
}

// RetryEventXP re-runs only the award step after a partial success. It is
// idempotent: an already-logged (user, ATTEND_EVENT, event) transaction
// short-circuits with ErrAlreadyAwarded.
func (s *GamificationService) RetryEventXP(ctx context.Context, eventID, userID string) (*dtos.AwardResult, error) {
	rows, err := s.store.Query(ctx, constants.CollectionAttendance, store.Filter{
		"eventId": eventID,
		"userId":  userID,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no attendance for event %s: %w", eventID, ErrNotFound)
	}

	logged, err := s.txnRepo.HasAward(ctx, userID, string(constants.ActionAttendEvent), eventID)
	if err != nil {
		return nil, err
	}
	if logged {
		return nil, ErrAlreadyAwarded
	}

	award, err := s.progression.AwardXP(ctx, userID, constants.ActionAttendEvent, nil, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.progression.CheckAndAwardBadges(ctx, userID); err != nil {
		logging.Warn("badge check failed after xp retry", "user_id", userID, "error", err.Error())
	}
	return award, nil
}

// RecordClubJoin joins the club, then awards JOIN_CLUB with the same
// partial-success semantics as event attendance.
func (s *GamificationService) RecordClubJoin(ctx context.Context, clubID, userID string) (*dtos.AwardResult, error) {
	if _, err := s.memberships.JoinClub(ctx, clubID, userID); err != nil {
		return nil, err
	}

	award, err := s.progression.AwardXP(ctx, userID, constants.ActionJoinClub, nil, clubID)
	if err != nil {
		logging.Error("xp award failed after club join",
			"club_id", clubID, "user_id", userID, "error", err.Error())
		return nil, &XPAwardError{
			Action:      string(constants.ActionJoinClub),
			ReferenceID: clubID,
			UserID:      userID,
			Err:         err,
		}
	}

	if _, err := s.progression.CheckAndAwardBadges(ctx, userID); err != nil {
		logging.Warn("badge check failed after club join", "user_id", userID, "error", err.Error())
	}
	return award, nil
}
