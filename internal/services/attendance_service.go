package services

import (
	"context"
	"fmt"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/metrics"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

// AttendanceService records at-most-one attendance per (event, user) and
// keeps each event's attendeeCount consistent with its rows.
type AttendanceService struct {
	store   store.DirectoryStore
	locks   common.KeyLocker
	metrics *metrics.MetricsRegistry
}

func NewAttendanceService(st store.DirectoryStore, locks common.KeyLocker) *AttendanceService {
	return &AttendanceService{
		store:   st,
		locks:   locks,
		metrics: metrics.NewMetricsRegistry(),
	}
}

func attendanceKey(eventID, userID string) string {
	return fmt.Sprintf("attendance:%s:%s", eventID, userID)
}

func (s *AttendanceService) existing(ctx context.Context, eventID, userID string) ([]store.Document, error) {
	return s.store.Query(ctx, constants.CollectionAttendance, store.Filter{
		"eventId": eventID,
		"userId":  userID,
	})
}

// MarkAttendance inserts the attendance row and bumps the event counter.
// All-or-nothing per call: no counter is touched on any failure path.
func (s *AttendanceService) MarkAttendance(ctx context.Context, eventID, userID string) (*entities.Attendance, error) {
	if _, err := s.store.Get(ctx, constants.CollectionEvents, eventID); err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	if _, err := s.store.Get(ctx, constants.CollectionUsers, userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}

	release, err := s.locks.Acquire(ctx, attendanceKey(eventID, userID))
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := s.existing(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return nil, ErrAlreadyMarked
	}

	record := &entities.Attendance{
		EventID:  eventID,
		UserID:   userID,
		MarkedAt: time.Now().UTC(),
	}
	id, err := s.store.Insert(ctx, constants.CollectionAttendance, record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	// Post-insert re-check mirrors the ledger's conflict detection.
	rows, err = s.existing(ctx, eventID, userID)
	if err == nil && len(rows) > 1 {
		_ = s.store.Delete(ctx, constants.CollectionAttendance, id)
		return nil, ErrConflict
	}

	if _, err := s.store.IncrementField(ctx, constants.CollectionEvents, eventID, "attendeeCount", 1); err != nil {
		return nil, fmt.Errorf("increment attendee count: %w", err)
	}

	s.metrics.AttendanceMarkedTotal.Inc()
	logging.Info("attendance marked", "event_id", eventID, "user_id", userID)
	return record, nil
}

// GetUserAttendance re-queries the store on every call so callers always
// see current, not cached, state.
func (s *AttendanceService) GetUserAttendance(ctx context.Context, userID string) ([]entities.Attendance, error) {
	rows, err := s.store.Query(ctx, constants.CollectionAttendance,
		store.Filter{"userId": userID},
		store.OrderBy("markedAt", true),
	)
	if err != nil {
		return nil, err
	}

	records := make([]entities.Attendance, 0, len(rows))
	for _, row := range rows {
		var a entities.Attendance
		if err := row.Decode(&a); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, nil
}
