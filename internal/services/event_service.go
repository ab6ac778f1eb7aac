package services

import (
	"context"
	"sort"
	"time"

	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

const upcomingEventsLimit = 20

// EventService handles event CRUD and listing. Attendance counters are
// owned by the attendance service.
type EventService struct {
	store       store.DirectoryStore
	progression *ProgressionService
}

func NewEventService(st store.DirectoryStore, progression *ProgressionService) *EventService {
	return &EventService{store: st, progression: progression}
}

// CreateEvent inserts the event and awards CREATE_EVENT to the creator.
// An award failure does not undo the create; it is logged for retry by
// reconciliation.
func (s *EventService) CreateEvent(ctx context.Context, req dtos.CreateEventReq, creatorID string) (*entities.Event, error) {
	if _, err := s.store.Get(ctx, constants.CollectionClubs, req.ClubID); err != nil {
		return nil, err
	}

	event := &entities.Event{
		ClubID:        req.ClubID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		CreatorID:     creatorID,
		AttendeeCount: 0,
		CreatedAt:     time.Now().UTC(),
	}
	id, err := s.store.Insert(ctx, constants.CollectionEvents, event)
	if err != nil {
		return nil, err
	}
	event.ID = id

	if _, err := s.progression.AwardXP(ctx, creatorID, constants.ActionCreateEvent, nil, id); err != nil {
		logging.Error("xp award failed after event create",
			"event_id", id, "user_id", creatorID, "error", err.Error())
	}

	logging.Info("event created", "event_id", id, "club_id", req.ClubID)
	return event, nil
}

func (s *EventService) GetClubEvents(ctx context.Context, clubID string) ([]entities.Event, error) {
	docs, err := s.store.Query(ctx, constants.CollectionEvents,
		store.Filter{"clubId": clubID},
		store.OrderBy("startDate", true),
	)
	if err != nil {
		return nil, err
	}
	return decodeEvents(docs)
}

// GetUpcomingEvents returns the next events across all clubs the user is
// an active member of, soonest first.
func (s *EventService) GetUpcomingEvents(ctx context.Context, userID string) ([]entities.Event, error) {
	memberships, err := s.store.Query(ctx, constants.CollectionMemberships, store.Filter{
		"userId": userID,
		"status": constants.MembershipActive,
	})
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []entities.Event{}, nil
	}

	now := time.Now().UTC()
	var upcoming []entities.Event
	for _, doc := range memberships {
		var m entities.Membership
		if err := doc.Decode(&m); err != nil {
			return nil, err
		}
		docs, err := s.store.Query(ctx, constants.CollectionEvents, store.Filter{"clubId": m.ClubID})
		if err != nil {
			return nil, err
		}
		events, err := decodeEvents(docs)
		if err != nil {
			return nil, err
		}
		for _, e := range events {
			if !e.StartDate.Before(now) {
				upcoming = append(upcoming, e)
			}
		}
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})
	if len(upcoming) > upcomingEventsLimit {
		upcoming = upcoming[:upcomingEventsLimit]
	}
	return upcoming, nil
}

func (s *EventService) GetEventByID(ctx context.Context, eventID string) (*entities.Event, error) {
	doc, err := s.store.Get(ctx, constants.CollectionEvents, eventID)
	if err != nil {
		return nil, err
	}
	var event entities.Event
	if err := doc.Decode(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.store.Delete(ctx, constants.CollectionEvents, eventID); err != nil {
		return err
	}
	logging.Info("event deleted", "event_id", eventID)
	return nil
}

func decodeEvents(docs []store.Document) ([]entities.Event, error) {
	events := make([]entities.Event, 0, len(docs))
	for _, doc := range docs {
		var e entities.Event
		if err := doc.Decode(&e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
