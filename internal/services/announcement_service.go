package services

import (
	"context"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

const (
	announcementFeedTTL   = 60 * time.Second
	announcementFeedLimit = 50
)

// AnnouncementService handles club announcements. Feeds are read-only
// projections and the only thing this package caches; the cache is
// invalidated on every write.
type AnnouncementService struct {
	store       store.DirectoryStore
	cache       common.CacheInterface
	progression *ProgressionService
}

func NewAnnouncementService(st store.DirectoryStore, cache common.CacheInterface, progression *ProgressionService) *AnnouncementService {
	return &AnnouncementService{store: st, cache: cache, progression: progression}
}

func announcementFeedKey(clubID string) string {
	return "announcements:" + clubID
}

// CreateAnnouncement inserts the announcement and awards POST_ANNOUNCEMENT
// to the creator. Award failures are logged, not propagated.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, clubID, title, content, creatorID string) (*entities.Announcement, error) {
	if _, err := s.store.Get(ctx, constants.CollectionClubs, clubID); err != nil {
		return nil, err
	}

	ann := &entities.Announcement{
		ClubID:    clubID,
		Title:     title,
		Content:   content,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	id, err := s.store.Insert(ctx, constants.CollectionAnnouncements, ann)
	if err != nil {
		return nil, err
	}
	ann.ID = id
	s.cache.Delete(announcementFeedKey(clubID))

	if _, err := s.progression.AwardXP(ctx, creatorID, constants.ActionPostAnnouncement, nil, id); err != nil {
		logging.Error("xp award failed after announcement",
			"announcement_id", id, "user_id", creatorID, "error", err.Error())
	}

	logging.Info("announcement created", "announcement_id", id, "club_id", clubID)
	return ann, nil
}

func (s *AnnouncementService) GetClubAnnouncements(ctx context.Context, clubID string) ([]entities.Announcement, error) {
	val, err := s.cache.GetOrSet(announcementFeedKey(clubID), announcementFeedTTL, func() (any, error) {
		docs, err := s.store.Query(ctx, constants.CollectionAnnouncements,
			store.Filter{"clubId": clubID},
			store.OrderBy("createdAt", true),
			store.Limit(announcementFeedLimit),
		)
		if err != nil {
			return nil, err
		}

		anns := make([]entities.Announcement, 0, len(docs))
		for _, doc := range docs {
			var a entities.Announcement
			if err := doc.Decode(&a); err != nil {
				return nil, err
			}
			anns = append(anns, a)
		}
		return anns, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]entities.Announcement), nil
}

func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, announcementID string) error {
	doc, err := s.store.Get(ctx, constants.CollectionAnnouncements, announcementID)
	if err != nil {
		return err
	}
	var ann entities.Announcement
	if err := doc.Decode(&ann); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, constants.CollectionAnnouncements, announcementID); err != nil {
		return err
	}
	s.cache.Delete(announcementFeedKey(ann.ClubID))
	return nil
}
