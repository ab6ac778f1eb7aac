package services

import (
	"context"
	"time"

	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

// ClubService handles club directory CRUD. Member counters are owned by
// the membership service and never touched here.
type ClubService struct {
	store store.DirectoryStore
}

func NewClubService(st store.DirectoryStore) *ClubService {
	return &ClubService{store: st}
}

func (s *ClubService) GetAllClubs(ctx context.Context) ([]entities.Club, error) {
	docs, err := s.store.Query(ctx, constants.CollectionClubs, nil, store.OrderBy("name", false))
	if err != nil {
		return nil, err
	}

	clubs := make([]entities.Club, 0, len(docs))
	for _, doc := range docs {
		var c entities.Club
		if err := doc.Decode(&c); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, nil
}

func (s *ClubService) GetClubByID(ctx context.Context, clubID string) (*entities.Club, error) {
	doc, err := s.store.Get(ctx, constants.CollectionClubs, clubID)
	if err != nil {
		return nil, err
	}
	var club entities.Club
	if err := doc.Decode(&club); err != nil {
		return nil, err
	}
	return &club, nil
}

func (s *ClubService) CreateClub(ctx context.Context, req dtos.CreateClubReq, adminUserID string) (*entities.Club, error) {
	now := time.Now().UTC()
	club := &entities.Club{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		AdminID:     adminUserID,
		MemberCount: 0,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.store.Insert(ctx, constants.CollectionClubs, club)
	if err != nil {
		return nil, err
	}
	club.ID = id

	logging.Info("club created", "club_id", id, "admin_id", adminUserID)
	return club, nil
}

func (s *ClubService) UpdateClub(ctx context.Context, clubID string, req dtos.UpdateClubReq) error {
	delta := map[string]any{"updatedAt": time.Now().UTC()}
	if req.Name != nil {
		delta["name"] = *req.Name
	}
	if req.Description != nil {
		delta["description"] = *req.Description
	}
	if req.Category != nil {
		delta["category"] = *req.Category
	}
	if req.ImageURL != nil {
		delta["imageUrl"] = *req.ImageURL
	}
	return s.store.Update(ctx, constants.CollectionClubs, clubID, delta)
}

func (s *ClubService) DeleteClub(ctx context.Context, clubID string) error {
	if err := s.store.Delete(ctx, constants.CollectionClubs, clubID); err != nil {
		return err
	}
	logging.Info("club deleted", "club_id", clubID)
	return nil
}
