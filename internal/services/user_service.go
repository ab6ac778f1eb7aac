package services

import (
	"context"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/db/repositories"
	"clubconnect/backend/internal/logging"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

// UserService owns the user directory documents. Credentials live at the
// external identity provider; the document id is the provider's subject.
type UserService struct {
	store       store.DirectoryStore
	locks       common.KeyLocker
	progression *ProgressionService
	txnRepo     *repositories.XPTransactionRepository
}

func NewUserService(st store.DirectoryStore, locks common.KeyLocker, progression *ProgressionService, txnRepo *repositories.XPTransactionRepository) *UserService {
	return &UserService{store: st, locks: locks, progression: progression, txnRepo: txnRepo}
}

// RegisterUser creates the profile document for a subject the identity
// provider has already authenticated. The exists-check and the insert
// run under the user's key lock so a doubled submit yields one document
// and one Conflict.
func (s *UserService) RegisterUser(ctx context.Context, userID string, req dtos.RegisterUserReq) (*entities.User, error) {
	release, err := s.locks.Acquire(ctx, userKey(userID))
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.store.Get(ctx, constants.CollectionUsers, userID); err == nil {
		return nil, ErrConflict
	}

	role := req.Role
	if role != constants.RoleAdmin {
		role = constants.RoleStudent
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:        userID,
		Email:     req.Email,
		Name:      req.Name,
		Role:      role,
		XP:        0,
		Level:     1,
		Badges:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.store.Insert(ctx, constants.CollectionUsers, user); err != nil {
		return nil, err
	}

	logging.Info("user registered", "user_id", userID, "role", role)
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
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

// CompleteProfile marks the profile done and awards COMPLETE_PROFILE at
// most once per user, guarded by the transaction log.
func (s *UserService) CompleteProfile(ctx context.Context, userID string) (*dtos.AwardResult, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	count, err := s.txnRepo.CountByUserAndAction(ctx, userID, string(constants.ActionCompleteProfile))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyAwarded
	}

	if err := s.store.Update(ctx, constants.CollectionUsers, userID, map[string]any{
		"profileDone": true,
	}); err != nil {
		return nil, err
	}

	award, err := s.progression.AwardXP(ctx, userID, constants.ActionCompleteProfile, nil, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.progression.CheckAndAwardBadges(ctx, userID); err != nil {
		logging.Warn("badge check failed after profile completion", "user_id", userID, "error", err.Error())
	}
	return award, nil
}
