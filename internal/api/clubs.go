package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clubconnect/backend/internal/auth"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/services"
)

// ListClubs handles GET /api/v1/clubs
func (h *Handlers) ListClubs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		clubs, err := h.deps.Services.Clubs.GetAllClubs(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clubs fetched", clubs)
	}
}

// GetClub handles GET /api/v1/clubs/{club_id}
func (h *Handlers) GetClub() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		clubID := chi.URLParam(r, "club_id")

		club, err := h.deps.Services.Clubs.GetClubByID(r.Context(), clubID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Club fetched", club)
	}
}

// CreateClub handles POST /api/v1/clubs (admin only)
func (h *Handlers) CreateClub() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		var req dtos.CreateClubReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			common.RespondError(w, initTime, "BadRequest", "Invalid club payload", http.StatusBadRequest)
			return
		}

		club, err := h.deps.Services.Clubs.CreateClub(r.Context(), req, claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Club created", club, http.StatusCreated)
	}
}

// UpdateClub handles PUT /api/v1/clubs/{club_id} (admin only)
func (h *Handlers) UpdateClub() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		clubID := chi.URLParam(r, "club_id")

		var req dtos.UpdateClubReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, "BadRequest", "Invalid club payload", http.StatusBadRequest)
			return
		}

		if err := h.deps.Services.Clubs.UpdateClub(r.Context(), clubID, req); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Club updated", nil)
	}
}

// DeleteClub handles DELETE /api/v1/clubs/{club_id} (admin only)
func (h *Handlers) DeleteClub() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		clubID := chi.URLParam(r, "club_id")

		if err := h.deps.Services.Clubs.DeleteClub(r.Context(), clubID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Club deleted", nil)
	}
}

// JoinClub handles POST /api/v1/clubs/{club_id}/join
func (h *Handlers) JoinClub() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		clubID := chi.URLParam(r, "club_id")

		award, err := h.deps.Services.Gamification.RecordClubJoin(r.Context(), clubID, claims.UserID())
		if err != nil {
			var awardErr *services.XPAwardError
			if ok := asXPAwardError(err, &awardErr); ok {
				common.RespondPartial(w, initTime, "XPAwardFailed", constants.MsgXPAwardFailed, nil)
				return
			}
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Joined club", award)
	}
}

// LeaveClub handles POST /api/v1/clubs/{club_id}/leave
func (h *Handlers) LeaveClub() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		clubID := chi.URLParam(r, "club_id")

		if err := h.deps.Services.Memberships.LeaveClub(r.Context(), clubID, claims.UserID()); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Left club", nil)
	}
}

// ListClubMembers handles GET /api/v1/clubs/{club_id}/members
func (h *Handlers) ListClubMembers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		clubID := chi.URLParam(r, "club_id")

		members, err := h.deps.Services.Memberships.ListClubMembers(r.Context(), clubID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Members fetched", members)
	}
}
