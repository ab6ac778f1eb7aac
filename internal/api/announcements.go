package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clubconnect/backend/internal/auth"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/models/dtos"
)

// CreateAnnouncement handles POST /api/v1/clubs/{club_id}/announcements (admin only)
func (h *Handlers) CreateAnnouncement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		clubID := chi.URLParam(r, "club_id")

		var req dtos.CreateAnnouncementReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
			common.RespondError(w, initTime, "BadRequest", "Invalid announcement payload", http.StatusBadRequest)
			return
		}

		ann, err := h.deps.Services.Announcements.CreateAnnouncement(r.Context(), clubID, req.Title, req.Content, claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Announcement created", ann, http.StatusCreated)
	}
}

// GetClubAnnouncements handles GET /api/v1/clubs/{club_id}/announcements
func (h *Handlers) GetClubAnnouncements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		clubID := chi.URLParam(r, "club_id")

		anns, err := h.deps.Services.Announcements.GetClubAnnouncements(r.Context(), clubID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Announcements fetched", anns)
	}
}

// DeleteAnnouncement handles DELETE /api/v1/announcements/{announcement_id} (admin only)
func (h *Handlers) DeleteAnnouncement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		announcementID := chi.URLParam(r, "announcement_id")

		if err := h.deps.Services.Announcements.DeleteAnnouncement(r.Context(), announcementID); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Announcement deleted", nil)
	}
}
