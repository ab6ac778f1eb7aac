package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"clubconnect/backend/internal/auth"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/models/dtos"
)

// AwardXP handles POST /api/v1/gamification/award (admin only). Manual
// awards cover INVITE_FRIEND and CLUB_LEADERSHIP, which have no automatic
// trigger in the backend.
func (h *Handlers) AwardXP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AwardXPReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Action == "" {
			common.RespondError(w, initTime, "BadRequest", "Invalid award payload", http.StatusBadRequest)
			return
		}

		award, err := h.deps.Services.Progression.AwardXP(r.Context(), req.UserID, constants.XPAction(req.Action), req.Amount, req.ReferenceID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if _, err := h.deps.Services.Progression.CheckAndAwardBadges(r.Context(), req.UserID); err != nil {
			common.RespondPartial(w, initTime, "XPAwardFailed", "XP awarded but badge check failed", award)
			return
		}
		common.RespondSuccess(w, initTime, "XP awarded", award)
	}
}

// GetProgress handles GET /api/v1/gamification/progress
func (h *Handlers) GetProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		progress, err := h.deps.Services.Progression.GetUserProgress(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Progress fetched", progress)
	}
}

// GetBadges handles GET /api/v1/gamification/badges
func (h *Handlers) GetBadges() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		badges, err := h.deps.Services.Progression.GetUserBadges(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Badges fetched", badges)
	}
}

// GetLeaderboard handles GET /api/v1/gamification/leaderboard?limit=N
func (h *Handlers) GetLeaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		entries, err := h.deps.Services.Progression.GetLeaderboard(r.Context(), limit)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Leaderboard fetched", entries)
	}
}

// DailyLogin handles POST /api/v1/gamification/daily-login
func (h *Handlers) DailyLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		result, err := h.deps.Services.Progression.CheckDailyLogin(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		message := "Daily bonus claimed"
		if result.AlreadyClaimed {
			message = constants.MsgAlreadyClaimed
		}
		common.RespondSuccess(w, initTime, message, result)
	}
}
