package api

import (
	"encoding/json"
	"net/http"
	"time"

	"clubconnect/backend/internal/auth"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/services"
)

// RegisterUser handles POST /api/v1/user/register
func (h *Handlers) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		var req dtos.RegisterUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			common.RespondError(w, initTime, "BadRequest", "Invalid registration payload", http.StatusBadRequest)
			return
		}

		user, err := h.deps.Services.Users.RegisterUser(r.Context(), claims.UserID(), req)
		if err != nil {
			if err == services.ErrConflict {
				common.RespondError(w, initTime, "Conflict", "User already registered", http.StatusConflict)
				return
			}
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "User registered", user, http.StatusCreated)
	}
}

// GetProfile handles GET /api/v1/user/profile
func (h *Handlers) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		user, err := h.deps.Services.Users.GetProfile(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Profile fetched", user)
	}
}

// CompleteProfile handles POST /api/v1/user/profile/complete
func (h *Handlers) CompleteProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		award, err := h.deps.Services.Users.CompleteProfile(r.Context(), claims.UserID())
		if err != nil {
			if err == services.ErrAlreadyAwarded {
				common.RespondSuccess(w, initTime, "Profile already completed", nil)
				return
			}
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Profile completed", award)
	}
}

// GetUserClubs handles GET /api/v1/user/clubs
func (h *Handlers) GetUserClubs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		clubs, err := h.deps.Services.Memberships.ListUserClubs(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Clubs fetched", clubs)
	}
}

// GetUserAttendance handles GET /api/v1/user/attendance
func (h *Handlers) GetUserAttendance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		records, err := h.deps.Services.Attendance.GetUserAttendance(r.Context(), claims.UserID())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Attendance fetched", records)
	}
}
