package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clubconnect/backend/internal/auth"
	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/constants"
	"clubconnect/backend/internal/models/dtos"
	"clubconnect/backend/internal/models/entities"
	"clubconnect/backend/internal/store"
)

func setupHandlers(t *testing.T) (*Handlers, store.DirectoryStore) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&entities.XPTransaction{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	st := store.NewMemoryStore()
	deps, err := InitDependencies(st, common.NewMutexKeyLock(), db)
	if err != nil {
		t.Fatalf("Failed to init dependencies: %v", err)
	}
	return NewHandlers(deps), st
}

func seedUserAndClub(t *testing.T, st store.DirectoryStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := st.Insert(ctx, constants.CollectionUsers, &entities.User{
		ID: "user-1", Email: "user-1@campus.edu", Name: "Test User",
		Role: constants.RoleStudent, Level: 1, Badges: []string{},
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	_, err = st.Insert(ctx, constants.CollectionClubs, &entities.Club{
		ID: "club-1", Name: "Robotics", AdminID: "admin-1",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Failed to seed club: %v", err)
	}
}

func doRequest(handlers *Handlers, method, path string, register func(chi.Router, *Handlers)) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	register(r, handlers)

	req := httptest.NewRequest(method, path, nil)
	claims := &auth.JWTClaims{Subject: "user-1", RoleValue: constants.RoleStudent}
	req = req.WithContext(auth.SetUserClaims(req.Context(), claims))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) dtos.APIResponse {
	t.Helper()
	var resp dtos.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestJoinClubHandler_Success(t *testing.T) {
	handlers, st := setupHandlers(t)
	seedUserAndClub(t, st)

	rr := doRequest(handlers, "POST", "/clubs/club-1/join", func(r chi.Router, h *Handlers) {
		r.Post("/clubs/{club_id}/join", h.JoinClub())
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeEnvelope(t, rr)
	if resp.Status != constants.APIStatusOk {
		t.Errorf("Expected success status, got %s", resp.Status)
	}

	award, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected award payload, got %T", resp.Data)
	}
	if xp, _ := award["xp"].(float64); xp != 50 {
		t.Errorf("Expected 50 XP in award, got %v", award["xp"])
	}
}

func TestJoinClubHandler_Duplicate(t *testing.T) {
	handlers, st := setupHandlers(t)
	seedUserAndClub(t, st)

	register := func(r chi.Router, h *Handlers) {
		r.Post("/clubs/{club_id}/join", h.JoinClub())
	}
	if rr := doRequest(handlers, "POST", "/clubs/club-1/join", register); rr.Code != http.StatusOK {
		t.Fatalf("First join failed: %d", rr.Code)
	}

	rr := doRequest(handlers, "POST", "/clubs/club-1/join", register)
	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rr.Code)
	}
	resp := decodeEnvelope(t, rr)
	if resp.ErrorCode != "AlreadyMember" {
		t.Errorf("Expected AlreadyMember code, got %s", resp.ErrorCode)
	}
}

func TestGetClubHandler_NotFound(t *testing.T) {
	handlers, _ := setupHandlers(t)

	rr := doRequest(handlers, "GET", "/clubs/missing", func(r chi.Router, h *Handlers) {
		r.Get("/clubs/{club_id}", h.GetClub())
	})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	resp := decodeEnvelope(t, rr)
	if resp.ErrorCode != "NotFound" {
		t.Errorf("Expected NotFound code, got %s", resp.ErrorCode)
	}
}

func TestLeaveClubHandler_NotMember(t *testing.T) {
	handlers, st := setupHandlers(t)
	seedUserAndClub(t, st)

	rr := doRequest(handlers, "POST", "/clubs/club-1/leave", func(r chi.Router, h *Handlers) {
		r.Post("/clubs/{club_id}/leave", h.LeaveClub())
	})

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d", rr.Code)
	}
	resp := decodeEnvelope(t, rr)
	if resp.ErrorCode != "NotMember" {
		t.Errorf("Expected NotMember code, got %s", resp.ErrorCode)
	}
}
