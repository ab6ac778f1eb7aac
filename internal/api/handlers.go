package api

import (
	"errors"
	"net/http"
	"time"

	"clubconnect/backend/internal/common"
	"clubconnect/backend/internal/services"
	"clubconnect/backend/internal/store"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

func asXPAwardError(err error, target **services.XPAwardError) bool {
	return errors.As(err, target)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	code := services.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case "AlreadyMember", "NotMember", "AlreadyMarked", "Conflict":
		status = http.StatusConflict
	case "NotFound":
		status = http.StatusNotFound
	case "StoreUnavailable":
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if errors.Is(err, store.ErrUnavailable) {
		// Do not leak driver internals to clients.
		message = "directory store unavailable, please retry"
	}
	common.RespondError(w, initTime, code, message, status)
}
