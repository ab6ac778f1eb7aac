package services

import (
	"errors"
	"fmt"

	"clubconnect/backend/internal/store"
)

// Sentinel errors for the membership/attendance/progression contracts.
// Handlers map these onto HTTP statuses; they never retry validation
// failures automatically.
var (
	ErrAlreadyMember  = errors.New("already a member of this club")
	ErrNotMember      = errors.New("not a member of this club")
	ErrAlreadyMarked  = errors.New("attendance already marked")
	ErrNotFound       = errors.New("record not found")
	ErrConflict       = errors.New("concurrent update detected")
	ErrAlreadyAwarded = errors.New("xp already awarded for this reference")
)

// XPAwardError marks the facade's partial-success path: the primary
// mutation (attendance row, membership row) committed but the XP award
// failed. The primary record stands; callers retry only the award.
type XPAwardError struct {
	Action      string
	ReferenceID string
	UserID      string
	Err         error
}

func (e *XPAwardError) Error() string {
	return fmt.Sprintf("%s recorded for %s but xp award failed: %v", e.Action, e.ReferenceID, e.Err)
}

func (e *XPAwardError) Unwrap() error { return e.Err }

// CodeOf maps an error onto the machine-readable taxonomy tag exposed in
// API responses.
func CodeOf(err error) string {
	var awardErr *XPAwardError
	switch {
	case errors.As(err, &awardErr):
		return "XPAwardFailed"
	case errors.Is(err, ErrAlreadyMember):
		return "AlreadyMember"
	case errors.Is(err, ErrNotMember):
		return "NotMember"
	case errors.Is(err, ErrAlreadyMarked):
		return "AlreadyMarked"
	case errors.Is(err, ErrNotFound), errors.Is(err, store.ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	case errors.Is(err, store.ErrUnavailable):
		return "StoreUnavailable"
	default:
		return "Internal"
	}
}
