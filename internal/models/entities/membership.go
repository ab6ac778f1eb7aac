package entities

import "time"

// Membership links a user to a club. At most one active row may exist per
// (clubId, userId) pair.
type Membership struct {
	ID       string    `json:"id"`
	ClubID   string    `json:"clubId"`
	UserID   string    `json:"userId"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joinedAt"`
}
