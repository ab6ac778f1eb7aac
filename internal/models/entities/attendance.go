package entities

import "time"

// Attendance records that a user was present at an event. At most one row
// per (eventId, userId) pair.
type Attendance struct {
	ID       string    `json:"id"`
	EventID  string    `json:"eventId"`
	UserID   string    `json:"userId"`
	MarkedAt time.Time `json:"markedAt"`
}
