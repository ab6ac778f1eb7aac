package entities

import "time"

// Event document. AttendeeCount must equal the number of attendance rows
// for the event.
type Event struct {
	ID            string    `json:"id"`
	ClubID        string    `json:"clubId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location,omitempty"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	CreatorID     string    `json:"creatorId"`
	AttendeeCount int       `json:"attendeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
