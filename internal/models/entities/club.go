package entities

import "time"

// Club document. MemberCount must equal the number of active membership
// rows for the club; only the membership service touches it.
type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AdminID     string    `json:"adminId"`
	MemberCount int       `json:"memberCount"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
