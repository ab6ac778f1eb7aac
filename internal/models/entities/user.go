package entities

import "time"

// User is the directory store document for a registered user. XP, level,
// badges and LastLogin are mutated only by the progression service.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	XP          int        `json:"xp"`
	Level       int        `json:"level"`
	Badges      []string   `json:"badges"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	ProfileDone bool       `json:"profileDone"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasBadge reports whether the user already holds the given tier.
func (u *User) HasBadge(tier string) bool {
	for _, b := range u.Badges {
		if b == tier {
			return true
		}
	}
	return false
}
