package entities

import "time"

type Announcement struct {
	ID        string    `json:"id"`
	ClubID    string    `json:"clubId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}
