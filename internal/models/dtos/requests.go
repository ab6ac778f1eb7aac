package dtos

import "time"

type CreateClubReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

type UpdateClubReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"imageUrl"`
}

type CreateEventReq struct {
	ClubID      string    `json:"clubId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type CreateAnnouncementReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type RegisterUserReq struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AwardXPReq struct {
	UserID      string `json:"userId"`
	Action      string `json:"action"`
	Amount      *int   `json:"amount"`
	ReferenceID string `json:"referenceId"`
}
