package dtos

import "time"

// APIResponse is the envelope every HTTP endpoint returns.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// AwardResult is returned by every successful XP award.
type AwardResult struct {
	UserID    string `json:"userId"`
	Action    string `json:"action"`
	Amount    int    `json:"amount"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	LeveledUp bool   `json:"leveledUp"`
}

// ProgressResponse mirrors the profile progress card in the clients.
type ProgressResponse struct {
	XP              int `json:"xp"`
	Level           int `json:"level"`
	ProgressInLevel int `json:"progressInLevel"`
	XPToNextLevel   int `json:"xpToNextLevel"`
}

// BadgeInfo is one entry of the badge catalog with the user's earned flag.
type BadgeInfo struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
	Earned      bool   `json:"earned"`
}

type BadgesResponse struct {
	Badges    []BadgeInfo `json:"badges"`
	CurrentXP int         `json:"currentXP"`
}

type LeaderboardEntry struct {
	Rank   int      `json:"rank"`
	UserID string   `json:"userId"`
	Name   string   `json:"name"`
	XP     int      `json:"xp"`
	Level  int      `json:"level"`
	Badges []string `json:"badges"`
}

type DailyLoginResponse struct {
	AlreadyClaimed bool `json:"alreadyClaimed"`
	XPAwarded      int  `json:"xpAwarded"`
}

// AttendanceResult is returned by the gamification facade after an event
// check-in. XPAwarded is false when the award step failed and the caller
// should hit the retry-xp endpoint.
type AttendanceResult struct {
	EventID   string       `json:"eventId"`
	UserID    string       `json:"userId"`
	MarkedAt  time.Time    `json:"markedAt"`
	XPAwarded bool         `json:"xpAwarded"`
	Award     *AwardResult `json:"award,omitempty"`
	NewBadges []string     `json:"newBadges,omitempty"`
}
