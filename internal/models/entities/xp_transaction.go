package entities

import "time"

// XPTransaction is an append-only audit row for every XP award, including
// zero-amount awards. ReferenceID carries the triggering entity (event id,
// announcement id) so retries can detect an already-logged award.
type XPTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;not null" json:"userId"`
	Action      string    `gorm:"index;not null" json:"action"`
	Amount      int       `gorm:"not null" json:"amount"`
	ReferenceID string    `gorm:"index" json:"referenceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (XPTransaction) TableName() string {
	return "xp_transactions"
}
