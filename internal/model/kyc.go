package model

import (
	"time"

	"ledger/internal/model/enum"
)

// KycRecord is the identity verification state of one user.
type KycRecord struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	UserID     string         `gorm:"size:64;not null;uniqueIndex" json:"userId"`
	Status     enum.KycStatus `gorm:"not null" json:"status"`
	VerifiedAt *time.Time     `json:"verifiedAt,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
