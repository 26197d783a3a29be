package models

import "time"

// Organization is an issuing institution registered on the marketplace.
type Organization struct {
	ID            string `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"not null" json:"name"`
	Email         string `gorm:"uniqueIndex" json:"email"`
	WalletAddress string `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Description   string `json:"description"`
	Website       string `json:"website"`
	Verified      bool   `gorm:"not null;default:false" json:"verified"`

	// Bcrypt hash; set only for organizations registered through the
	// email+password flow, empty for wallet-only registrations.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Organization) TableName() string {
	return "organizations"
}
