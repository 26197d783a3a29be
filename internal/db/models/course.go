package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course is a purchasable offering that certificates reference by CourseID.
type Course struct {
	ID          string                      `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `json:"description"`
	Category    string                      `gorm:"index" json:"category"`
	Instructor  string                      `json:"instructor"`
	Duration    string                      `json:"duration"`
	Level       string                      `json:"level"`
	PriceNEAR   string                      `json:"priceNEAR"`
	PriceUSD    string                      `json:"priceUSD"`
	Image       string                      `json:"image"`
	Skills      datatypes.JSONSlice[string] `json:"skills"`

	OrganizationWallet string `gorm:"index" json:"organization_wallet"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}
