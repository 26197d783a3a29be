package models

import "time"

// NFTCertificate records a certificate minted as an NFT on NEAR. The
// metadata fields follow the NEP-171 token metadata shape so the record
// can be handed to the contract unchanged.
type NFTCertificate struct {
	ID            string `gorm:"primaryKey" json:"id"`
	TokenID       string `gorm:"uniqueIndex" json:"token_id"`
	OwnerID       string `gorm:"index;not null" json:"owner_id"`
	IssuerID      string `gorm:"index" json:"issuer_id"`
	CertificateID string `gorm:"index" json:"certificate_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	MediaURL      string `json:"media"`
	MediaHash     string `json:"media_hash"`
	ReferenceURL  string `json:"reference"`
	ReferenceHash string `json:"reference_hash"`

	IssuedAt  time.Time `json:"issued_at"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (NFTCertificate) TableName() string {
	return "nft_certificates"
}
