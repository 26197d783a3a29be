package models

import (
	"time"

	"gorm.io/datatypes"
)

type CertificateStatus string

const (
	StatusValid   CertificateStatus = "valid"
	StatusRevoked CertificateStatus = "revoked"
)

// Certificate is the canonical record of a course-completion attestation.
// ID is the storage-assigned document id; CertificateID is the public
// identifier printed on the certificate itself. Both are accepted by
// validation lookups, as is BlockchainHash.
type Certificate struct {
	ID            string `gorm:"primaryKey" json:"id"`
	CertificateID string `gorm:"uniqueIndex;not null" json:"certificateId"`

	Title           string                      `json:"title"`
	RecipientName   string                      `json:"recipientName"`
	RecipientWallet string                      `gorm:"index;not null" json:"recipientWallet"`
	IssuerName      string                      `json:"issuerName"`
	IssuerWallet    string                      `gorm:"index" json:"issuerWallet"`
	CourseID        string                      `gorm:"index" json:"courseId"`
	Grade           string                      `json:"grade"`
	Skills          datatypes.JSONSlice[string] `json:"skills"`

	IssueDate      string `json:"issueDate"`
	CompletionDate string `json:"completionDate"`

	Status CertificateStatus `gorm:"not null;default:'valid'" json:"status"`

	// Anchoring fields stay empty until the record is pinned to IPFS.
	ContentHash    string `json:"contentHash,omitempty"`
	ContentURL     string `json:"contentUrl,omitempty"`
	MetadataHash   string `json:"metadataHash,omitempty"`
	MetadataURL    string `json:"metadataUrl,omitempty"`
	BlockchainHash string `gorm:"index" json:"blockchainHash"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// Revoked reports whether the certificate has reached its terminal state.
func (c *Certificate) Revoked() bool {
	return c.Status == StatusRevoked
}
