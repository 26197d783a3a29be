package pinata

import (
	"fmt"
	"strings"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
)

// Attribute is one trait in the metadata attribute list.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// CertificateMetadata is the JSON document pinned alongside a
// certificate's human-readable rendition.
type CertificateMetadata struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Image       string              `json:"image,omitempty"`
	Attributes  []Attribute         `json:"attributes"`
	Certificate *models.Certificate `json:"certificate_data"`
}

// BuildCertificateMetadata assembles the metadata document for a
// certificate whose rendition is already pinned at contentURL.
func BuildCertificateMetadata(cert *models.Certificate, contentURL string) *CertificateMetadata {
	return &CertificateMetadata{
		Name:        fmt.Sprintf("Certificate: %s", cert.Title),
		Description: fmt.Sprintf("Digital certificate issued to %s", cert.RecipientName),
		Image:       contentURL,
		Attributes: []Attribute{
			{TraitType: "Certificate ID", Value: cert.CertificateID},
			{TraitType: "Recipient", Value: cert.RecipientName},
			{TraitType: "Issuer", Value: cert.IssuerName},
			{TraitType: "Course", Value: cert.Title},
			{TraitType: "Issue Date", Value: cert.IssueDate},
			{TraitType: "Status", Value: string(cert.Status)},
		},
		Certificate: cert,
	}
}

// RenderCertificateText produces the plain-text rendition of a
// certificate that gets pinned as its content document.
func RenderCertificateText(cert *models.Certificate) []byte {
	grade := cert.Grade
	if grade == "" {
		grade = "Pass"
	}
	skills := "N/A"
	if len(cert.Skills) > 0 {
		skills = strings.Join(cert.Skills, ", ")
	}

	text := fmt.Sprintf(`CERTIFICATE OF COMPLETION

This is to certify that

%s

has successfully completed the course

%s

Issued by: %s
Issue Date: %s
Certificate ID: %s
Grade: %s

Skills Acquired: %s
`,
		cert.RecipientName,
		cert.Title,
		cert.IssuerName,
		cert.IssueDate,
		cert.CertificateID,
		grade,
		skills,
	)
	return []byte(text)
}

// NFTTokenMetadata follows the NEP-171 token metadata shape.
type NFTTokenMetadata struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Media         string `json:"media,omitempty"`
	MediaHash     string `json:"media_hash,omitempty"`
	Copies        int    `json:"copies"`
	IssuedAt      string `json:"issued_at"`
	Extra         string `json:"extra,omitempty"`
	Reference     string `json:"reference,omitempty"`
	ReferenceHash string `json:"reference_hash,omitempty"`
}
