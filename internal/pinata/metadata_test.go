package pinata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
)

func TestRenderCertificateText(t *testing.T) {
	text := string(RenderCertificateText(&models.Certificate{
		CertificateID: "CERT_001",
		Title:         "Introduction to Blockchain",
		RecipientName: "John Student",
		IssuerName:    "Achievo Education Institute",
		IssueDate:     "2024-02-15",
		Skills:        []string{"blockchain", "cryptocurrency"},
	}))

	require.Contains(t, text, "CERTIFICATE OF COMPLETION")
	require.Contains(t, text, "John Student")
	require.Contains(t, text, "Certificate ID: CERT_001")
	require.Contains(t, text, "Skills Acquired: blockchain, cryptocurrency")
	// Grade defaults to Pass when unset.
	require.Contains(t, text, "Grade: Pass")
}

func TestBuildCertificateMetadata(t *testing.T) {
	cert := &models.Certificate{
		CertificateID: "CERT_001",
		Title:         "Introduction to Blockchain",
		RecipientName: "John Student",
		Status:        models.StatusValid,
	}

	meta := BuildCertificateMetadata(cert, "https://gateway.test/ipfs/QmContent")
	require.Equal(t, "Certificate: Introduction to Blockchain", meta.Name)
	require.Equal(t, "https://gateway.test/ipfs/QmContent", meta.Image)
	require.Same(t, cert, meta.Certificate)

	var status string
	for _, attr := range meta.Attributes {
		if attr.TraitType == "Status" {
			status = attr.Value
		}
	}
	require.Equal(t, string(models.StatusValid), status)

	if !strings.Contains(meta.Description, "John Student") {
		t.Fatalf("description %q does not name the recipient", meta.Description)
	}
}
