package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/config"
	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/pinata"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/internal/store/memstore"
	"github.com/devprosvn/devpros-achievo/pkg/metrics"
)

const testOwner = "bernieio.testnet"

type stubPinner struct {
	fileErr error
	jsonErr error
	pinned  []string
}

func (p *stubPinner) PinFile(_ context.Context, name string, _ []byte) (*pinata.PinResult, error) {
	if p.fileErr != nil {
		return nil, p.fileErr
	}
	p.pinned = append(p.pinned, name)
	return &pinata.PinResult{Hash: "QmContent", URL: "https://gateway.test/ipfs/QmContent"}, nil
}

func (p *stubPinner) PinJSON(_ context.Context, name string, _ any) (*pinata.PinResult, error) {
	if p.jsonErr != nil {
		return nil, p.jsonErr
	}
	p.pinned = append(p.pinned, name)
	return &pinata.PinResult{Hash: "QmMeta", URL: "https://gateway.test/ipfs/QmMeta"}, nil
}

func newCertificateTestService(pinner Pinner) (*CertificateService, *store.Store) {
	st := memstore.New()
	roles := NewRoleService(st, testOwner, zap.NewNop())
	svc := NewCertificateService(st, roles, pinner, zap.NewNop(), metrics.NewMetricsCollector())
	return svc, st
}

func TestCreateCertificateFillsDefaults(t *testing.T) {
	ctx := context.Background()
	svc, st := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(cert.CertificateID, "CERT_"), "got %q", cert.CertificateID)
	require.Equal(t, []string{"learning"}, []string(cert.Skills))
	require.Equal(t, models.StatusValid, cert.Status)
	require.True(t, strings.HasPrefix(cert.BlockchainHash, "local_"), "got %q", cert.BlockchainHash)

	_, err = time.Parse(time.RFC3339, cert.IssueDate)
	require.NoError(t, err)
	require.Equal(t, cert.IssueDate, cert.CompletionDate)

	stored, err := st.Certificates.ByCertificateID(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.Equal(t, cert.ID, stored.ID)
}

func TestCreateCertificateKeepsCallerValues(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		CertificateID:   "CERT_CUSTOM",
		Title:           "Web3 Development",
		RecipientName:   "Alice",
		RecipientWallet: "alice.testnet",
		IssuerWallet:    "achievo-org.testnet",
		Skills:          []string{"web3", "near_protocol"},
		IssueDate:       "2024-02-15",
		Status:          "verified",
	})
	require.NoError(t, err)

	require.Equal(t, "CERT_CUSTOM", cert.CertificateID)
	require.Equal(t, []string{"web3", "near_protocol"}, []string(cert.Skills))
	require.Equal(t, "2024-02-15", cert.IssueDate)
	// Legacy "verified" status is accepted and normalized.
	require.Equal(t, models.StatusValid, cert.Status)
}

func TestCreateCertificateRequiresRecipient(t *testing.T) {
	svc, _ := newCertificateTestService(&stubPinner{})

	_, err := svc.CreateCertificate(context.Background(), &CreateCertificateInput{
		Title: "Orphan certificate",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateCertificateStartsValid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCertificateTestService(&stubPinner{})

	// Revocation is a transition, not an initial state.
	_, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
		Status:          "revoked",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
		Status:          "frozen",
	})
	require.ErrorIs(t, err, ErrValidation)

	for _, status := range []string{"", "valid", "verified", "Verified"} {
		cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
			RecipientWallet: "alice.testnet",
			Status:          status,
		})
		require.NoError(t, err, "status %q", status)
		require.Equal(t, models.StatusValid, cert.Status)
	}
}

func TestValidateCertificateLookupKeys(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
		Title:           "Introduction to Blockchain",
	})
	require.NoError(t, err)

	for _, key := range []string{cert.CertificateID, cert.ID, cert.BlockchainHash} {
		result, err := svc.ValidateCertificate(ctx, key)
		require.NoError(t, err)
		require.True(t, result.IsValid, "key %q", key)
		require.NotNil(t, result.Certificate)
		require.Equal(t, cert.CertificateID, result.Certificate.CertificateID)
	}
}

func TestValidateCertificateUnknownKey(t *testing.T) {
	svc, _ := newCertificateTestService(&stubPinner{})

	result, err := svc.ValidateCertificate(context.Background(), "CERT_DOES_NOT_EXIST")
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Equal(t, "not found", result.Reason)
	require.Nil(t, result.Certificate)
}

func TestRevokeCertificateByIssuer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
		IssuerWallet:    "achievo-org.testnet",
	})
	require.NoError(t, err)

	revoked, err := svc.RevokeCertificate(ctx, "achievo-org.testnet", cert.CertificateID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRevoked, revoked.Status)

	result, err := svc.ValidateCertificate(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.False(t, result.IsValid)
	require.Equal(t, models.StatusRevoked, result.Certificate.Status)

	// Revoking again is a no-op, not an error.
	again, err := svc.RevokeCertificate(ctx, "achievo-org.testnet", cert.CertificateID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRevoked, again.Status)
}

func TestRevokeCertificateAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, st := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
		IssuerWallet:    "achievo-org.testnet",
	})
	require.NoError(t, err)

	_, err = svc.RevokeCertificate(ctx, "stranger.testnet", cert.CertificateID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, st.Roles.Upsert(ctx, &models.RoleAssignment{
		WalletAddress: "mod.testnet",
		Role:          models.RoleModerator,
		AssignedBy:    testOwner,
		AssignedAt:    time.Now().UTC(),
	}))
	revoked, err := svc.RevokeCertificate(ctx, "mod.testnet", cert.CertificateID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRevoked, revoked.Status)

	_, err = svc.RevokeCertificate(ctx, testOwner, "CERT_MISSING")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCertificateRejectsIdentityFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
	})
	require.NoError(t, err)

	for _, field := range []string{"recipientWallet", "certificateId", "issuerWallet", "courseId"} {
		_, err := svc.UpdateCertificate(ctx, cert.CertificateID, map[string]any{field: "tampered"})
		require.ErrorIs(t, err, ErrValidation, "field %q", field)
	}

	_, err = svc.UpdateCertificate(ctx, cert.CertificateID, map[string]any{"nonsense": "x"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateCertificate(ctx, "CERT_MISSING", map[string]any{"grade": "A"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCertificateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCertificateTestService(&stubPinner{})

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCertificate(ctx, cert.CertificateID, map[string]any{"grade": "A", "status": "revoked"})
	require.NoError(t, err)
	require.Equal(t, "A", updated.Grade)
	require.Equal(t, models.StatusRevoked, updated.Status)

	_, err = svc.UpdateCertificate(ctx, cert.CertificateID, map[string]any{"status": "valid"})
	require.ErrorIs(t, err, ErrPolicy)

	_, err = svc.UpdateCertificate(ctx, cert.CertificateID, map[string]any{"status": "frozen"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAnchorCertificate(t *testing.T) {
	ctx := context.Background()
	pinner := &stubPinner{}
	svc, st := newCertificateTestService(pinner)

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
		Title:           "Introduction to Blockchain",
	})
	require.NoError(t, err)

	result, err := svc.AnchorCertificate(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.True(t, result.Anchored)
	require.Equal(t, "QmContent", result.Certificate.ContentHash)
	require.Equal(t, "QmMeta", result.Certificate.MetadataHash)
	require.Equal(t, "QmMeta", result.Certificate.BlockchainHash)
	require.Len(t, pinner.pinned, 2)

	stored, err := st.Certificates.ByCertificateID(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.Equal(t, "QmMeta", stored.BlockchainHash)

	// The anchored hash becomes a lookup key.
	byHash, err := svc.ValidateCertificate(ctx, "QmMeta")
	require.NoError(t, err)
	require.True(t, byHash.IsValid)
}

// TestAnchorCertificateWithRealClient runs the anchor path through the
// actual Pinata client: the pin response parses regardless of the
// server's Content-Type, and the stored hashes are never empty.
func TestAnchorCertificateWithRealClient(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmRealHash"})
	}))
	t.Cleanup(srv.Close)

	client := pinata.NewClient(config.PinataConfig{
		APIKey:     "test-key",
		APISecret:  "test-secret",
		BaseURL:    srv.URL,
		GatewayURL: "https://gateway.test/ipfs",
	})
	svc, st := newCertificateTestService(client)

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
	})
	require.NoError(t, err)

	result, err := svc.AnchorCertificate(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.True(t, result.Anchored)
	require.Equal(t, "QmRealHash", result.Certificate.ContentHash)
	require.Equal(t, "QmRealHash", result.Certificate.MetadataHash)
	require.Equal(t, "QmRealHash", result.Certificate.BlockchainHash)

	stored, err := st.Certificates.ByCertificateID(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.Equal(t, "QmRealHash", stored.BlockchainHash)
}

// A 200 the client cannot extract a hash from must leave the record
// unanchored with its local placeholder intact.
func TestAnchorCertificateUnusablePinResponse(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	t.Cleanup(srv.Close)

	client := pinata.NewClient(config.PinataConfig{
		BaseURL:    srv.URL,
		GatewayURL: "https://gateway.test/ipfs",
	})
	svc, st := newCertificateTestService(client)

	cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
		RecipientWallet: "alice.testnet",
	})
	require.NoError(t, err)

	result, err := svc.AnchorCertificate(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.False(t, result.Anchored)

	stored, err := st.Certificates.ByCertificateID(ctx, cert.CertificateID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stored.BlockchainHash, "local_"))
	require.Empty(t, stored.ContentHash)
	require.Empty(t, stored.MetadataHash)
}

func TestAnchorCertificateBestEffort(t *testing.T) {
	ctx := context.Background()

	for name, pinner := range map[string]*stubPinner{
		"content pin fails":  {fileErr: errors.New("pinata unreachable")},
		"metadata pin fails": {jsonErr: errors.New("pinata unreachable")},
	} {
		t.Run(name, func(t *testing.T) {
			svc, st := newCertificateTestService(pinner)

			cert, err := svc.CreateCertificate(ctx, &CreateCertificateInput{
				RecipientWallet: "alice.testnet",
			})
			require.NoError(t, err)

			result, err := svc.AnchorCertificate(ctx, cert.CertificateID)
			require.NoError(t, err)
			require.False(t, result.Anchored)

			stored, err := st.Certificates.ByCertificateID(ctx, cert.CertificateID)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(stored.BlockchainHash, "local_"))
			require.Empty(t, stored.MetadataHash)
		})
	}
}
