package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/pinata"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/pkg/metrics"
)

// defaultSkill is attached to certificates issued without an explicit
// skill list.
const defaultSkill = "learning"

// Pinner is the content-addressing collaborator used to anchor
// certificates. Anchoring is best-effort: a certificate is complete with
// or without it.
type Pinner interface {
	PinFile(ctx context.Context, name string, data []byte) (*pinata.PinResult, error)
	PinJSON(ctx context.Context, name string, content any) (*pinata.PinResult, error)
}

// CertificateService owns the certificate lifecycle: creation, listing,
// updates, validation lookups, anchoring and revocation.
type CertificateService struct {
	certs   store.CertificateStore
	roles   *RoleService
	pinner  Pinner
	logger  *zap.Logger
	metrics *metrics.MetricsCollector
}

func NewCertificateService(st *store.Store, roles *RoleService, pinner Pinner, logger *zap.Logger, collector *metrics.MetricsCollector) *CertificateService {
	return &CertificateService{
		certs:   st.Certificates,
		roles:   roles,
		pinner:  pinner,
		logger:  logger.With(zap.String("service", "certificate_service")),
		metrics: collector,
	}
}

// CreateCertificateInput carries caller-supplied certificate fields.
// Everything except RecipientWallet is optional; defaults are filled in
// by normalization.
type CreateCertificateInput struct {
	CertificateID   string   `json:"certificateId"`
	Title           string   `json:"title"`
	RecipientName   string   `json:"recipientName"`
	RecipientWallet string   `json:"recipientWallet"`
	IssuerName      string   `json:"issuerName"`
	IssuerWallet    string   `json:"issuerWallet"`
	CourseID        string   `json:"courseId"`
	Grade           string   `json:"grade"`
	Skills          []string `json:"skills"`
	IssueDate       string   `json:"issueDate"`
	CompletionDate  string   `json:"completionDate"`
	Status          string   `json:"status"`
}

// normalize applies the certificate default table in one place:
//
//	certificateId   generated timestamp token
//	skills          ["learning"]
//	issueDate       creation time
//	completionDate  creation time
//	status          always valid; revocation is the only way out
//	blockchainHash  local placeholder until anchoring replaces it
func normalize(input *CreateCertificateInput, now time.Time) *models.Certificate {
	cert := &models.Certificate{
		CertificateID:   strings.TrimSpace(input.CertificateID),
		Title:           input.Title,
		RecipientName:   input.RecipientName,
		RecipientWallet: strings.TrimSpace(input.RecipientWallet),
		IssuerName:      input.IssuerName,
		IssuerWallet:    strings.TrimSpace(input.IssuerWallet),
		CourseID:        input.CourseID,
		Grade:           input.Grade,
		Skills:          input.Skills,
		IssueDate:       input.IssueDate,
		CompletionDate:  input.CompletionDate,
		Status:          models.StatusValid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if cert.CertificateID == "" {
		cert.CertificateID = generateCertificateID(now)
	}
	if len(cert.Skills) == 0 {
		cert.Skills = []string{defaultSkill}
	}
	if cert.IssueDate == "" {
		cert.IssueDate = now.Format(time.RFC3339)
	}
	if cert.CompletionDate == "" {
		cert.CompletionDate = now.Format(time.RFC3339)
	}
	cert.BlockchainHash = fmt.Sprintf("local_%d", now.UnixMilli())

	return cert
}

func generateCertificateID(now time.Time) string {
	return fmt.Sprintf("CERT_%d_%s", now.UnixMilli(), uuid.New().String()[:8])
}

// CreateCertificate normalizes the input, persists the record and returns
// it with its storage-assigned id. Missing optional fields never fail
// creation; only a structurally missing recipient identity does.
func (cs *CertificateService) CreateCertificate(ctx context.Context, input *CreateCertificateInput) (*models.Certificate, error) {
	if strings.TrimSpace(input.RecipientWallet) == "" {
		return nil, fmt.Errorf("%w: recipientWallet is required", ErrValidation)
	}
	// Certificates are born valid; "verified" is a legacy synonym.
	switch strings.ToLower(strings.TrimSpace(input.Status)) {
	case "", string(models.StatusValid), "verified":
	default:
		return nil, fmt.Errorf("%w: certificates are created valid, got status %q", ErrValidation, input.Status)
	}

	cert := normalize(input, time.Now().UTC())
	if _, err := cs.certs.Insert(ctx, cert); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	cs.metrics.IncrementCounter("certificates.created", nil)
	cs.logger.Info("Certificate created",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("recipient", cert.RecipientWallet),
		zap.String("issuer", cert.IssuerWallet))
	return cert, nil
}

// AnchorResult reports whether anchoring succeeded; the certificate is
// returned either way.
type AnchorResult struct {
	Certificate *models.Certificate `json:"certificate"`
	Anchored    bool                `json:"anchored"`
}

// AnchorCertificate pins the certificate's text rendition, then its JSON
// metadata referencing that rendition, and records the resulting
// addresses on the certificate. Pin failures are logged and reported
// through the Anchored flag, never as errors: the record stays valid
// without an anchor.
func (cs *CertificateService) AnchorCertificate(ctx context.Context, key string) (*AnchorResult, error) {
	cert, err := cs.findCertificate(ctx, key)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content, err := cs.pinner.PinFile(ctx, fmt.Sprintf("certificate_%s.txt", cert.CertificateID), pinata.RenderCertificateText(cert))
	if err != nil {
		cs.logger.Warn("certificate anchoring failed, continuing without anchor",
			zap.String("certificate_id", cert.CertificateID),
			zap.Error(err))
		return &AnchorResult{Certificate: cert, Anchored: false}, nil
	}

	// The metadata document embeds the content address, so the two pins
	// are strictly sequential.
	metadata := pinata.BuildCertificateMetadata(cert, content.URL)
	meta, err := cs.pinner.PinJSON(ctx, fmt.Sprintf("Certificate_%s_metadata.json", cert.CertificateID), metadata)
	if err != nil {
		cs.logger.Warn("certificate metadata pin failed, continuing without anchor",
			zap.String("certificate_id", cert.CertificateID),
			zap.Error(err))
		return &AnchorResult{Certificate: cert, Anchored: false}, nil
	}
	cs.metrics.ObserveLatency("pinata.anchor", time.Since(start))

	cert.ContentHash = content.Hash
	cert.ContentURL = content.URL
	cert.MetadataHash = meta.Hash
	cert.MetadataURL = meta.URL
	cert.BlockchainHash = meta.Hash
	cert.UpdatedAt = time.Now().UTC()

	if err := cs.certs.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	cs.metrics.IncrementCounter("certificates.anchored", nil)
	cs.logger.Info("Certificate anchored",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("content_hash", cert.ContentHash),
		zap.String("metadata_hash", cert.MetadataHash))
	return &AnchorResult{Certificate: cert, Anchored: true}, nil
}

// ListCertificates returns every certificate, most recent first. Revoked
// certificates remain listed; revocation flags, it never deletes.
func (cs *CertificateService) ListCertificates(ctx context.Context) ([]models.Certificate, error) {
	return cs.certs.List(ctx)
}

func (cs *CertificateService) GetCertificatesByCourse(ctx context.Context, courseID string) ([]models.Certificate, error) {
	return cs.certs.ByCourse(ctx, courseID)
}

// immutableFields are the identity fields UpdateCertificate refuses to
// patch. Recipient, issuer and course bindings are fixed at creation.
var immutableFields = map[string]bool{
	"id":              true,
	"certificateId":   true,
	"recipientName":   true,
	"recipientWallet": true,
	"issuerName":      true,
	"issuerWallet":    true,
	"courseId":        true,
	"title":           true,
	"createdAt":       true,
}

var patchableFields = map[string]bool{
	"grade":          true,
	"status":         true,
	"contentHash":    true,
	"contentUrl":     true,
	"metadataHash":   true,
	"metadataUrl":    true,
	"blockchainHash": true,
	"issueDate":      true,
	"completionDate": true,
}

// UpdateCertificate merges a partial patch into the stored record and
// refreshes updatedAt. Identity fields are rejected; status can only
// move towards revoked.
func (cs *CertificateService) UpdateCertificate(ctx context.Context, key string, patch map[string]any) (*models.Certificate, error) {
	for field := range patch {
		if immutableFields[field] {
			return nil, fmt.Errorf("%w: field %q is immutable", ErrValidation, field)
		}
		if !patchableFields[field] {
			return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
		}
	}

	cert, err := cs.findCertificate(ctx, key)
	if err != nil {
		return nil, err
	}

	if raw, ok := patch["status"]; ok {
		status, _ := raw.(string)
		next := models.CertificateStatus(status)
		if strings.EqualFold(status, "verified") {
			next = models.StatusValid
		}
		if next != models.StatusValid && next != models.StatusRevoked {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		if cert.Status == models.StatusRevoked && next == models.StatusValid {
			return nil, fmt.Errorf("%w: revocation is terminal", ErrPolicy)
		}
		cert.Status = next
	}

	applyString := func(field string, dst *string) {
		if raw, ok := patch[field]; ok {
			if v, ok := raw.(string); ok {
				*dst = v
			}
		}
	}
	applyString("grade", &cert.Grade)
	applyString("contentHash", &cert.ContentHash)
	applyString("contentUrl", &cert.ContentURL)
	applyString("metadataHash", &cert.MetadataHash)
	applyString("metadataUrl", &cert.MetadataURL)
	applyString("blockchainHash", &cert.BlockchainHash)
	applyString("issueDate", &cert.IssueDate)
	applyString("completionDate", &cert.CompletionDate)

	cert.UpdatedAt = time.Now().UTC()
	if err := cs.certs.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	cs.logger.Info("Certificate updated", zap.String("certificate_id", cert.CertificateID))
	return cert, nil
}

// CertificateSummary is the projection returned by validation.
type CertificateSummary struct {
	CertificateID  string                   `json:"certificateId"`
	Title          string                   `json:"title"`
	RecipientName  string                   `json:"recipientName"`
	IssuerName     string                   `json:"issuerName"`
	CourseID       string                   `json:"courseId"`
	IssueDate      string                   `json:"issueDate"`
	Status         models.CertificateStatus `json:"status"`
	BlockchainHash string                   `json:"blockchainHash"`
}

// ValidationResult reports whether a certificate is currently valid.
type ValidationResult struct {
	IsValid     bool                `json:"isValid"`
	Reason      string              `json:"reason,omitempty"`
	Certificate *CertificateSummary `json:"certificate,omitempty"`
}

// ValidateCertificate looks a certificate up by certificateId, by its
// storage document id, or by blockchainHash, in that order, and projects
// its validity. It never mutates state and reports an unknown key as an
// invalid result rather than an error.
func (cs *CertificateService) ValidateCertificate(ctx context.Context, key string) (*ValidationResult, error) {
	cert, err := cs.findCertificate(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return &ValidationResult{IsValid: false, Reason: "not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	return &ValidationResult{
		IsValid: !cert.Revoked(),
		Certificate: &CertificateSummary{
			CertificateID:  cert.CertificateID,
			Title:          cert.Title,
			RecipientName:  cert.RecipientName,
			IssuerName:     cert.IssuerName,
			CourseID:       cert.CourseID,
			IssueDate:      cert.IssueDate,
			Status:         cert.Status,
			BlockchainHash: cert.BlockchainHash,
		},
	}, nil
}

// RevokeCertificate transitions a certificate to its terminal revoked
// state. The issuing wallet may revoke its own certificates; anyone else
// needs at least the moderator role. Revoking an already-revoked
// certificate is a no-op.
func (cs *CertificateService) RevokeCertificate(ctx context.Context, callerWallet, key string) (*models.Certificate, error) {
	cert, err := cs.findCertificate(ctx, key)
	if err != nil {
		return nil, err
	}

	if callerWallet != cert.IssuerWallet {
		allowed, err := cs.roles.HasAtLeastRole(ctx, callerWallet, models.RoleModerator)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: only the issuer or a moderator may revoke", ErrNotAuthorized)
		}
	}

	if cert.Revoked() {
		return cert, nil
	}

	cert.Status = models.StatusRevoked
	cert.UpdatedAt = time.Now().UTC()
	if err := cs.certs.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	cs.metrics.IncrementCounter("certificates.revoked", nil)
	cs.logger.Info("Certificate revoked",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("revoked_by", callerWallet))
	return cert, nil
}

// findCertificate resolves a lookup key against certificateId, document
// id and blockchainHash, first match wins in that order.
func (cs *CertificateService) findCertificate(ctx context.Context, key string) (*models.Certificate, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: certificate id is required", ErrValidation)
	}

	cert, err := cs.certs.ByCertificateID(ctx, key)
	if err == nil {
		return cert, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	cert, err = cs.certs.Get(ctx, key)
	if err == nil {
		return cert, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	cert, err = cs.certs.ByBlockchainHash(ctx, key)
	if err == nil {
		return cert, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return nil, fmt.Errorf("certificate %q: %w", key, ErrNotFound)
}
