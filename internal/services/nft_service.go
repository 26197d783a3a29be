package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/pinata"
	"github.com/devprosvn/devpros-achievo/internal/store"
)

// NFTService records certificates minted as NEAR NFTs. Pinning of the
// token media and metadata follows the same best-effort contract as
// certificate anchoring.
type NFTService struct {
	nfts   store.NFTCertificateStore
	roles  *RoleService
	pinner Pinner
	logger *zap.Logger
}

func NewNFTService(st *store.Store, roles *RoleService, pinner Pinner, logger *zap.Logger) *NFTService {
	return &NFTService{
		nfts:   st.NFTCertificates,
		roles:  roles,
		pinner: pinner,
		logger: logger.With(zap.String("service", "nft_service")),
	}
}

type MintNFTInput struct {
	TokenID       string `json:"token_id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	CertificateID string `json:"certificate_id"`
}

// MintNFTCertificate persists an NFT certificate record and pins its
// NEP-171 metadata. The record is stored even when pinning fails.
func (ns *NFTService) MintNFTCertificate(ctx context.Context, actorWallet string, input *MintNFTInput) (*models.NFTCertificate, error) {
	allowed, err := ns.roles.HasAtLeastRole(ctx, actorWallet, models.RoleOrgVerifier)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: minting requires the organization role", ErrNotAuthorized)
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrValidation)
	}

	now := time.Now().UTC()
	nft := &models.NFTCertificate{
		TokenID:       input.TokenID,
		OwnerID:       strings.TrimSpace(input.OwnerID),
		IssuerID:      actorWallet,
		CertificateID: input.CertificateID,
		Title:         input.Title,
		Description:   input.Description,
		IssuedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if nft.TokenID == "" {
		nft.TokenID = fmt.Sprintf("TOKEN_%d", now.UnixMilli())
	}
	if nft.Title == "" {
		nft.Title = "Achievement Certificate"
	}
	if nft.Description == "" {
		nft.Description = "Digital certificate of achievement on NEAR Protocol"
	}

	ns.pinTokenMetadata(ctx, nft)

	if _, err := ns.nfts.Insert(ctx, nft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	ns.logger.Info("NFT certificate minted",
		zap.String("token_id", nft.TokenID),
		zap.String("owner", nft.OwnerID),
		zap.String("issuer", nft.IssuerID))
	return nft, nil
}

// pinTokenMetadata pins the token media and its NEP-171 metadata,
// sequentially because the metadata embeds the media address. Failures
// leave the record unanchored.
func (ns *NFTService) pinTokenMetadata(ctx context.Context, nft *models.NFTCertificate) {
	mediaText := fmt.Sprintf("DIGITAL CERTIFICATE NFT\n\nTitle: %s\nToken ID: %s\nOwner: %s\nIssuer: %s\n\n%s\n",
		nft.Title, nft.TokenID, nft.OwnerID, nft.IssuerID, nft.Description)

	media, err := ns.pinner.PinFile(ctx, fmt.Sprintf("nft_%s.txt", nft.TokenID), []byte(mediaText))
	if err != nil {
		ns.logger.Warn("NFT media pin failed, minting without anchor",
			zap.String("token_id", nft.TokenID), zap.Error(err))
		return
	}
	nft.MediaURL = media.URL
	nft.MediaHash = media.Hash

	metadata := &pinata.NFTTokenMetadata{
		Title:       nft.Title,
		Description: nft.Description,
		Media:       nft.MediaURL,
		MediaHash:   nft.MediaHash,
		Copies:      1,
		IssuedAt:    nft.IssuedAt.Format(time.RFC3339),
	}
	if nft.CertificateID != "" {
		metadata.Extra = "certificate_id:" + nft.CertificateID
	}

	reference, err := ns.pinner.PinJSON(ctx, fmt.Sprintf("nft_%s_metadata.json", nft.TokenID), metadata)
	if err != nil {
		ns.logger.Warn("NFT metadata pin failed, minting without reference",
			zap.String("token_id", nft.TokenID), zap.Error(err))
		return
	}
	nft.ReferenceURL = reference.URL
	nft.ReferenceHash = reference.Hash
}

func (ns *NFTService) ListNFTCertificates(ctx context.Context) ([]models.NFTCertificate, error) {
	return ns.nfts.List(ctx)
}

func (ns *NFTService) GetNFTCertificatesByOwner(ctx context.Context, ownerID string) ([]models.NFTCertificate, error) {
	return ns.nfts.ByOwner(ctx, ownerID)
}
