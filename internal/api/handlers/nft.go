package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/services"
)

type NFTHandler struct {
	nftService *services.NFTService
	logger     *zap.Logger
}

func NewNFTHandler(nftService *services.NFTService, logger *zap.Logger) *NFTHandler {
	return &NFTHandler{
		nftService: nftService,
		logger:     logger.With(zap.String("handler", "nft")),
	}
}

func (nh *NFTHandler) ListNFTCertificates(c *gin.Context) {
	nfts, err := nh.nftService.ListNFTCertificates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft_certificates": nfts})
}

func (nh *NFTHandler) ListByOwner(c *gin.Context) {
	nfts, err := nh.nftService.GetNFTCertificatesByOwner(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nft_certificates": nfts})
}

func (nh *NFTHandler) MintNFTCertificate(c *gin.Context) {
	var input services.MintNFTInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	nft, err := nh.nftService.MintNFTCertificate(c.Request.Context(), callerWallet(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"nft_certificate": nft})
}
