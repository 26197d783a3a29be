package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/services"
)

type CertificateHandler struct {
	certificateService *services.CertificateService
	logger             *zap.Logger
}

func NewCertificateHandler(certificateService *services.CertificateService, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		certificateService: certificateService,
		logger:             logger.With(zap.String("handler", "certificate")),
	}
}

func (ch *CertificateHandler) ListCertificates(c *gin.Context) {
	certs, err := ch.certificateService.ListCertificates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs})
}

func (ch *CertificateHandler) ListByCourse(c *gin.Context) {
	certs, err := ch.certificateService.GetCertificatesByCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs})
}

func (ch *CertificateHandler) IssueCertificate(c *gin.Context) {
	var input services.CreateCertificateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if input.IssuerWallet == "" {
		input.IssuerWallet = callerWallet(c)
	}

	cert, err := ch.certificateService.CreateCertificate(c.Request.Context(), &input)
	if err != nil {
		ch.logger.Error("Failed to issue certificate",
			zap.String("recipient", input.RecipientWallet),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"certificate": cert})
}

func (ch *CertificateHandler) AnchorCertificate(c *gin.Context) {
	result, err := ch.certificateService.AnchorCertificate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ch *CertificateHandler) UpdateCertificate(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cert, err := ch.certificateService.UpdateCertificate(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate": cert})
}

func (ch *CertificateHandler) RevokeCertificate(c *gin.Context) {
	cert, err := ch.certificateService.RevokeCertificate(c.Request.Context(), callerWallet(c), c.Param("id"))
	if err != nil {
		ch.logger.Warn("Failed to revoke certificate",
			zap.String("certificate_id", c.Param("id")),
			zap.String("caller", callerWallet(c)),
			zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate": cert})
}

// ValidateCertificate is the open verification endpoint. An unknown key
// is a negative result, not an error.
func (ch *CertificateHandler) ValidateCertificate(c *gin.Context) {
	var req struct {
		CertificateID string `json:"certificateId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := ch.certificateService.ValidateCertificate(c.Request.Context(), req.CertificateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
