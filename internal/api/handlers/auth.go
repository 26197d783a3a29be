package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger.With(zap.String("handler", "auth")),
	}
}

// WalletLogin exchanges a wallet address for a session token. The wallet
// is provisioned with the default role on first sight.
func (ah *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, role, err := ah.authService.WalletLogin(c.Request.Context(), req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"wallet_address": req.WalletAddress,
			"role":           role,
		},
	})
}

// Register provisions a student wallet. Kept for compatibility with the
// original REST surface; semantically equivalent to a wallet login.
func (ah *AuthHandler) Register(c *gin.Context) {
	ah.WalletLogin(c)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, org, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"name":           org.Name,
			"email":          org.Email,
			"wallet_address": org.WalletAddress,
		},
	})
}

func (ah *AuthHandler) RegisterOrganization(c *gin.Context) {
	var input services.RegisterOrgInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	org, err := ah.authService.RegisterOrganization(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organization": org})
}
