package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/services"
)

type RoleHandler struct {
	roleService *services.RoleService
	logger      *zap.Logger
}

func NewRoleHandler(roleService *services.RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		logger:      logger.With(zap.String("handler", "role")),
	}
}

func (rh *RoleHandler) ListRoles(c *gin.Context) {
	assignments, err := rh.roleService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": assignments})
}

func (rh *RoleHandler) GetRole(c *gin.Context) {
	role, err := rh.roleService.RoleOf(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wallet_address": c.Param("wallet"),
		"role":           role,
	})
}

func (rh *RoleHandler) AssignRole(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address"`
		Role          string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	assignment, err := rh.roleService.AssignRole(c.Request.Context(), callerWallet(c), req.WalletAddress, models.Role(req.Role))
	if err != nil {
		rh.logger.Warn("Role assignment rejected",
			zap.String("actor", callerWallet(c)),
			zap.String("target", req.WalletAddress),
			zap.String("role", req.Role),
			zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}
