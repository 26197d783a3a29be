package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/store"
)

type OrganizationHandler struct {
	organizations store.OrganizationStore
	logger        *zap.Logger
}

func NewOrganizationHandler(organizations store.OrganizationStore, logger *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		organizations: organizations,
		logger:        logger.With(zap.String("handler", "organization")),
	}
}

func (oh *OrganizationHandler) ListOrganizations(c *gin.Context) {
	orgs, err := oh.organizations.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}
