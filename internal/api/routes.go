package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/api/handlers"
	"github.com/devprosvn/devpros-achievo/internal/api/middleware"
	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/services"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/pkg/metrics"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metrics        *metrics.MetricsCollector
	authHandler    *handlers.AuthHandler
	certHandler    *handlers.CertificateHandler
	courseHandler  *handlers.CourseHandler
	roleHandler    *handlers.RoleHandler
	nftHandler     *handlers.NFTHandler
	orgHandler     *handlers.OrganizationHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
}

func NewRouter(
	logger *zap.Logger,
	collector *metrics.MetricsCollector,
	st *store.Store,
	authService *services.AuthService,
	roleService *services.RoleService,
	certificateService *services.CertificateService,
	courseService *services.CourseService,
	nftService *services.NFTService,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger)
	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())

	return &Router{
		engine:         engine,
		logger:         logger,
		metrics:        collector,
		authHandler:    handlers.NewAuthHandler(authService, logger),
		certHandler:    handlers.NewCertificateHandler(certificateService, logger),
		courseHandler:  handlers.NewCourseHandler(courseService, logger),
		roleHandler:    handlers.NewRoleHandler(roleService, logger),
		nftHandler:     handlers.NewNFTHandler(nftService, logger),
		orgHandler:     handlers.NewOrganizationHandler(st.Organizations, logger),
		authMiddleware: middleware.NewAuthMiddleware(authService, roleService),
		reqMiddleware:  reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "achievo-backend"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
		})
	})

	auth := r.engine.Group("/api/auth")
	auth.Use(r.reqMiddleware.ThrottleAuthAttempts())
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/register-org", r.authHandler.RegisterOrganization)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/wallet-login", r.authHandler.WalletLogin)
	}

	// Open endpoints: verification and catalog reads need no session.
	r.engine.POST("/api/validation/certificate", r.certHandler.ValidateCertificate)
	r.engine.GET("/api/certificates/course/:courseId", r.certHandler.ListByCourse)
	r.engine.GET("/api/courses", r.courseHandler.ListCourses)
	r.engine.GET("/api/courses/:id", r.courseHandler.GetCourse)
	r.engine.GET("/api/organizations", r.orgHandler.ListOrganizations)
	r.engine.GET("/api/nft-certificates", r.nftHandler.ListNFTCertificates)
	r.engine.GET("/api/nft-certificates/owner/:wallet", r.nftHandler.ListByOwner)

	authorized := r.engine.Group("/api")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.GET("/certificates", r.certHandler.ListCertificates)

		organization := authorized.Group("/")
		organization.Use(r.authMiddleware.RequireRole(models.RoleOrgVerifier))
		{
			organization.POST("/certificates/issue", r.certHandler.IssueCertificate)
			organization.POST("/certificates/:id/anchor", r.certHandler.AnchorCertificate)
			organization.PATCH("/certificates/:id", r.certHandler.UpdateCertificate)
			organization.POST("/courses", r.courseHandler.CreateCourse)
			organization.PUT("/courses/:id", r.courseHandler.UpdateCourse)
			organization.DELETE("/courses/:id", r.courseHandler.DeleteCourse)
			organization.POST("/nft-certificates/mint", r.nftHandler.MintNFTCertificate)
		}

		// Revocation authorizes inside the service: the issuer may revoke
		// its own certificates regardless of role.
		authorized.POST("/certificates/:id/revoke", r.certHandler.RevokeCertificate)

		moderation := authorized.Group("/roles")
		moderation.Use(r.authMiddleware.RequireRole(models.RoleModerator))
		{
			moderation.GET("", r.roleHandler.ListRoles)
			moderation.GET("/:wallet", r.roleHandler.GetRole)
		}

		admin := authorized.Group("/roles")
		admin.Use(r.authMiddleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/assign", r.roleHandler.AssignRole)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
