package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/api"
	"github.com/devprosvn/devpros-achievo/internal/config"
	"github.com/devprosvn/devpros-achievo/internal/db"
	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/pinata"
	"github.com/devprosvn/devpros-achievo/internal/services"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/internal/store/gormstore"
	"github.com/devprosvn/devpros-achievo/internal/store/memstore"
	"github.com/devprosvn/devpros-achievo/pkg/logger"
	"github.com/devprosvn/devpros-achievo/pkg/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(cfg, zapLogger)

	st, closeStore, err := openStore(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	metricsCollector := metrics.NewMetricsCollector()
	pinataClient := pinata.NewClient(cfg.Pinata)

	roleService := services.NewRoleService(st, cfg.Near.OwnerAccountID, zapLogger)
	certificateService := services.NewCertificateService(st, roleService, pinataClient, zapLogger, metricsCollector)
	courseService := services.NewCourseService(st, roleService, zapLogger)
	nftService := services.NewNFTService(st, roleService, pinataClient, zapLogger)
	authService := services.NewAuthService(st, roleService, cfg.Security, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedDatabase(ctx, st, cfg.Near.OwnerAccountID, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	router := api.NewRouter(zapLogger, metricsCollector, st, authService, roleService, certificateService, courseService, nftService)
	router.SetupRoutes()

	go func() {
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")
	zapLogger.Info("Server gracefully stopped")
}

func loadConfig() (*config.Configuration, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadConfig(path)
	}
	cfg := config.Defaults()
	cfg.ApplyEnv()
	return cfg, nil
}

// openStore picks the store backend from configuration: Postgres for
// deployments, memory for local development without a database.
func openStore(cfg *config.Configuration, zapLogger *zap.Logger) (*store.Store, func(), error) {
	if cfg.Database.Driver == "memory" {
		zapLogger.Warn("Using in-memory store, data will not survive restarts")
		return memstore.New(), func() {}, nil
	}

	database, err := db.Initialize(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return gormstore.New(database), closeFn, nil
}

func seedDatabase(ctx context.Context, st *store.Store, ownerAccountID string, zapLogger *zap.Logger) error {
	courses, err := st.Courses.List(ctx)
	if err != nil {
		return err
	}
	if len(courses) > 0 {
		zapLogger.Info("Database already seeded, skipping")
		return nil
	}
	zapLogger.Info("Seeding database with initial data")

	now := time.Now().UTC()

	if err := st.Roles.Upsert(ctx, &models.RoleAssignment{
		WalletAddress: ownerAccountID,
		Role:          models.RoleAdmin,
		AssignedBy:    "system",
		AssignedAt:    now,
	}); err != nil {
		return err
	}

	seedCourses := []models.Course{
		{
			Title:              "Introduction to Blockchain",
			Description:        "Learn the fundamentals of blockchain technology",
			Category:           "blockchain",
			Instructor:         "Achievo Education Institute",
			Duration:           "8 weeks",
			Level:              "Beginner",
			PriceNEAR:          "5",
			PriceUSD:           "15",
			Skills:             []string{"blockchain", "cryptocurrency", "smart_contracts"},
			OrganizationWallet: "achievo-org.testnet",
			CreatedAt:          now,
			UpdatedAt:          now,
		},
		{
			Title:              "Web3 Development",
			Description:        "Build decentralized applications on NEAR Protocol",
			Category:           "development",
			Instructor:         "Achievo Education Institute",
			Duration:           "12 weeks",
			Level:              "Intermediate",
			PriceNEAR:          "10",
			PriceUSD:           "30",
			Skills:             []string{"web3", "smart_contracts", "dapp_development", "near_protocol"},
			OrganizationWallet: "achievo-org.testnet",
			CreatedAt:          now,
			UpdatedAt:          now,
		},
		{
			Title:              "DeFi Fundamentals",
			Description:        "Understanding Decentralized Finance protocols",
			Category:           "finance",
			Instructor:         "Achievo Education Institute",
			Duration:           "6 weeks",
			Level:              "Beginner",
			PriceNEAR:          "7",
			PriceUSD:           "21",
			Skills:             []string{"defi", "liquidity_pools", "yield_farming", "tokenomics"},
			OrganizationWallet: "achievo-org.testnet",
			CreatedAt:          now,
			UpdatedAt:          now,
		},
	}
	for i := range seedCourses {
		if _, err := st.Courses.Insert(ctx, &seedCourses[i]); err != nil {
			return err
		}
	}
	zapLogger.Info("Created initial courses", zap.Int("count", len(seedCourses)))

	if _, err := st.Organizations.Insert(ctx, &models.Organization{
		Name:          "Achievo Education Institute",
		Email:         "contact@achievo-edu.org",
		WalletAddress: "achievo-org.testnet",
		Description:   "Leading blockchain education institute",
		Website:       "https://achievo-edu.org",
		Verified:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		return err
	}

	if err := st.Roles.Upsert(ctx, &models.RoleAssignment{
		WalletAddress: "achievo-org.testnet",
		Role:          models.RoleOrgVerifier,
		AssignedBy:    ownerAccountID,
		AssignedAt:    now,
	}); err != nil {
		return err
	}

	if _, err := st.Certificates.Insert(ctx, &models.Certificate{
		CertificateID:   "CERT_001",
		Title:           "Introduction to Blockchain",
		RecipientName:   "John Student",
		RecipientWallet: "achievo-student.testnet",
		IssuerName:      "Achievo Education Institute",
		IssuerWallet:    "achievo-org.testnet",
		CourseID:        "BLOCKCHAIN_101",
		IssueDate:       "2024-02-15",
		CompletionDate:  "2024-02-15",
		Grade:           "A",
		Skills:          []string{"blockchain", "cryptocurrency", "smart_contracts"},
		Status:          models.StatusValid,
		BlockchainHash:  "QmSampleHash123456789",
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		return err
	}

	zapLogger.Info("Database seeding completed successfully")
	return nil
}
