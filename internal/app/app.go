package app

import (
	"errors"
	"fmt"

	"cabinet_backend/internal/config"
	"cabinet_backend/internal/gateway"
	"cabinet_backend/internal/handlers"
	"cabinet_backend/internal/logger"
	"cabinet_backend/internal/middleware"
	"cabinet_backend/internal/models"
	"cabinet_backend/internal/pricing"
	"cabinet_backend/internal/repositories"
	"cabinet_backend/internal/routes"
	"cabinet_backend/internal/services"
	"cabinet_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cabinet_backend/database"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter собирает полностью готовый *gin.Engine. Вынесен из Run,
// чтобы интеграционные тесты поднимали тот же роутер над тестовой БД.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	serviceContainer := initializeServices(cfg)
	appHandlers := initializeHandlers(cfg, serviceContainer)
	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	invoiceRepo := repositories.NewInvoiceRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()
	userRepo := repositories.NewUserRepository()
	webhookRepo := repositories.NewWebhookEventRepository()

	catalog := pricing.NewCatalog()

	invoiceService := services.NewInvoiceService(invoiceRepo)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, userRepo, catalog)
	reconciliationService := services.NewReconciliationService(
		catalog,
		invoiceService,
		subscriptionService,
		userRepo,
		webhookRepo,
		cfg.Gateway.WebhookSecret,
	)

	return &services.ServiceContainer{
		InvoiceService:        invoiceService,
		SubscriptionService:   subscriptionService,
		ReconciliationService: reconciliationService,
	}
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	userRepo := repositories.NewUserRepository()
	catalog := pricing.NewCatalog()

	gatewayClient := gateway.NewClient(gateway.Config{
		ShopID:     cfg.Gateway.ShopID,
		SecretKey:  cfg.Gateway.SecretKey,
		APIURL:     cfg.Gateway.APIURL,
		AppBaseURL: cfg.Gateway.AppBaseURL,
		Currency:   cfg.Gateway.Currency,
	})

	return &handlers.AppHandlers{
		InvoiceHandler:      handlers.NewInvoiceHandler(baseHandler, container.InvoiceService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, container.SubscriptionService, userRepo, catalog),
		PaymentHandler: handlers.NewPaymentHandler(
			baseHandler,
			gatewayClient,
			container.InvoiceService,
			container.ReconciliationService,
			userRepo,
			catalog,
		),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	var adminUser models.User
	result := tx.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		tx.Rollback()
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleAdmin,
	}

	if err := tx.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "email", adminEmail)
	return tx.Commit().Error
}
