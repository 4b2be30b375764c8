package router

import (
	"database/sql"
	"net/http"

	"salon_backend/internal/config"
	"salon_backend/internal/handlers"
	"salon_backend/internal/metrics"
	"salon_backend/internal/middleware"
	"salon_backend/internal/realtime"
	"salon_backend/internal/repositories"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Services exposes what main needs beyond HTTP, such as the scheduled jobs.
type Services struct {
	Packages services.PackageService
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config, hub *realtime.Hub, tokens *utils.TokenManager) *Services {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	professionalRepo := repositories.NewProfessionalRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	financeRepo := repositories.NewFinanceRepository(db)
	productRepo := repositories.NewProductRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	backupRepo := repositories.NewBackupRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, db, tokens)
	clientService := services.NewClientService(clientRepo, db)
	catalogService := services.NewCatalogService(catalogRepo, db)
	professionalService := services.NewProfessionalService(professionalRepo, db)
	packageService := services.NewPackageService(clientRepo, catalogRepo, financeRepo, db, cfg)
	appointmentService := services.NewAppointmentService(appointmentRepo, clientRepo, catalogRepo, professionalRepo, financeRepo, settingRepo, db, cfg)
	financeService := services.NewFinanceService(financeRepo, db, cfg)
	productService := services.NewProductService(productRepo, db)
	messageService := services.NewMessageService(messageRepo, clientRepo, hub, db)
	settingService := services.NewSettingService(settingRepo, db, cfg)
	reportService := services.NewReportService(reportRepo, financeRepo, cfg)
	backupService := services.NewBackupService(services.BackupRepositories{
		Backup:       backupRepo,
		Client:       clientRepo,
		Appointment:  appointmentRepo,
		Catalog:      catalogRepo,
		Professional: professionalRepo,
		Product:      productRepo,
		Finance:      financeRepo,
		Setting:      settingRepo,
		Message:      messageRepo,
	}, db)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	packageHandler := handlers.NewPackageHandler(packageService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	professionalHandler := handlers.NewProfessionalHandler(professionalService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	financeHandler := handlers.NewFinanceHandler(financeService)
	productHandler := handlers.NewProductHandler(productService)
	messageHandler := handlers.NewMessageHandler(messageService, hub)
	settingHandler := handlers.NewSettingHandler(settingService)
	reportHandler := handlers.NewReportHandler(reportService)
	backupHandler := handlers.NewBackupHandler(backupService)

	engine.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			utils.LogError(err, "Health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(tokens))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupClientRoutes(authenticated, clientHandler, packageHandler)
		SetupCatalogRoutes(authenticated, catalogHandler)
		SetupProfessionalRoutes(authenticated, professionalHandler)
		SetupAppointmentRoutes(authenticated, appointmentHandler)
		SetupFinanceRoutes(authenticated, financeHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupConversationRoutes(authenticated, messageHandler)
		SetupSettingsRoutes(authenticated, settingHandler)
		SetupDashboardRoutes(authenticated, reportHandler)
		SetupAdminRoutes(authenticated, backupHandler, packageHandler)
	}

	return &Services{Packages: packageService}
}
