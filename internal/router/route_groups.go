package router

import (
	"salon_backend/internal/handlers"
	"salon_backend/internal/middleware"
	"salon_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the routes reachable without a token.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
	group.POST("/bootstrap", authHandler.Bootstrap)
}

// SetupAuthenticatedAuthRoutes sets up the auth routes that need a token.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
	group.POST("/logout", authHandler.LogoutUser)
	group.POST("/register", middleware.RoleAuthMiddleware(models.RoleAdmin), authHandler.RegisterUser)
}

// SetupClientRoutes sets up clients, their loyalty card and their packages.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler, packageHandler *handlers.PackageHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	clientRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.DeleteClient)

		clientRoutes.GET("/:id/loyalty", clientHandler.GetLoyalty)
		clientRoutes.POST("/:id/loyalty/stamps", clientHandler.AwardStamp)
		clientRoutes.POST("/:id/loyalty/redeem", clientHandler.RedeemMimo)
		clientRoutes.POST("/:id/loyalty/reset", middleware.RoleAuthMiddleware(models.RoleAdmin), clientHandler.ResetCard)

		clientRoutes.GET("/:id/packages", packageHandler.GetClientPackages)
		clientRoutes.POST("/:id/packages", packageHandler.SellPackage)
		clientRoutes.DELETE("/:id/packages/:instanceId", packageHandler.DeletePackageInstance)
	}
}

// SetupCatalogRoutes sets up services and packages. Reads are open to staff.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	staff := middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff)
	admin := middleware.RoleAuthMiddleware(models.RoleAdmin)

	serviceRoutes := authenticatedGroup.Group("/services")
	{
		serviceRoutes.GET("", staff, catalogHandler.GetServices)
		serviceRoutes.GET("/:id", staff, catalogHandler.GetServiceByID)
		serviceRoutes.POST("", admin, catalogHandler.CreateService)
		serviceRoutes.PUT("/:id", admin, catalogHandler.UpdateService)
		serviceRoutes.DELETE("/:id", admin, catalogHandler.DeleteService)
	}

	packageRoutes := authenticatedGroup.Group("/packages")
	{
		packageRoutes.GET("", staff, catalogHandler.GetPackages)
		packageRoutes.GET("/:id", staff, catalogHandler.GetPackageByID)
		packageRoutes.POST("", admin, catalogHandler.CreatePackage)
		packageRoutes.PUT("/:id", admin, catalogHandler.UpdatePackage)
		packageRoutes.DELETE("/:id", admin, catalogHandler.DeletePackage)
	}
}

// SetupProfessionalRoutes sets up the professional routes.
func SetupProfessionalRoutes(authenticatedGroup *gin.RouterGroup, professionalHandler *handlers.ProfessionalHandler) {
	writeRoutes := authenticatedGroup.Group("/professionals")
	writeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		writeRoutes.POST("", professionalHandler.CreateProfessional)
		writeRoutes.PUT("/:id", professionalHandler.UpdateProfessional)
		writeRoutes.DELETE("/:id", professionalHandler.DeleteProfessional)
	}

	authenticatedGroup.GET("/professionals", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), professionalHandler.GetProfessionals)
	authenticatedGroup.GET("/professionals/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), professionalHandler.GetProfessionalByID)
}

// SetupAppointmentRoutes sets up the agenda routes.
func SetupAppointmentRoutes(authenticatedGroup *gin.RouterGroup, appointmentHandler *handlers.AppointmentHandler) {
	appointmentRoutes := authenticatedGroup.Group("/appointments")
	appointmentRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
		appointmentRoutes.POST("/recurring", appointmentHandler.CreateRecurring)
		appointmentRoutes.GET("", appointmentHandler.GetAppointments)
		appointmentRoutes.GET("/slots", appointmentHandler.FreeSlots)
		appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
		appointmentRoutes.PATCH("/:id/status", appointmentHandler.ChangeStatus)
		appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
	}
}

// SetupFinanceRoutes sets up the cash-flow routes.
func SetupFinanceRoutes(authenticatedGroup *gin.RouterGroup, financeHandler *handlers.FinanceHandler) {
	financeRoutes := authenticatedGroup.Group("/finance")
	financeRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		financeRoutes.GET("/transactions", financeHandler.GetTransactions)
		financeRoutes.POST("/transactions", financeHandler.CreateTransaction)
		financeRoutes.GET("/summary", financeHandler.GetSummary)
	}
}

// SetupProductRoutes sets up the inventory routes.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		productRoutes.POST("", productHandler.CreateProduct)
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
		productRoutes.PUT("/:id", productHandler.UpdateProduct)
		productRoutes.POST("/:id/stock", productHandler.AdjustStock)
		productRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), productHandler.DeleteProduct)
	}
}

// SetupConversationRoutes sets up messaging, including the websocket feed.
func SetupConversationRoutes(authenticatedGroup *gin.RouterGroup, messageHandler *handlers.MessageHandler) {
	conversationRoutes := authenticatedGroup.Group("/conversations")
	conversationRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		conversationRoutes.POST("", messageHandler.CreateConversation)
		conversationRoutes.GET("", messageHandler.GetConversations)
		conversationRoutes.DELETE("/:id", messageHandler.DeleteConversation)
		conversationRoutes.GET("/:id/messages", messageHandler.GetMessages)
		conversationRoutes.POST("/:id/messages", messageHandler.SendMessage)
		conversationRoutes.GET("/:id/ws", messageHandler.Subscribe)
	}
}

// SetupSettingsRoutes sets up the application settings routes.
func SetupSettingsRoutes(authenticatedGroup *gin.RouterGroup, settingHandler *handlers.SettingHandler) {
	authenticatedGroup.GET("/settings/profile", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), settingHandler.GetSalonProfile)

	settingsRoutes := authenticatedGroup.Group("/settings")
	settingsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		settingsRoutes.GET("", settingHandler.GetApplicationSettings)
		settingsRoutes.GET("/:key", settingHandler.GetApplicationSettingByKey)
		settingsRoutes.PUT("/:key", settingHandler.UpsertApplicationSetting)
		settingsRoutes.DELETE("/:key", settingHandler.DeleteApplicationSettingByKey)
	}
}

// SetupDashboardRoutes sets up the dashboard routes.
func SetupDashboardRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	dashboardRoutes := authenticatedGroup.Group("/dashboard")
	dashboardRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff))
	{
		dashboardRoutes.GET("/summary", reportHandler.GetDashboardSummary)
	}
}

// SetupAdminRoutes sets up backup/restore and on-demand maintenance.
func SetupAdminRoutes(authenticatedGroup *gin.RouterGroup, backupHandler *handlers.BackupHandler, packageHandler *handlers.PackageHandler) {
	backupRoutes := authenticatedGroup.Group("/backup")
	backupRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		backupRoutes.GET("", backupHandler.Export)
		backupRoutes.POST("/restore", backupHandler.Restore)
	}

	authenticatedGroup.POST("/maintenance/expire-packages", middleware.RoleAuthMiddleware(models.RoleAdmin), packageHandler.ExpireOverdue)
}
