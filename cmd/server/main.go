package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/database"
	"salon_backend/internal/jobs"
	"salon_backend/internal/metrics"
	"salon_backend/internal/realtime"
	"salon_backend/internal/router"
	"salon_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.ApplySchema(db, cfg.Database.SchemaPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	engine.Use(metrics.GinMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	hub := realtime.NewHub(cfg.CORSAllowedOrigins)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	svc := router.Setup(engine, db, cfg, hub, tokens)

	scheduler, err := jobs.NewScheduler(cfg.ExpirySweepCron, cfg.Location, svc.Packages)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule background jobs")
	}
	scheduler.Start()
	utils.LogInfo("Package expiry sweep scheduled", map[string]interface{}{"cron": cfg.ExpirySweepCron, "next_run": scheduler.Next()})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "env": cfg.Environment})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.LogInfo("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
	utils.LogInfo("Server exited")
}
