package main

import (
	"context"
	"doghouse/catalog"
	"doghouse/config"
	"doghouse/database"
	"doghouse/dogapi"
	"doghouse/handlers"
	"doghouse/service"
	"doghouse/version"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	config.ParseFlags()
	settings := config.Settings

	logFile, logWriter, err := setupLogging(settings.LogFilePath, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	log.Info().Str("version", version.GetFullVersion()).Msg("doghouse starting up...")

	repo := database.NewRepository(settings)
	if !repo.Configured() {
		log.Warn().Msg("Storage not configured; /data serves the local catalog and /dog, /save report unavailable")
	}

	var api *dogapi.Client
	if settings.DogAPIURL != "" {
		api = dogapi.NewClient(settings.DogAPIURL, time.Duration(settings.DogAPITimeoutSecs)*time.Second)
	}

	err = service.InitServices(repo, catalog.New(settings.FallbackFile), api, service.DogOptions{
		AutoSeed: settings.AutoSeed,
		Tiers:    settings.DogTiers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	log.Info().Str("tiers", strings.Join(service.GlobalServices.Dog.TierNames(), ",")).Msg("Retrieval chain ready")

	if settings.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Each gin line becomes an event on the application logger.
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter
	gin.DisableConsoleColor()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
	}))
	handlers.RegisterRoutes(r)

	addr := fmt.Sprintf("0.0.0.0:%d", settings.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("System shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := repo.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing storage")
	}

	log.Info().Msg("Server exited")
}
