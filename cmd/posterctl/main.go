// Command posterctl is the thin operational surface the core is wired
// behind: it loads configuration, connects the optional collaborators
// (Mongo graph store, Redis session cache, vision provider, authoritative
// validators), builds an IterativeProcessor, and serves a single
// /healthz route wrapping its HealthCheck(). The browser UI and the full
// HTTP API are out of scope — this is the thin health surface wired
// next to the dependency injection, nothing more.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/posterforge/extractioncore/internal/config"
	sessionctx "github.com/posterforge/extractioncore/internal/core/context"
	"github.com/posterforge/extractioncore/internal/core/phases"
	"github.com/posterforge/extractioncore/internal/core/processor"
	"github.com/posterforge/extractioncore/internal/services"
	"github.com/posterforge/extractioncore/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	db, err := database.NewMongoDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close(context.Background())

	graphStore := services.NewMongoGraphStore(db.Database)
	if err := graphStore.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal("Failed to ensure graph store indexes", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URI)
		if err != nil {
			logger.Fatal("Failed to parse Redis URI", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
	}

	var kb services.KnowledgeBaseSearch
	if cfg.Processing.KnowledgeBaseEnabled {
		kb = services.NewMongoKnowledgeBase(db.Database, redisClient, cfg.Redis.CacheTTL)
	}

	var recovery sessionctx.Recovery
	if redisClient != nil {
		recovery = services.NewSessionCache(redisClient, cfg.Redis.CacheTTL)
	}

	baseVision := services.NewHTTPVisionProvider(services.HTTPVisionConfig{
		BaseURL: cfg.Vision.BaseURL,
		APIKey:  cfg.Vision.APIKey,
		Model:   cfg.Vision.Model,
		Timeout: cfg.Vision.Timeout,
	}, logger)
	vision := services.VisionProvider(services.NewRateLimitedVisionProvider(baseVision, cfg.Vision.RatePerSecond, cfg.Vision.Burst))

	musicBrainz := services.NewMusicBrainzClient(cfg.Validators.MusicBrainzBaseURL, 0)
	tmdb := services.NewTMDBClient(cfg.Validators.TMDBBaseURL, cfg.Validators.TMDBAPIKey, 0)
	discogs := services.NewDiscogsClient(cfg.Validators.DiscogsBaseURL, cfg.Validators.DiscogsToken, 0)

	var entityService services.EntityService = graphStore
	var relationService services.RelationService = graphStore
	if !cfg.Processing.EntityServiceEnabled {
		entityService, relationService = nil, nil
	}

	newPhaseList := func(v services.VisionProvider) []phases.Phase {
		return []phases.Phase{
			&phases.TypePhase{Vision: v, KB: kb, Logger: logger},
			&phases.ArtistPhase{Vision: v, Validator: musicBrainz, Logger: logger},
			&phases.VenuePhase{Vision: v, Entity: entityService, Logger: logger},
			&phases.EventPhase{Vision: v, KB: kb, Logger: logger},
			&phases.AssemblyPhase{Entity: entityService, Relation: relationService, Logger: logger},
			&phases.EnrichmentPhase{Film: tmdb, MusicAuthority: musicBrainz, ReleaseAuthority: musicBrainz, SecondaryMusic: discogs, Logger: logger},
		}
	}

	proc := processor.New(logger, vision, newPhaseList, map[string]processor.HealthChecker{
		"musicbrainz": musicBrainz,
		"tmdb":        tmdb,
		"discogs":     discogs,
	}, recovery)

	router := setupRouter(cfg, proc, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func setupRouter(cfg *config.Config, proc *processor.IterativeProcessor, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		status := proc.HealthCheck(c.Request.Context())
		httpStatus := http.StatusOK
		if !status.Vision {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"vision":     status.Vision,
			"validators": status.Validators,
			"timestamp":  time.Now().UTC(),
		})
	})

	return router
}
