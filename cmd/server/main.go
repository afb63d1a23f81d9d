package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/rs/cors"

	"github.com/czarnick89/workout-tracker/internal/api"
	"github.com/czarnick89/workout-tracker/internal/config"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/repository/gormrepo"
	"github.com/czarnick89/workout-tracker/internal/repository/mongo"
	"github.com/czarnick89/workout-tracker/internal/service"
	"github.com/czarnick89/workout-tracker/internal/storage"
)

// @title Workout Tracker API
// @version 1.0
// @description Multi-tenant API for logging workouts, exercises and sets.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		hclog.Default().Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "workouts",
		Level:      hclog.LevelFromString(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
	})
	logger.Info("starting workout tracker", "address", cfg.Server.Address)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server exiting")
}

func run(cfg config.Config, logger hclog.Logger) error {
	ctx := context.Background()

	// --- Database Connection ---
	db, err := gormrepo.Connect(gormrepo.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger.Named("db"))
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// --- Initialize Repositories ---
	userRepo := gormrepo.NewUserRepository(db)
	workoutRepo := gormrepo.NewWorkoutRepository(db)
	exerciseRepo := gormrepo.NewExerciseRepository(db)
	setRepo := gormrepo.NewSetRepository(db)

	var revokedRepo repository.RevokedTokenRepository
	switch cfg.Blacklist.Driver {
	case "mongo":
		mongoDB, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Blacklist.MongoURI,
			Database: cfg.Blacklist.MongoDatabase,
			Timeout:  cfg.Blacklist.MongoTimeout,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := mongo.Close(mongoDB, cfg.Blacklist.MongoTimeout); err != nil {
				logger.Error("failed to disconnect mongodb", "error", err)
			}
		}()

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err = mongo.EnsureRevokedTokenIndexes(indexCtx, mongoDB)
		cancel()
		if err != nil {
			return err
		}
		revokedRepo = mongo.NewMongoRevokedTokenRepository(mongoDB)
		logger.Info("token blacklist in mongodb", "database", cfg.Blacklist.MongoDatabase)
	default:
		pruned, err := gormrepo.PruneExpired(ctx, db, time.Now())
		if err != nil {
			return err
		}
		revokedRepo = gormrepo.NewRevokedTokenRepository(db)
		logger.Info("token blacklist in database", "pruned", pruned)
	}

	// --- Initialize Services ---
	services := api.Services{
		Auth:      service.NewAuthService(userRepo, revokedRepo, cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration),
		Workouts:  service.NewWorkoutService(workoutRepo, logger),
		Exercises: service.NewExerciseService(exerciseRepo, workoutRepo, logger),
		Sets:      service.NewSetService(setRepo, exerciseRepo, logger),
	}

	// --- Initialize Storage ---
	if cfg.S3.Enabled() {
		fileStorage, err := storage.NewS3Storage(ctx, cfg.S3, logger.Named("storage"))
		if err != nil {
			return err
		}
		services.Export = service.NewExportService(workoutRepo, fileStorage, cfg.S3.PresignExpiration, logger)
	} else {
		logger.Info("object storage not configured, workout export disabled")
	}

	throttle, err := api.NewThrottle(cfg.Throttle, logger.Named("throttle"))
	if err != nil {
		return err
	}

	// --- Setup Routes ---
	if !logger.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(services, api.RouterOptions{
		Logger:     logger,
		Pagination: cfg.Pagination,
		Throttle:   throttle,
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
	}).Handler(router)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	// The server has 5 seconds to finish the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	return server.Shutdown(ctxShutdown)
}
