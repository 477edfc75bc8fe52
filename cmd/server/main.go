package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack/backend/internal/api"
	"fittrack/backend/internal/config"
	"fittrack/backend/internal/observability"
	"fittrack/backend/internal/populate"
	"fittrack/backend/internal/repository"
	"fittrack/backend/internal/repository/memory"
	"fittrack/backend/internal/repository/mongo"
	"fittrack/backend/internal/service"
	"fittrack/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type repositories struct {
	users     repository.UserRepository
	workouts  repository.WorkoutRepository
	exercises repository.ExerciseRepository
	close     func()
}

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// openRepos is replaced in tests.
var openRepos = openRepositories

// run serves until ctx is done or the listener fails. Every error is returned
// so deferred cleanup, including the database disconnect, always runs.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting fittrack server", "driver", cfg.Database.Driver, "address", cfg.Server.Address)

	policy, err := populate.ParsePolicy(cfg.Populate.DanglingPolicy)
	if err != nil {
		return err
	}

	// --- Repositories ---
	repos, err := openRepos(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repos.close()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("initialize s3 storage: %w", err)
		}
	} else {
		logger.Info("s3 bucket not configured, exercise video endpoints disabled")
	}

	// --- Initialize Services ---
	resolver := populate.NewResolver(repos.workouts, repos.exercises, policy, logger)

	userService := service.NewUserService(repos.users, repos.workouts, resolver)
	workoutService := service.NewWorkoutService(repos.workouts, repos.exercises, resolver)
	exerciseService := service.NewExerciseService(repos.exercises, fileStorage, cfg.S3.URLExpiry, logger)

	// --- Initialize Gin Engine ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logger, userService, workoutService, exerciseService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
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
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}

func openRepositories(cfg config.DatabaseConfig, logger *slog.Logger) (*repositories, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on exit")
		return &repositories{
			users:     memory.NewUserRepository(),
			workouts:  memory.NewWorkoutRepository(),
			exercises: memory.NewExerciseRepository(),
			close:     func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Name)
	logger.Info("database connection established", "database", cfg.Name)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		// Missing indexes only cost performance.
		logger.Warn("failed to ensure indexes", "error", err)
	}

	return &repositories{
		users:     mongo.NewMongoUserRepository(db, cfg.OpTimeout),
		workouts:  mongo.NewMongoWorkoutRepository(db, cfg.OpTimeout),
		exercises: mongo.NewMongoExerciseRepository(db, cfg.OpTimeout),
		close: func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect mongodb", "error", err)
			}
		},
	}, nil
}
