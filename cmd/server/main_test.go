package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"fittrack/backend/internal/config"
	"fittrack/backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepos swaps the repository opener for in-memory stores and counts closes.
func stubRepos(t *testing.T) (opened, closed *int) {
	t.Helper()
	opened, closed = new(int), new(int)
	original := openRepos
	openRepos = func(config.DatabaseConfig, *slog.Logger) (*repositories, error) {
		*opened++
		return &repositories{
			users:     memory.NewUserRepository(),
			workouts:  memory.NewWorkoutRepository(),
			exercises: memory.NewExerciseRepository(),
			close:     func() { *closed++ },
		}, nil
	}
	t.Cleanup(func() { openRepos = original })
	return opened, closed
}

func testConfig(address string) config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Address:         address,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{Driver: "memory", OpTimeout: time.Second},
		Log:      config.LogConfig{Level: "debug", Format: "text"},
		Populate: config.PopulateConfig{DanglingPolicy: "placeholder"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ListenFailureStillClosesRepositories(t *testing.T) {
	opened, closed := stubRepos(t)

	err := run(context.Background(), testConfig("no-port-here"), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
	assert.Equal(t, 1, *opened)
	assert.Equal(t, 1, *closed)
}

func TestRun_InvalidPolicyFailsBeforeOpeningStorage(t *testing.T) {
	opened, closed := stubRepos(t)
	cfg := testConfig("127.0.0.1:0")
	cfg.Populate.DanglingPolicy = "drop"

	err := run(context.Background(), cfg, discardLogger())
	require.Error(t, err)
	assert.Zero(t, *opened)
	assert.Zero(t, *closed)
}

func TestRun_ShutdownOnContextDone(t *testing.T) {
	opened, closed := stubRepos(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, testConfig("127.0.0.1:0"), discardLogger()))
	assert.Equal(t, 1, *opened)
	assert.Equal(t, 1, *closed)
}
