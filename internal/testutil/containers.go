// Package testutil starts throwaway Postgres and Redis containers for
// integration tests. Tests using it are skipped unless MCQ_CONTAINER_TESTS=1.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// EnvContainerTests enables container-backed tests when set to "1".
const EnvContainerTests = "MCQ_CONTAINER_TESTS"

// RequireContainers skips t unless container tests are enabled.
func RequireContainers(t *testing.T) {
	t.Helper()
	_ = godotenv.Load()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv(EnvContainerTests) != "1" {
		t.Skipf("set %s=1 to run container tests", EnvContainerTests)
	}
}

// StartPostgres runs a Postgres container and returns its DSN. The
// container is terminated when t finishes.
func StartPostgres(t *testing.T) string {
	t.Helper()
	RequireContainers(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mcq_extractor_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}

	return fmt.Sprintf("postgres://test:test@%s:%s/mcq_extractor_test?sslmode=disable", host, port.Port())
}

// StartRedis runs a Redis container and returns its host:port address. The
// container is terminated when t finishes.
func StartRedis(t *testing.T) string {
	t.Helper()
	RequireContainers(t)
	ctx := context.Background()

	container, err := redis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port())
}
