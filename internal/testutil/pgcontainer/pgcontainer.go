// Package pgcontainer starts a throwaway PostgreSQL for integration tests.
package pgcontainer

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image      = "postgres:16.3-alpine"
	dbName     = "hoopsrank"
	dbUser     = "hoopsrank"
	dbPassword = "secret"
)

// Container is a running PostgreSQL instance.
type Container struct {
	container *postgres.PostgresContainer
}

// Start runs a fresh container and waits until it accepts connections.
func Start(ctx context.Context) (*Container, error) {
	c, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}
	return &Container{container: c}, nil
}

// ConnectionString returns a DSN with TLS disabled.
func (c *Container) ConnectionString(ctx context.Context) (string, error) {
	return c.container.ConnectionString(ctx, "sslmode=disable")
}

// Terminate stops and removes the container.
func (c *Container) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
