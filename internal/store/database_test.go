package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unreachableDSN = "postgres://rinkside@127.0.0.1:1/rinkside?sslmode=disable&connect_timeout=1"

func TestNewDatabaseFailsHealthCheck(t *testing.T) {
	_, err := NewDatabase(context.Background(), unreachableDSN, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
}

func TestHealthCheckUsesWrappedHandle(t *testing.T) {
	conn, err := sqlx.Open("postgres", unreachableDSN)
	require.NoError(t, err)

	db := NewDatabaseFromDB(conn, nil)
	defer db.Close()

	assert.Same(t, conn, db.DB())
	assert.Error(t, db.HealthCheck(context.Background()))
}
