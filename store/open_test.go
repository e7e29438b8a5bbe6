package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/store"
)

func TestOpen_SQLite(t *testing.T) {
	backend, err := store.Open(context.Background(), config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer backend.Close()

	workers, err := backend.ListWorkers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, workers)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
