package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "inmemory", cfg.Graph.Backend)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "archivegraphDB", cfg.Postgres.DBName)
	assert.Equal(t, 50, cfg.Postgres.MaxOpenConnections)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "archivegraph", cfg.Mongo.Database)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("GRAPH_BACKEND", "postgresql")
	t.Setenv("POSTGRES_HOST", "pg.internal")
	t.Setenv("POSTGRES_PORT", "6432")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgresql", cfg.Graph.Backend)
	assert.Equal(t, "pg.internal", cfg.Postgres.Host)
	assert.Equal(t, 6432, cfg.Postgres.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "admin",
		Password: "admin123",
		DBName:   "archivegraphDB",
	}
	assert.Equal(t,
		"postgres://admin:admin123@db:5432/archivegraphDB?sslmode=disable",
		c.DSN())
}
