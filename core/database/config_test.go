package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	cfg := Config{Host: "db", Name: "cinebot", User: "bot", Password: "p@ss word"}
	require.NoError(t, cfg.Normalize())

	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, "user=bot password=p@ss word host=db port=5432 dbname=cinebot sslmode=disable", cfg.KeywordDSN())
	assert.Equal(t, "postgres://bot:p%40ss%20word@db:5432/cinebot?sslmode=disable", cfg.URL())

	assert.Error(t, (&Config{Name: "cinebot"}).Normalize())
	assert.Error(t, (&Config{Host: "db"}).Normalize())
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_favs.up.sql", "000001_init.up.sql", "000001_init.down.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	files := listMigrationFiles(dir)
	assert.Equal(t, []string{"000001_init.up.sql", "000002_favs.up.sql"}, files)
	assert.Equal(t, uint64(2), parseVersion("000002_favs.up.sql"))
	assert.Zero(t, parseVersion("init.up.sql"))
	assert.Equal(t, 2, countApplied(files, 0, 2))
	assert.Equal(t, 1, countApplied(files, 1, 2))
	assert.Zero(t, countApplied(files, 2, 2))
	assert.Nil(t, listMigrationFiles(filepath.Join(dir, "missing")))
}
