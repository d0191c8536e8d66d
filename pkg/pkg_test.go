package pkg

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-service/internal/config"
	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

func TestInitDatabase_SQLite(t *testing.T) {
	cfg := &config.Config{
		Environment: "production",
		DatabaseURL: sqlitePrefix + filepath.Join(t.TempDir(), "sessions.db"),
	}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.Submission{}))
}

func TestDialectorFor(t *testing.T) {
	assert.Equal(t, "sqlite", dialectorFor("sqlite://local.db").Name())
	assert.Equal(t, "postgres", dialectorFor("postgres://user:pw@localhost:5432/db").Name())
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(&config.Config{RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRedisClient(&config.Config{RedisURL: "not a url"})
	assert.Error(t, err)
}
