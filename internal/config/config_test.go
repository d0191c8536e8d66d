package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-service/internal/events"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080/api", cfg.UpstreamBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 30, cfg.DefaultPartMinutes)
	assert.True(t, cfg.AutoSubmitOnTimeUp)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("AUTO_SUBMIT_ON_TIME_UP", "false")
	t.Setenv("DEFAULT_PART_MINUTES", "45")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SNAPSHOT_CACHE_TTL", "not-a-duration")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.AutoSubmitOnTimeUp)
	assert.Equal(t, 45, cfg.DefaultPartMinutes)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.SnapshotCacheTTL)
}

func TestEventConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Equal(t, []string{"a:9092", "b:9092"}, (&EventConfig{KafkaBrokers: "a:9092, b:9092,"}).GetKafkaBrokers())

	t.Run("disabled falls back to mock", func(t *testing.T) {
		pub, err := (&EventConfig{Enabled: false, Publisher: "kafka"}).CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, pub)
	})

	t.Run("gochannel", func(t *testing.T) {
		pub, err := (&EventConfig{Enabled: true, Publisher: "gochannel", SessionTopic: "s"}).CreateEventPublisher(logger)
		require.NoError(t, err)
		defer pub.Close()
		assert.IsType(t, &events.WatermillEventPublisher{}, pub)
	})

	t.Run("unknown", func(t *testing.T) {
		pub, err := (&EventConfig{Enabled: true, Publisher: "carrier-pigeon"}).CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, pub)
	})
}
