package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SAP-F-2025/exam-session-service/internal/models"
)

const snapshotPrefix = "snapshot"

// ContentFetcher loads test content from the source of truth.
type ContentFetcher interface {
	FetchTestContent(ctx context.Context, testID string, partIDs []string) (*models.TestSnapshot, error)
}

// SnapshotCache serves test content from the cache and falls back to the
// wrapped fetcher. Cache failures never fail a fetch.
type SnapshotCache struct {
	cache   CacheService
	fetcher ContentFetcher
	ttl     time.Duration
	logger  *zap.Logger
}

func NewSnapshotCache(cache CacheService, fetcher ContentFetcher, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotCache{
		cache:   cache,
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger.Named("snapshot_cache"),
	}
}

func (s *SnapshotCache) FetchTestContent(ctx context.Context, testID string, partIDs []string) (*models.TestSnapshot, error) {
	key := SnapshotKey(testID, partIDs)

	var cached models.TestSnapshot
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		s.logger.Debug("snapshot cache hit", zap.String("key", key))
		return &cached, nil
	case !errors.Is(err, ErrCacheMiss):
		s.logger.Warn("snapshot cache unavailable, fetching upstream", zap.String("key", key), zap.Error(err))
	}

	snapshot, err := s.fetcher.FetchTestContent(ctx, testID, partIDs)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		if err := s.cache.Set(ctx, key, snapshot, s.ttl); err != nil {
			s.logger.Warn("failed to cache snapshot", zap.String("key", key), zap.Error(err))
		}
	}
	return snapshot, nil
}

// Invalidate drops every cached part selection of testID.
func (s *SnapshotCache) Invalidate(ctx context.Context, testID string) error {
	return s.cache.DeletePattern(ctx, snapshotPrefix+":"+testID+":*")
}

// SnapshotKey keeps part ids in the requested order, since the upstream
// returns parts in that order.
func SnapshotKey(testID string, partIDs []string) string {
	selection := strings.Join(partIDs, ",")
	if selection == "" {
		selection = "all"
	}
	return snapshotPrefix + ":" + testID + ":" + selection
}
