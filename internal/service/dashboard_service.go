package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type dashboardRepository interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const dashboardCacheKey = "dashboard:stats"

// DashboardService serves aggregate statistics for the staff landing page,
// cached briefly since the numbers tolerate short staleness.
type DashboardService struct {
	repo    dashboardRepository
	cache   statsCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *MetricsService
}

// NewDashboardService creates a new dashboard service instance.
func NewDashboardService(repo dashboardRepository, cache statsCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// SetMetrics attaches cache hit/miss counters. Optional.
func (s *DashboardService) SetMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// Stats returns the dashboard aggregate, serving from cache when warm.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard statistics")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("failed to cache dashboard statistics", zap.Error(err))
		}
	}
	return stats, nil
}
