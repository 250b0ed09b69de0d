package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

type mockDashboardRepo struct {
	stats *models.DashboardStats
	calls int
}

func (m *mockDashboardRepo) Stats(ctx context.Context) (*models.DashboardStats, error) {
	m.calls++
	return m.stats, nil
}

type mapCache struct {
	entries map[string][]byte
	sets    int
}

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.Clone(appErrors.ErrCacheMiss, "")
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func TestDashboardStatsPopulatesCacheOnMiss(t *testing.T) {
	repo := &mockDashboardRepo{stats: &models.DashboardStats{TotalApplicants: 12, ActiveCourses: 3}}
	cache := &mapCache{}
	svc := NewDashboardService(repo, cache, time.Minute, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalApplicants)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestDashboardStatsServesFromCache(t *testing.T) {
	repo := &mockDashboardRepo{stats: &models.DashboardStats{TotalApplicants: 12}}
	cache := &mapCache{}
	svc := NewDashboardService(repo, cache, time.Minute, zap.NewNop())

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)

	repo.stats.TotalApplicants = 99
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalApplicants)
	assert.Equal(t, 1, repo.calls)
}

func TestDashboardStatsWorksWithoutCache(t *testing.T) {
	repo := &mockDashboardRepo{stats: &models.DashboardStats{TotalStaff: 2}}
	svc := NewDashboardService(repo, nil, time.Minute, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStaff)
}
