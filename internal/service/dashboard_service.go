package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/visulab/backend/internal/analytics"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/infrastructure/redis"
	"github.com/visulab/backend/internal/observability/metrics"
	"github.com/visulab/backend/internal/reliability/circuitbreaker"
)

// DashboardData is the aggregate payload behind the dashboard view
type DashboardData struct {
	Stats       *analytics.Stats      `json:"stats"`
	Ranking     []analytics.RankRow   `json:"ranking"`
	ByIndex     []analytics.NameValue `json:"by_index"`
	ByTreatment []analytics.NameValue `json:"by_treatment"`
}

// DashboardService computes filtered dashboard aggregates. Unfiltered
// views are served from Redis behind a circuit breaker; when Redis is
// down the service computes directly from Postgres.
type DashboardService struct {
	records  domain.ShortageRepository
	cache    *redis.Client
	breaker  *circuitbreaker.CircuitBreaker
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service. cache may be nil.
func NewDashboardService(
	records domain.ShortageRepository,
	cache *redis.Client,
	breaker *circuitbreaker.CircuitBreaker,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		records:  records,
		cache:    cache,
		breaker:  breaker,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetDashboard returns aggregates for the records matching criteria
func (s *DashboardService) GetDashboard(ctx context.Context, criteria analytics.Criteria) (*DashboardData, error) {
	cacheable := s.cache != nil && criteria.DateFrom == "" && criteria.DateTo == "" &&
		criteria.LensIndex == "" && criteria.Treatment == ""

	if cacheable {
		if data := s.readCache(ctx, cacheKey(criteria.TenantID)); data != nil {
			return data, nil
		}
	} else {
		metrics.ObserveDashboardCache("bypass")
	}

	data, err := s.compute(criteria)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.writeCache(ctx, cacheKey(criteria.TenantID), data)
	}
	return data, nil
}

func (s *DashboardService) compute(criteria analytics.Criteria) (*DashboardData, error) {
	var (
		records []domain.ShortageRecord
		err     error
	)
	if criteria.TenantID != "" {
		records, err = s.records.ListByTenant(criteria.TenantID)
	} else {
		records, err = s.records.List()
	}
	if err != nil {
		return nil, err
	}

	filtered := criteria.Filter(records)
	return &DashboardData{
		Stats:       analytics.Summarize(filtered),
		Ranking:     analytics.Rank(filtered),
		ByIndex:     analytics.GroupSumByField(filtered, analytics.FieldLensIndex),
		ByTreatment: analytics.GroupSumByField(filtered, analytics.FieldTreatment),
	}, nil
}

func cacheKey(tenantID string) string {
	if tenantID == "" {
		return "dashboard:all"
	}
	return "dashboard:" + tenantID
}

func (s *DashboardService) readCache(ctx context.Context, key string) *DashboardData {
	if !s.breaker.AllowRequest() {
		metrics.ObserveDashboardCache("bypass")
		return nil
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			s.breaker.RecordSuccess()
			metrics.ObserveDashboardCache("miss")
			return nil
		}
		s.breaker.RecordFailure()
		metrics.ObserveDashboardCache("error")
		s.logger.Warn("dashboard cache read failed", slog.String("error", err.Error()))
		return nil
	}
	s.breaker.RecordSuccess()

	var data DashboardData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("dashboard cache entry corrupt", slog.String("key", key))
		_ = s.cache.Delete(ctx, key)
		return nil
	}
	metrics.ObserveDashboardCache("hit")
	return &data
}

func (s *DashboardService) writeCache(ctx context.Context, key string, data *DashboardData) {
	if !s.breaker.AllowRequest() {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.breaker.RecordFailure()
		s.logger.Warn("dashboard cache write failed", slog.String("error", err.Error()))
		return
	}
	s.breaker.RecordSuccess()
}

// InvalidateTenant drops cached dashboards after a record mutation
func (s *DashboardService) InvalidateTenant(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cacheKey(tenantID))
	_ = s.cache.Delete(ctx, cacheKey(""))
}
