// Package directory serves the doctor directory: a read-heavy, rarely
// changing dataset fronted by the result cache and the coalescer.
package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/cache"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/observability/metrics"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// Service reads doctors through the facade with snapshot caching.
type Service struct {
	backend   backend.Service
	cache     cache.Cache
	coalescer *cache.Coalescer
	ttl       time.Duration
	logger    *logging.Logger
	metrics   *metrics.FacadeMetrics
}

func NewService(be backend.Service, c cache.Cache, co *cache.Coalescer, ttl time.Duration, logger *logging.Logger, m *metrics.FacadeMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		backend:   be,
		cache:     c,
		coalescer: co,
		ttl:       ttl,
		logger:    logger,
		metrics:   m,
	}
}

// verifiedDoctorsQuery is the canonical hot query: verified doctors
// sorted by rating descending.
func verifiedDoctorsQuery() backend.Query {
	return backend.Query{
		Resource: backend.ResourceDoctors,
		Filters:  map[string]string{"verified": "eq.true"},
		Order:    "rating.desc",
	}
}

// ListVerifiedDoctors returns the verified doctor list. A cache hit
// younger than the validity window is returned without any network
// access; misses go through the coalescer so rapid repeated requests
// share one backend call.
func (s *Service) ListVerifiedDoctors(ctx context.Context) ([]records.Doctor, error) {
	q := verifiedDoctorsQuery()
	key := q.CacheKey()

	if payload, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("doctor cache read failed; falling through", "error", err)
	} else if ok {
		s.metrics.ObserveCacheHit(backend.ResourceDoctors)
		return decodeDoctors(payload)
	}
	s.metrics.ObserveCacheMiss(backend.ResourceDoctors)

	payload, joined, err := s.coalescer.Do(ctx, key, func(ctx context.Context) ([]byte, error) {
		rows, err := s.backend.Select(ctx, q)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		// Stored with the capture timestamp inside the single winning
		// execution; an abandoned caller can never write here.
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("doctor cache write failed", "error", err)
		}
		return data, nil
	})
	if joined {
		s.metrics.ObserveCoalesceJoin()
	}
	if err != nil {
		return nil, err
	}
	return decodeDoctors(payload)
}

// GetDoctor looks up one doctor by id, bypassing the cache.
func (s *Service) GetDoctor(ctx context.Context, id string) (*records.Doctor, error) {
	row, err := s.backend.SelectOne(ctx, backend.Query{
		Resource: backend.ResourceDoctors,
		Filters:  map[string]string{"id": "eq." + id},
	})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	var d records.Doctor
	if err := json.Unmarshal(row, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeDoctors(payload []byte) ([]records.Doctor, error) {
	var doctors []records.Doctor
	if err := json.Unmarshal(payload, &doctors); err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []records.Doctor{}
	}
	return doctors, nil
}
