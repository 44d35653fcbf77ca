package visitors

import (
	"context"
	"fmt"

	"github.com/acolhimento-gf/visitantes-api/internal/business/stats"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// Stats aggregates every stored visitor. Unchanged lists reuse the previous bundle.
func (s *Service) Stats(ctx context.Context) (model.StatsBundle, error) {
	all, err := s.visitors.List(ctx, repository.VisitorQuery{})
	if err != nil {
		return model.StatsBundle{}, fmt.Errorf("list visitors: %w", err)
	}
	bundle, cached := s.memo.Aggregate(all)
	if s.metrics != nil {
		s.metrics.ObserveStats(cached)
	}
	return bundle, nil
}

// AggregateRecords computes a bundle from caller-supplied records without touching storage.
func (s *Service) AggregateRecords(records []model.Visitor) model.StatsBundle {
	return stats.Aggregate(records, s.now())
}

// SaveSnapshot persists the current bundle as the system snapshot.
func (s *Service) SaveSnapshot(ctx context.Context) (model.StatsBundle, error) {
	bundle, err := s.Stats(ctx)
	if err != nil {
		return model.StatsBundle{}, err
	}
	if err := s.snapshots.SaveSnapshot(ctx, bundle); err != nil {
		return model.StatsBundle{}, err
	}
	s.log.Info("stats snapshot saved", "total", bundle.Total)
	return bundle, nil
}

// Snapshot returns the last persisted bundle.
func (s *Service) Snapshot(ctx context.Context) (model.StatsBundle, error) {
	return s.snapshots.GetSnapshot(ctx)
}
