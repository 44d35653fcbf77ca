package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// StatsRepository manages the system/stats singleton document holding the last dashboard snapshot.
type StatsRepository struct {
	client *firestore.Client
}

func NewStatsRepository(client *firestore.Client) *StatsRepository {
	return &StatsRepository{client: client}
}

func (r *StatsRepository) SaveSnapshot(ctx context.Context, bundle model.StatsBundle) error {
	if bundle.GeneratedAt.IsZero() {
		bundle.GeneratedAt = time.Now().UTC()
	}
	ref := r.client.Collection("system").Doc("stats")
	if _, err := ref.Set(ctx, bundle); err != nil {
		return fmt.Errorf("save stats snapshot: %w", err)
	}
	return nil
}

func (r *StatsRepository) GetSnapshot(ctx context.Context) (model.StatsBundle, error) {
	snap, err := r.client.Collection("system").Doc("stats").Get(ctx)
	if err != nil {
		return model.StatsBundle{}, notFoundOr(err, "get stats snapshot")
	}
	var bundle model.StatsBundle
	if err := snap.DataTo(&bundle); err != nil {
		return model.StatsBundle{}, fmt.Errorf("decode stats snapshot: %w", err)
	}
	return bundle, nil
}
