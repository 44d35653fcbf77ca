package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

const runsCollection = "backfill_runs"

// RunRepository manages address backfill run lifecycle records.
type RunRepository struct {
	client *firestore.Client
}

func NewRunRepository(client *firestore.Client) *RunRepository {
	return &RunRepository{client: client}
}

func (r *RunRepository) CreateRun(ctx context.Context, run model.BackfillRun) error {
	if run.RunID == "" {
		return fmt.Errorf("runId is required")
	}
	ref := r.client.Collection(runsCollection).Doc(run.RunID)
	if _, err := ref.Set(ctx, run); err != nil {
		return fmt.Errorf("create run %s: %w", run.RunID, err)
	}
	return nil
}

func (r *RunRepository) UpdateRun(ctx context.Context, run model.BackfillRun) error {
	if run.RunID == "" {
		return fmt.Errorf("runId is required")
	}
	ref := r.client.Collection(runsCollection).Doc(run.RunID)
	if _, err := ref.Set(ctx, run); err != nil {
		return fmt.Errorf("update run %s: %w", run.RunID, err)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, runID string) (model.BackfillRun, error) {
	snap, err := r.client.Collection(runsCollection).Doc(runID).Get(ctx)
	if err != nil {
		return model.BackfillRun{}, notFoundOr(err, "get run %s", runID)
	}
	var run model.BackfillRun
	if err := snap.DataTo(&run); err != nil {
		return model.BackfillRun{}, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]model.BackfillRun, error) {
	if limit <= 0 {
		limit = 20
	}
	iter := r.client.Collection(runsCollection).OrderBy("started_at", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	var runs []model.BackfillRun
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate runs: %w", err)
		}
		var run model.BackfillRun
		if err := doc.DataTo(&run); err != nil {
			return nil, fmt.Errorf("decode run %s: %w", doc.Ref.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
