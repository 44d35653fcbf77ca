package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

type runRow struct {
	RunID      string `gorm:"primaryKey;size:64"`
	Status     string `gorm:"size:16;index"`
	Found      int
	Updated    int
	Skipped    int
	Failed     int
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	Errors     datatypes.JSON
}

func (runRow) TableName() string { return "backfill_runs" }

func toRow(run model.BackfillRun) (runRow, error) {
	samples, err := json.Marshal(run.ErrorSample)
	if err != nil {
		return runRow{}, fmt.Errorf("encode error sample: %w", err)
	}
	return runRow{
		RunID:      run.RunID,
		Status:     run.Status,
		Found:      run.Stats.Found,
		Updated:    run.Stats.Updated,
		Skipped:    run.Stats.Skipped,
		Failed:     run.Stats.Failed,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Errors:     datatypes.JSON(samples),
	}, nil
}

func (r runRow) toModel() (model.BackfillRun, error) {
	run := model.BackfillRun{
		RunID:  r.RunID,
		Status: r.Status,
		Stats: model.BackfillRunStats{
			Found:   r.Found,
			Updated: r.Updated,
			Skipped: r.Skipped,
			Failed:  r.Failed,
		},
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if len(r.Errors) > 0 {
		if err := json.Unmarshal(r.Errors, &run.ErrorSample); err != nil {
			return model.BackfillRun{}, fmt.Errorf("decode error sample for %s: %w", r.RunID, err)
		}
	}
	return run, nil
}

// RunStore persists backfill runs in the backfill_runs table.
type RunStore struct {
	db *gorm.DB
}

func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) CreateRun(ctx context.Context, run model.BackfillRun) error {
	if run.RunID == "" {
		return fmt.Errorf("runId is required")
	}
	row, err := toRow(run)
	if err != nil {
		return err
	}
	return translate(s.db.WithContext(ctx).Create(&row).Error, "create run %s", run.RunID)
}

func (s *RunStore) UpdateRun(ctx context.Context, run model.BackfillRun) error {
	if run.RunID == "" {
		return fmt.Errorf("runId is required")
	}
	row, err := toRow(run)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	return translate(err, "update run %s", run.RunID)
}

func (s *RunStore) GetRun(ctx context.Context, runID string) (model.BackfillRun, error) {
	var row runRow
	if err := s.db.WithContext(ctx).First(&row, "run_id = ?", runID).Error; err != nil {
		return model.BackfillRun{}, translate(err, "get run %s", runID)
	}
	return row.toModel()
}

func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]model.BackfillRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, translate(err, "list runs")
	}
	runs := make([]model.BackfillRun, 0, len(rows))
	for _, row := range rows {
		run, err := row.toModel()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}
