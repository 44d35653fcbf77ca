package visitors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acolhimento-gf/visitantes-api/internal/platform/viacep"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

const (
	maxErrorSamples  = 20
	progressInterval = 25
	runListLimit     = 20
)

var (
	ErrBackfillRunning = errors.New("an address backfill is already running")
	ErrRunNotActive    = errors.New("run is not active")
)

// StartBackfill looks up the CEP of every visitor with a valid CEP and no city,
// asynchronously. It returns the run ID to poll.
func (s *Service) StartBackfill(ctx context.Context) (string, error) {
	if s.cep == nil {
		return "", errors.New("cep lookup is not configured")
	}
	var candidates []model.Visitor
	err := s.visitors.StreamAll(ctx, func(v model.Visitor) error {
		if needsBackfill(v) {
			candidates = append(candidates, v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("collect backfill candidates: %w", err)
	}

	startedAt := s.now()
	runID := generateRunID(startedAt)
	runCtx, cancel := context.WithCancel(context.Background())
	if !s.jobs.TryRegister(runID, cancel) {
		cancel()
		return "", ErrBackfillRunning
	}

	run := model.BackfillRun{
		RunID:     runID,
		Status:    model.RunRunning,
		Stats:     model.BackfillRunStats{Found: len(candidates)},
		StartedAt: startedAt,
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.jobs.Unregister(runID)
		cancel()
		return "", err
	}
	s.log.Info("address backfill started", "run_id", runID, "found", len(candidates))

	go s.executeBackfill(runCtx, run, candidates)
	return runID, nil
}

// CancelRun stops a running backfill.
func (s *Service) CancelRun(runID string) error {
	if !s.jobs.Cancel(runID) {
		return ErrRunNotActive
	}
	s.log.Info("address backfill cancel requested", "run_id", runID)
	return nil
}

func (s *Service) GetRun(ctx context.Context, runID string) (model.BackfillRun, error) {
	return s.runs.GetRun(ctx, runID)
}

func (s *Service) ListRuns(ctx context.Context) ([]model.BackfillRun, error) {
	return s.runs.ListRuns(ctx, runListLimit)
}

func (s *Service) executeBackfill(ctx context.Context, run model.BackfillRun, candidates []model.Visitor) {
	defer s.jobs.Unregister(run.RunID)

	results := newOrchestrator(s.workers).run(ctx, candidates, s.backfillOne)
	processed := 0
	for res := range results {
		processed++
		switch res.outcome {
		case outcomeUpdated:
			run.Stats.Updated++
		case outcomeSkipped:
			run.Stats.Skipped++
		case outcomeFailed:
			run.Stats.Failed++
		}
		if res.reason != "" && len(run.ErrorSample) < maxErrorSamples {
			run.ErrorSample = append(run.ErrorSample, model.ErrorSample{VisitorID: res.visitorID, Reason: res.reason})
		}
		if processed%progressInterval == 0 {
			// Progress writes use a fresh context so a cancel does not drop them.
			if err := s.runs.UpdateRun(context.Background(), run); err != nil {
				s.log.Warn("save backfill progress", "run_id", run.RunID, "processed", processed, "error", err)
			}
		}
	}

	switch {
	case ctx.Err() != nil:
		run.Status = model.RunCancelled
	case run.Stats.Found > 0 && run.Stats.Failed == run.Stats.Found:
		run.Status = model.RunFailed
	default:
		run.Status = model.RunSuccess
	}
	run.FinishedAt = s.now()
	if err := s.runs.UpdateRun(context.Background(), run); err != nil {
		s.log.Error("finish backfill run", "run_id", run.RunID, "error", err)
	}
	s.log.Info("address backfill finished",
		"run_id", run.RunID,
		"status", run.Status,
		"updated", run.Stats.Updated,
		"skipped", run.Stats.Skipped,
		"failed", run.Stats.Failed,
	)
}

func (s *Service) backfillOne(ctx context.Context, v model.Visitor) lookupResult {
	addr, err := s.cep.Lookup(ctx, v.Endereco.CEP)
	switch {
	case errors.Is(err, viacep.ErrCEPNotFound), errors.Is(err, viacep.ErrInvalidCEP):
		return lookupResult{visitorID: v.ID, outcome: outcomeSkipped, reason: err.Error()}
	case err != nil:
		return lookupResult{visitorID: v.ID, outcome: outcomeFailed, reason: err.Error()}
	}

	v.Endereco = mergeAddress(v.Endereco, addr)
	v.UpdatedAt = s.now()
	if err := s.visitors.Update(ctx, v); err != nil {
		return lookupResult{visitorID: v.ID, outcome: outcomeFailed, reason: err.Error()}
	}
	return lookupResult{visitorID: v.ID, outcome: outcomeUpdated}
}

func needsBackfill(v model.Visitor) bool {
	if len(util.OnlyDigits(v.Endereco.CEP)) != 8 {
		return false
	}
	return v.Endereco.Cidade == "" || v.Endereco.Cidade == util.NotInformed
}

func generateRunID(now time.Time) string {
	return fmt.Sprintf("BACKFILL_%s_%s", now.Format("20060102T150405"), uuid.NewString()[:8])
}
