package repository

import (
	"context"
	"errors"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

var (
	// ErrNotFound is returned when a document or row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("conflict")
)

// VisitorQuery filters visitor listings. Empty fields match everything.
type VisitorQuery struct {
	Status string
	GF     string
}

// Matches reports whether v passes the filter.
func (q VisitorQuery) Matches(v model.Visitor) bool {
	if q.Status != "" && v.Status != q.Status {
		return false
	}
	if q.GF != "" && v.GFResponsavel != q.GF {
		return false
	}
	return true
}

// VisitorStore persists visitor records.
type VisitorStore interface {
	List(ctx context.Context, q VisitorQuery) ([]model.Visitor, error)
	Get(ctx context.Context, id string) (model.Visitor, error)
	Create(ctx context.Context, v model.Visitor) error
	Update(ctx context.Context, v model.Visitor) error
	Delete(ctx context.Context, id string) error
	BatchUpsert(ctx context.Context, visitors []model.Visitor) error
	StreamAll(ctx context.Context, fn func(model.Visitor) error) error
}

// UserStore persists staff accounts.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id string) error
}

// StatsStore keeps the last persisted dashboard snapshot.
type StatsStore interface {
	SaveSnapshot(ctx context.Context, bundle model.StatsBundle) error
	GetSnapshot(ctx context.Context) (model.StatsBundle, error)
}

// RunStore persists address backfill run lifecycle records.
type RunStore interface {
	CreateRun(ctx context.Context, run model.BackfillRun) error
	UpdateRun(ctx context.Context, run model.BackfillRun) error
	GetRun(ctx context.Context, runID string) (model.BackfillRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.BackfillRun, error)
}
