// Package memstore keeps every repository in process memory. It backs local
// development (STORE_BACKEND=memory) and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

type VisitorStore struct {
	mu   sync.RWMutex
	rows map[string]model.Visitor
}

func NewVisitorStore() *VisitorStore {
	return &VisitorStore{rows: make(map[string]model.Visitor)}
}

func (s *VisitorStore) List(_ context.Context, q repository.VisitorQuery) ([]model.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Visitor, 0, len(s.rows))
	for _, v := range s.rows {
		if q.Matches(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *VisitorStore) Get(_ context.Context, id string) (model.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.rows[id]
	if !ok {
		return model.Visitor{}, repository.ErrNotFound
	}
	return v, nil
}

func (s *VisitorStore) Create(_ context.Context, v model.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[v.ID]; ok {
		return repository.ErrConflict
	}
	s.rows[v.ID] = v
	return nil
}

func (s *VisitorStore) Update(_ context.Context, v model.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[v.ID]; !ok {
		return repository.ErrNotFound
	}
	s.rows[v.ID] = v
	return nil
}

func (s *VisitorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *VisitorStore) BatchUpsert(_ context.Context, visitors []model.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range visitors {
		s.rows[v.ID] = v
	}
	return nil
}

func (s *VisitorStore) StreamAll(ctx context.Context, fn func(model.Visitor) error) error {
	s.mu.RLock()
	all := make([]model.Visitor, 0, len(s.rows))
	for _, v := range s.rows {
		all = append(all, v)
	}
	s.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Nome < all[j].Nome })
	for _, v := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

type UserStore struct {
	mu   sync.RWMutex
	rows map[string]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{rows: make(map[string]model.User)}
}

func (s *UserStore) List(context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.rows))
	for _, u := range s.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (s *UserStore) Get(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.rows {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *UserStore) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(u.Email, u.ID) {
		return repository.ErrConflict
	}
	if _, ok := s.rows[u.ID]; ok {
		return repository.ErrConflict
	}
	s.rows[u.ID] = u
	return nil
}

func (s *UserStore) Update(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return repository.ErrConflict
	}
	s.rows[u.ID] = u
	return nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *UserStore) emailTaken(email, exceptID string) bool {
	for id, u := range s.rows {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type StatsStore struct {
	mu       sync.RWMutex
	snapshot *model.StatsBundle
}

func NewStatsStore() *StatsStore {
	return &StatsStore{}
}

func (s *StatsStore) SaveSnapshot(_ context.Context, bundle model.StatsBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &bundle
	return nil
}

func (s *StatsStore) GetSnapshot(context.Context) (model.StatsBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return model.StatsBundle{}, repository.ErrNotFound
	}
	return *s.snapshot, nil
}

type RunStore struct {
	mu   sync.RWMutex
	runs map[string]model.BackfillRun
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]model.BackfillRun)}
}

func (s *RunStore) CreateRun(_ context.Context, run model.BackfillRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.RunID] = run
	return nil
}

func (s *RunStore) UpdateRun(_ context.Context, run model.BackfillRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.RunID] = run
	return nil
}

func (s *RunStore) GetRun(_ context.Context, runID string) (model.BackfillRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok {
		return model.BackfillRun{}, repository.ErrNotFound
	}
	return run, nil
}

func (s *RunStore) ListRuns(_ context.Context, limit int) ([]model.BackfillRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BackfillRun, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
