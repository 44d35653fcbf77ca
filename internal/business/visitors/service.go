// Package visitors implements visitor registration, follow-up and the dashboard.
package visitors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acolhimento-gf/visitantes-api/internal/business/stats"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/logger"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/metrics"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid status")
)

// CEPLookup resolves a postal code into an address.
type CEPLookup interface {
	Lookup(ctx context.Context, cep string) (model.Address, error)
}

// VisitorInput carries the fields the registration form submits.
type VisitorInput struct {
	Nome           string        `json:"nome"`
	Sexo           string        `json:"sexo"`
	DataNascimento string        `json:"data_nascimento"`
	DataVisita     string        `json:"data_visita"`
	GFResponsavel  string        `json:"gf_responsavel"`
	Telefone       string        `json:"telefone"`
	Endereco       model.Address `json:"endereco"`
	Status         string        `json:"status"`
	Observacoes    string        `json:"observacoes"`
}

// Options tunes optional collaborators.
type Options struct {
	Workers int
	Metrics *metrics.Metrics
	Logger  *logger.Logger
	Now     func() time.Time
}

// Service orchestrates visitor persistence, CEP auto-fill and dashboard stats.
type Service struct {
	visitors  repository.VisitorStore
	snapshots repository.StatsStore
	runs      repository.RunStore
	cep       CEPLookup
	memo      *stats.Memo
	metrics   *metrics.Metrics
	jobs      *JobManager
	workers   int
	log       *logger.Logger
	now       func() time.Time
}

func NewService(visitors repository.VisitorStore, snapshots repository.StatsStore, runs repository.RunStore, cep CEPLookup, opts Options) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		visitors:  visitors,
		snapshots: snapshots,
		runs:      runs,
		cep:       cep,
		memo:      stats.NewMemo(opts.Now),
		metrics:   opts.Metrics,
		jobs:      NewJobManager(),
		workers:   opts.Workers,
		log:       opts.Logger,
		now:       opts.Now,
	}
}

// Register validates, normalizes and stores a new visitor.
func (s *Service) Register(ctx context.Context, in VisitorInput) (model.Visitor, error) {
	v, err := s.normalize(in, model.Visitor{
		DataVisita: s.now().Format(dateLayout),
		Status:     model.StatusPending,
	})
	if err != nil {
		return model.Visitor{}, err
	}
	v.Endereco = s.autofill(ctx, v.Endereco)

	now := s.now()
	v.ID = uuid.NewString()
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.visitors.Create(ctx, v); err != nil {
		return model.Visitor{}, err
	}
	if s.metrics != nil {
		s.metrics.IncrementVisitorsRegistered()
	}
	s.log.Info("visitor registered", "visitor_id", v.ID, "gf", v.GFResponsavel)
	return v, nil
}

// Update replaces the editable fields of an existing visitor. A blank visit
// date or status keeps the stored value.
func (s *Service) Update(ctx context.Context, id string, in VisitorInput) (model.Visitor, error) {
	existing, err := s.visitors.Get(ctx, id)
	if err != nil {
		return model.Visitor{}, err
	}
	v, err := s.normalize(in, existing)
	if err != nil {
		return model.Visitor{}, err
	}
	if v.Endereco.CEP != existing.Endereco.CEP || v.Endereco.Cidade == "" {
		v.Endereco = s.autofill(ctx, v.Endereco)
	}
	v.ID = existing.ID
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = s.now()
	if err := s.visitors.Update(ctx, v); err != nil {
		return model.Visitor{}, err
	}
	return v, nil
}

// UpdateStatus changes only the follow-up status.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (model.Visitor, error) {
	status = strings.TrimSpace(status)
	if !slices.Contains(model.ValidStatuses, status) {
		return model.Visitor{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	v, err := s.visitors.Get(ctx, id)
	if err != nil {
		return model.Visitor{}, err
	}
	v.Status = status
	v.UpdatedAt = s.now()
	if err := s.visitors.Update(ctx, v); err != nil {
		return model.Visitor{}, err
	}
	s.log.Info("visitor status updated", "visitor_id", id, "status", status)
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Visitor, error) {
	return s.visitors.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, q repository.VisitorQuery) ([]model.Visitor, error) {
	if q.Status != "" && !slices.Contains(model.ValidStatuses, q.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	return s.visitors.List(ctx, q)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.visitors.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("visitor deleted", "visitor_id", id)
	return nil
}

// LookupCEP exposes the address lookup to the registration form.
func (s *Service) LookupCEP(ctx context.Context, cep string) (model.Address, error) {
	if s.cep == nil {
		return model.Address{}, errors.New("cep lookup is not configured")
	}
	return s.cep.Lookup(ctx, cep)
}

// normalize cleans the input. Blank visit date and status fall back to fallback's values.
func (s *Service) normalize(in VisitorInput, fallback model.Visitor) (model.Visitor, error) {
	v := model.Visitor{
		Nome:          strings.Join(strings.Fields(in.Nome), " "),
		Sexo:          strings.TrimSpace(in.Sexo),
		GFResponsavel: strings.Join(strings.Fields(in.GFResponsavel), " "),
		Telefone:      util.MaskPhone(in.Telefone),
		Endereco:      util.CleanAddress(in.Endereco),
		Status:        strings.TrimSpace(in.Status),
		Observacoes:   strings.TrimSpace(in.Observacoes),
	}
	if v.Nome == "" {
		return model.Visitor{}, fmt.Errorf("%w: nome is required", ErrInvalidInput)
	}

	birth, err := canonicalDate(in.DataNascimento)
	if err != nil {
		return model.Visitor{}, fmt.Errorf("%w: data_nascimento: %v", ErrInvalidInput, err)
	}
	v.DataNascimento = birth

	visit, err := canonicalDate(in.DataVisita)
	if err != nil {
		return model.Visitor{}, fmt.Errorf("%w: data_visita: %v", ErrInvalidInput, err)
	}
	if visit == "" {
		visit = fallback.DataVisita
	}
	v.DataVisita = visit

	if v.Status == "" {
		v.Status = fallback.Status
	}
	if !slices.Contains(model.ValidStatuses, v.Status) {
		return model.Visitor{}, fmt.Errorf("%w: %q", ErrInvalidStatus, v.Status)
	}
	return v, nil
}

// autofill fills blank address fields from the CEP. Lookup failures are logged and ignored.
func (s *Service) autofill(ctx context.Context, addr model.Address) model.Address {
	if s.cep == nil || addr.CEP == "" || addr.Cidade != "" {
		return addr
	}
	found, err := s.cep.Lookup(ctx, addr.CEP)
	if err != nil {
		s.log.Warn("cep autofill skipped", "cep", addr.CEP, "error", err)
		return addr
	}
	return mergeAddress(addr, found)
}

func mergeAddress(dst, src model.Address) model.Address {
	if src.CEP != "" {
		dst.CEP = src.CEP
	}
	if dst.Rua == "" {
		dst.Rua = src.Rua
	}
	if dst.Bairro == "" {
		dst.Bairro = src.Bairro
	}
	if dst.Cidade == "" || dst.Cidade == util.NotInformed {
		dst.Cidade = src.Cidade
	}
	if dst.Estado == "" {
		dst.Estado = src.Estado
	}
	if dst.Complemento == "" {
		dst.Complemento = src.Complemento
	}
	return dst
}

func canonicalDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, ok := stats.ParseDate(s)
	if !ok {
		return "", fmt.Errorf("unrecognized date %q", s)
	}
	return t.Format(dateLayout), nil
}
