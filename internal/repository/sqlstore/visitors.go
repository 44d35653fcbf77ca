package sqlstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// VisitorStore persists visitors in the visitantes table.
type VisitorStore struct {
	db *gorm.DB
}

func NewVisitorStore(db *gorm.DB) *VisitorStore {
	return &VisitorStore{db: db}
}

func (s *VisitorStore) List(ctx context.Context, q repository.VisitorQuery) ([]model.Visitor, error) {
	tx := s.db.WithContext(ctx).Order("created_at DESC")
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.GF != "" {
		tx = tx.Where("gf_responsavel = ?", q.GF)
	}
	var visitors []model.Visitor
	if err := tx.Find(&visitors).Error; err != nil {
		return nil, translate(err, "list visitors")
	}
	return visitors, nil
}

func (s *VisitorStore) Get(ctx context.Context, id string) (model.Visitor, error) {
	var v model.Visitor
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return model.Visitor{}, translate(err, "get visitor %s", id)
	}
	return v, nil
}

func (s *VisitorStore) Create(ctx context.Context, v model.Visitor) error {
	return translate(s.db.WithContext(ctx).Create(&v).Error, "create visitor %s", v.ID)
}

func (s *VisitorStore) Update(ctx context.Context, v model.Visitor) error {
	res := s.db.WithContext(ctx).Model(&model.Visitor{}).Where("id = ?", v.ID).Select("*").Updates(&v)
	if res.Error != nil {
		return translate(res.Error, "update visitor %s", v.ID)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *VisitorStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Visitor{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete visitor %s", id)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *VisitorStore) BatchUpsert(ctx context.Context, visitors []model.Visitor) error {
	if len(visitors) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(visitors, 200).Error
	return translate(err, "upsert visitors")
}

func (s *VisitorStore) StreamAll(ctx context.Context, fn func(model.Visitor) error) error {
	rows, err := s.db.WithContext(ctx).Model(&model.Visitor{}).Order("nome").Rows()
	if err != nil {
		return translate(err, "stream visitors")
	}
	defer rows.Close()
	for rows.Next() {
		var v model.Visitor
		if err := s.db.ScanRows(rows, &v); err != nil {
			return translate(err, "scan visitor")
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return translate(rows.Err(), "stream visitors")
}
