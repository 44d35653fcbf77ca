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

const snapshotKey = "stats"

type snapshotRow struct {
	ID        string         `gorm:"primaryKey;size:32"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string { return "stats_snapshots" }

// StatsStore keeps the single dashboard snapshot as a JSON row.
type StatsStore struct {
	db *gorm.DB
}

func NewStatsStore(db *gorm.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) SaveSnapshot(ctx context.Context, bundle model.StatsBundle) error {
	if bundle.GeneratedAt.IsZero() {
		bundle.GeneratedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encode stats snapshot: %w", err)
	}
	row := snapshotRow{ID: snapshotKey, Payload: datatypes.JSON(payload), UpdatedAt: time.Now().UTC()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	return translate(err, "save stats snapshot")
}

func (s *StatsStore) GetSnapshot(ctx context.Context) (model.StatsBundle, error) {
	var row snapshotRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", snapshotKey).Error; err != nil {
		return model.StatsBundle{}, translate(err, "get stats snapshot")
	}
	var bundle model.StatsBundle
	if err := json.Unmarshal(row.Payload, &bundle); err != nil {
		return model.StatsBundle{}, fmt.Errorf("decode stats snapshot: %w", err)
	}
	return bundle, nil
}
