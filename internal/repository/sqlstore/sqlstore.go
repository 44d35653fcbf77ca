// Package sqlstore implements the repository interfaces on top of gorm.
package sqlstore

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// Migrate creates or updates every table the stores need.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Visitor{}, &model.User{}, &snapshotRow{}, &runRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func translate(err error, format string, args ...interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrConflict
	default:
		return fmt.Errorf(format+": %w", append(args, err)...)
	}
}
