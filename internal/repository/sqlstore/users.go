package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// UserStore persists staff accounts in the usuarios table.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("nome").Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return model.User{}, translate(err, "get user %s", id)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return model.User{}, translate(err, "get user by email")
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u model.User) error {
	return translate(s.db.WithContext(ctx).Create(&u).Error, "create user %s", u.ID)
}

func (s *UserStore) Update(ctx context.Context, u model.User) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.ID).Select("*").Updates(&u)
	if res.Error != nil {
		return translate(res.Error, "update user %s", u.ID)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete user %s", id)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
