package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

const usersCollection = "usuarios"

// UserRepository stores staff accounts in Firestore.
type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()

	var users []model.User
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate users: %w", err)
		}
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Nome < users[j].Nome })
	return users, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (model.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return model.User{}, notFoundOr(err, "get user %s", id)
	}
	return decodeUser(doc)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()
	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("query user by email: %w", err)
	}
	return decodeUser(doc)
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, err := r.client.Collection(usersCollection).Doc(u.ID).Create(ctx, u); err != nil {
		return fmt.Errorf("create user %s: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u model.User) error {
	ref := r.client.Collection(usersCollection).Doc(u.ID)
	if _, err := ref.Get(ctx); err != nil {
		return notFoundOr(err, "get user %s", u.ID)
	}
	if existing, err := r.GetByEmail(ctx, u.Email); err == nil && existing.ID != u.ID {
		return ErrConflict
	}
	if _, err := ref.Set(ctx, u); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ref := r.client.Collection(usersCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return notFoundOr(err, "get user %s", id)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func decodeUser(doc *firestore.DocumentSnapshot) (model.User, error) {
	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return model.User{}, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
	}
	if u.ID == "" {
		u.ID = doc.Ref.ID
	}
	return u, nil
}
