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

const visitorsCollection = "visitantes"

// VisitorRepository handles Firestore read/write for visitors.
type VisitorRepository struct {
	client *firestore.Client
}

func NewVisitorRepository(client *firestore.Client) *VisitorRepository {
	return &VisitorRepository{client: client}
}

// List loads visitors matching q, newest first.
func (r *VisitorRepository) List(ctx context.Context, q VisitorQuery) ([]model.Visitor, error) {
	query := r.client.Collection(visitorsCollection).Query
	if q.Status != "" {
		query = query.Where("status", "==", q.Status)
	}
	if q.GF != "" {
		query = query.Where("gf_responsavel", "==", q.GF)
	}

	var result []model.Visitor
	iter := query.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate visitors: %w", err)
		}
		v, err := decodeVisitor(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *VisitorRepository) Get(ctx context.Context, id string) (model.Visitor, error) {
	doc, err := r.client.Collection(visitorsCollection).Doc(id).Get(ctx)
	if err != nil {
		return model.Visitor{}, notFoundOr(err, "get visitor %s", id)
	}
	return decodeVisitor(doc)
}

func (r *VisitorRepository) Create(ctx context.Context, v model.Visitor) error {
	if v.ID == "" {
		return fmt.Errorf("visitor id is required")
	}
	if _, err := r.client.Collection(visitorsCollection).Doc(v.ID).Create(ctx, v); err != nil {
		return fmt.Errorf("create visitor %s: %w", v.ID, err)
	}
	return nil
}

func (r *VisitorRepository) Update(ctx context.Context, v model.Visitor) error {
	ref := r.client.Collection(visitorsCollection).Doc(v.ID)
	if _, err := ref.Get(ctx); err != nil {
		return notFoundOr(err, "get visitor %s", v.ID)
	}
	if _, err := ref.Set(ctx, v); err != nil {
		return fmt.Errorf("update visitor %s: %w", v.ID, err)
	}
	return nil
}

func (r *VisitorRepository) Delete(ctx context.Context, id string) error {
	ref := r.client.Collection(visitorsCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return notFoundOr(err, "get visitor %s", id)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete visitor %s: %w", id, err)
	}
	return nil
}

// BatchUpsert writes visitors in batches to reduce round trips.
func (r *VisitorRepository) BatchUpsert(ctx context.Context, visitors []model.Visitor) error {
	if len(visitors) == 0 {
		return nil
	}
	const batchSize = 400

	for start := 0; start < len(visitors); start += batchSize {
		end := start + batchSize
		if end > len(visitors) {
			end = len(visitors)
		}
		batch := r.client.Batch()
		for _, v := range visitors[start:end] {
			batch.Set(r.client.Collection(visitorsCollection).Doc(v.ID), v)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("commit visitor batch: %w", err)
		}
	}
	return nil
}

// StreamAll walks every visitor without holding the full list in memory.
func (r *VisitorRepository) StreamAll(ctx context.Context, fn func(model.Visitor) error) error {
	iter := r.client.Collection(visitorsCollection).OrderBy("nome", firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("iterate visitors: %w", err)
		}
		v, err := decodeVisitor(doc)
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

func decodeVisitor(doc *firestore.DocumentSnapshot) (model.Visitor, error) {
	var v model.Visitor
	if err := doc.DataTo(&v); err != nil {
		return model.Visitor{}, fmt.Errorf("decode visitor %s: %w", doc.Ref.ID, err)
	}
	if v.ID == "" {
		v.ID = doc.Ref.ID
	}
	return v, nil
}
