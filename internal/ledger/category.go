package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simpliv/notepads/internal/store"
)

// CategoryLedger owns the categories collection.
type CategoryLedger struct {
	repo scopedRepo
}

// NewCategoryLedger creates a category ledger over the given collection.
func NewCategoryLedger(coll store.Collection) *CategoryLedger {
	return &CategoryLedger{repo: scopedRepo{coll: coll, ownerField: "user"}}
}

// Create inserts a new category with a zero notepad count.
func (l *CategoryLedger) Create(ctx context.Context, name, ownerID string) (*Category, error) {
	cat := &Category{
		ID:            uuid.New().String(),
		Name:          name,
		UserID:        ownerID,
		NotepadsCount: 0,
	}
	if err := l.repo.coll.InsertOne(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// GetByID looks up a category without owner scoping.
func (l *CategoryLedger) GetByID(ctx context.Context, id string) (*Category, error) {
	var cat Category
	if err := l.repo.findByID(ctx, id, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetByIDForUser looks up a category scoped by owner. A category owned by
// another user yields ErrNotFound.
func (l *CategoryLedger) GetByIDForUser(ctx context.Context, id, ownerID string) (*Category, error) {
	var cat Category
	if err := l.repo.findByIDForUser(ctx, id, ownerID, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetByUserID lists all categories owned by a user.
func (l *CategoryLedger) GetByUserID(ctx context.Context, ownerID string) ([]Category, error) {
	var cats []Category
	if err := l.repo.findAllForUser(ctx, nil, ownerID, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Update renames a category scoped by owner.
func (l *CategoryLedger) Update(ctx context.Context, id, ownerID, newName string) (*Category, error) {
	var cat Category
	err := l.repo.updateForUser(ctx, id, ownerID, bson.M{"$set": bson.M{"name": newName}}, &cat)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Remove deletes a category row unconditionally by id. It does not touch the
// user or notepad collections; cascading is the orchestrator's job.
func (l *CategoryLedger) Remove(ctx context.Context, id string) error {
	return l.repo.removeByID(ctx, id)
}

// IncreaseNotepadsCount adjusts the denormalized counter by delta (±1) and
// returns the updated category. The ledger never clamps the counter.
func (l *CategoryLedger) IncreaseNotepadsCount(ctx context.Context, id string, delta int) (*Category, error) {
	var cat Category
	err := l.repo.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"notepadsCount": delta}},
		&cat)
	if err := translateFindErr(err); err != nil {
		return nil, err
	}
	return &cat, nil
}
