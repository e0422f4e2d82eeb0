package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simpliv/notepads/internal/store"
)

// scopedRepo factors the owner-scoping discipline shared by the category and
// notepad ledgers: every lookup is filtered by the owning user's id, so a
// document belonging to another user is indistinguishable from a missing one.
type scopedRepo struct {
	coll       store.Collection
	ownerField string
}

func (r scopedRepo) findByID(ctx context.Context, id string, out any) error {
	return translateFindErr(r.coll.FindOne(ctx, bson.M{"_id": id}, out))
}

func (r scopedRepo) findByIDForUser(ctx context.Context, id, ownerID string, out any) error {
	return translateFindErr(r.coll.FindOne(ctx, bson.M{"_id": id, r.ownerField: ownerID}, out))
}

func (r scopedRepo) findAllForUser(ctx context.Context, filter bson.M, ownerID string, out any) error {
	scoped := bson.M{r.ownerField: ownerID}
	for k, v := range filter {
		scoped[k] = v
	}
	return r.coll.Find(ctx, scoped, out)
}

func (r scopedRepo) updateForUser(ctx context.Context, id, ownerID string, update bson.M, out any) error {
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, r.ownerField: ownerID}, update, out)
	return translateFindErr(err)
}

func (r scopedRepo) removeByID(ctx context.Context, id string) error {
	removed, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func translateFindErr(err error) error {
	if errors.Is(err, store.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
