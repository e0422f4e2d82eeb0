package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simpliv/notepads/internal/store"
)

// UserLedger owns the users collection, including the denormalized
// category/notepad id sets. Mutators return the post-update user or
// ErrNotFound when the user no longer exists; array mutations use set
// semantics (adding a present id and removing an absent one are no-ops).
type UserLedger struct {
	coll store.Collection
}

// NewUserLedger creates a user ledger over the given collection.
func NewUserLedger(coll store.Collection) *UserLedger {
	return &UserLedger{coll: coll}
}

// Create inserts a new user with empty category and notepad sets.
func (l *UserLedger) Create(ctx context.Context, providerID, name, photoURL string) (*User, error) {
	user := &User{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		Name:       name,
		PhotoURL:   photoURL,
		Categories: []string{},
		Notepads:   []string{},
	}
	if err := l.coll.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindByID looks up a user by id.
func (l *UserLedger) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := translateFindErr(l.coll.FindOne(ctx, bson.M{"_id": id}, &user)); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByProviderID looks up a user by identity-provider subject.
func (l *UserLedger) FindByProviderID(ctx context.Context, providerID string) (*User, error) {
	var user User
	err := translateFindErr(l.coll.FindOne(ctx, bson.M{"providerId": providerID}, &user))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddCategory appends a category id to the user's category set.
func (l *UserLedger) AddCategory(ctx context.Context, userID, categoryID string) (*User, error) {
	return l.updateRefs(ctx, userID, bson.M{"$addToSet": bson.M{"categories": categoryID}})
}

// RemoveCategory removes a category id from the user's category set.
func (l *UserLedger) RemoveCategory(ctx context.Context, userID, categoryID string) (*User, error) {
	return l.updateRefs(ctx, userID, bson.M{"$pull": bson.M{"categories": categoryID}})
}

// AddNotepad appends a notepad id to the user's notepad set.
func (l *UserLedger) AddNotepad(ctx context.Context, userID, notepadID string) (*User, error) {
	return l.updateRefs(ctx, userID, bson.M{"$addToSet": bson.M{"notepads": notepadID}})
}

// RemoveNotepad removes a notepad id from the user's notepad set.
func (l *UserLedger) RemoveNotepad(ctx context.Context, userID, notepadID string) (*User, error) {
	return l.updateRefs(ctx, userID, bson.M{"$pull": bson.M{"notepads": notepadID}})
}

// RemoveNotepads removes all given notepad ids in one batched update.
func (l *UserLedger) RemoveNotepads(ctx context.Context, userID string, notepadIDs []string) (*User, error) {
	if len(notepadIDs) == 0 {
		return l.FindByID(ctx, userID)
	}
	return l.updateRefs(ctx, userID, bson.M{"$pullAll": bson.M{"notepads": notepadIDs}})
}

// RestoreRefs unconditionally overwrites both id sets. Used only by the
// prepopulation compensation to reset the user to a pre-operation snapshot.
func (l *UserLedger) RestoreRefs(ctx context.Context, userID string, categories, notepads []string) (*User, error) {
	if categories == nil {
		categories = []string{}
	}
	if notepads == nil {
		notepads = []string{}
	}
	return l.updateRefs(ctx, userID, bson.M{"$set": bson.M{
		"categories": categories,
		"notepads":   notepads,
	}})
}

func (l *UserLedger) updateRefs(ctx context.Context, userID string, update bson.M) (*User, error) {
	var user User
	err := translateFindErr(l.coll.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, &user))
	if err != nil {
		return nil, err
	}
	return &user, nil
}
