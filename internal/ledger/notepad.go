package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/simpliv/notepads/internal/store"
)

// NotepadLedger owns the notepads collection.
type NotepadLedger struct {
	repo scopedRepo
}

// NewNotepadLedger creates a notepad ledger over the given collection.
func NewNotepadLedger(coll store.Collection) *NotepadLedger {
	return &NotepadLedger{repo: scopedRepo{coll: coll, ownerField: "user"}}
}

// Create inserts a new notepad.
func (l *NotepadLedger) Create(ctx context.Context, title, text, categoryID, ownerID string) (*Notepad, error) {
	pad := &Notepad{
		ID:         uuid.New().String(),
		Title:      title,
		Text:       text,
		CategoryID: categoryID,
		UserID:     ownerID,
	}
	if err := l.repo.coll.InsertOne(ctx, pad); err != nil {
		return nil, fmt.Errorf("create notepad: %w", err)
	}
	return pad, nil
}

// GetByID looks up a notepad without owner scoping.
func (l *NotepadLedger) GetByID(ctx context.Context, id string) (*Notepad, error) {
	var pad Notepad
	if err := l.repo.findByID(ctx, id, &pad); err != nil {
		return nil, err
	}
	return &pad, nil
}

// GetByIDForUser looks up a notepad scoped by owner.
func (l *NotepadLedger) GetByIDForUser(ctx context.Context, id, ownerID string) (*Notepad, error) {
	var pad Notepad
	if err := l.repo.findByIDForUser(ctx, id, ownerID, &pad); err != nil {
		return nil, err
	}
	return &pad, nil
}

// GetByUserID lists all notepads owned by a user.
func (l *NotepadLedger) GetByUserID(ctx context.Context, ownerID string) ([]Notepad, error) {
	var pads []Notepad
	if err := l.repo.findAllForUser(ctx, nil, ownerID, &pads); err != nil {
		return nil, fmt.Errorf("list notepads: %w", err)
	}
	return pads, nil
}

// FindByUserAndCategory lists the notepads under one category of one user.
func (l *NotepadLedger) FindByUserAndCategory(ctx context.Context, ownerID, categoryID string) ([]Notepad, error) {
	var pads []Notepad
	err := l.repo.findAllForUser(ctx, bson.M{"category": categoryID}, ownerID, &pads)
	if err != nil {
		return nil, fmt.Errorf("list notepads by category: %w", err)
	}
	return pads, nil
}

// UpdateFields are the mutable notepad fields. All three are applied
// together; callers pass the full desired state.
type UpdateFields struct {
	Title      string
	Text       string
	CategoryID string
}

// Update applies fields to a notepad scoped by owner. The write either fully
// applies or does not happen; a missing or foreign notepad yields
// ErrNotFound with no partial write.
func (l *NotepadLedger) Update(ctx context.Context, id, ownerID string, fields UpdateFields) (*Notepad, error) {
	var pad Notepad
	update := bson.M{"$set": bson.M{
		"title":    fields.Title,
		"text":     fields.Text,
		"category": fields.CategoryID,
	}}
	if err := l.repo.updateForUser(ctx, id, ownerID, update, &pad); err != nil {
		return nil, err
	}
	return &pad, nil
}

// Remove deletes a notepad row unconditionally by id.
func (l *NotepadLedger) Remove(ctx context.Context, id string) error {
	return l.repo.removeByID(ctx, id)
}

// RemoveMany deletes all notepads whose ids are in ids and reports the
// removed count. An empty id set is a no-op.
func (l *NotepadLedger) RemoveMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	removed, err := l.repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete notepads: %w", err)
	}
	return removed, nil
}
