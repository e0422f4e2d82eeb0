package notepads

import (
	"context"
	"fmt"

	"github.com/simpliv/notepads/internal/errs"
	"github.com/simpliv/notepads/internal/ledger"
)

// ListCategories returns all categories owned by a user.
func (s *Service) ListCategories(ctx context.Context, ownerID string) ([]ledger.Category, error) {
	cats, err := s.categories.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// GetCategory returns one category scoped by owner.
func (s *Service) GetCategory(ctx context.Context, ownerID, id string) (*ledger.Category, error) {
	cat, err := s.categories.GetByIDForUser(ctx, id, ownerID)
	if err == ledger.ErrNotFound {
		return nil, errs.Wrap(errs.NotFound, "category not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

// CreateCategory inserts a category and appends its id to the user's
// category set. A failure after the insert leaves a category the user record
// does not reference; the triggering error is surfaced unrepaired.
func (s *Service) CreateCategory(ctx context.Context, ownerID, name string) (*ledger.Category, error) {
	if name == "" {
		return nil, errs.New(errs.InvalidArgument, "name is required")
	}

	cat, err := s.categories.Create(ctx, name, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if _, err := s.users.AddCategory(ctx, ownerID, cat.ID); err != nil {
		s.logResidual(ctx, "create_category", "user set append failed after category insert", err, cat.ID)
		return nil, fmt.Errorf("add category to user: %w", err)
	}

	return cat, nil
}

// RenameCategory renames an owned category.
func (s *Service) RenameCategory(ctx context.Context, ownerID, id, newName string) (*ledger.Category, error) {
	if newName == "" {
		return nil, errs.New(errs.InvalidArgument, "name is required")
	}

	cat, err := s.categories.Update(ctx, id, ownerID, newName)
	if err == ledger.ErrNotFound {
		return nil, errs.Wrap(errs.NotFound, "category not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes an owned category and cascades to its notepads.
// Step order:
//
//	locate scoped → delete category row → remove id from user's category set
//	→ enumerate notepads under user+category → bulk delete them
//	→ batch-remove their ids from the user's notepad set
//
// An empty notepad enumeration short-circuits the last two steps as no-ops.
// Returns the deleted category's snapshot.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, id string) (*ledger.Category, error) {
	cat, err := s.categories.GetByIDForUser(ctx, id, ownerID)
	if err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "category not found", err)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	if err := s.categories.Remove(ctx, cat.ID); err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}

	if _, err := s.users.RemoveCategory(ctx, ownerID, cat.ID); err != nil {
		s.logResidual(ctx, "delete_category", "user set removal failed after category delete", err, cat.ID)
		return nil, fmt.Errorf("remove category from user: %w", err)
	}

	pads, err := s.notepads.FindByUserAndCategory(ctx, ownerID, cat.ID)
	if err != nil {
		s.logResidual(ctx, "delete_category", "orphan enumeration failed after category delete", err, cat.ID)
		return nil, fmt.Errorf("enumerate notepads: %w", err)
	}
	if len(pads) == 0 {
		return cat, nil
	}

	ids := make([]string, len(pads))
	for i, pad := range pads {
		ids[i] = pad.ID
	}

	if _, err := s.notepads.RemoveMany(ctx, ids); err != nil {
		s.logResidual(ctx, "delete_category", "cascade delete failed, notepads orphaned", err, cat.ID)
		return nil, fmt.Errorf("delete notepads: %w", err)
	}

	if _, err := s.users.RemoveNotepads(ctx, ownerID, ids); err != nil {
		s.logResidual(ctx, "delete_category", "user set batch removal failed after cascade", err, cat.ID)
		return nil, fmt.Errorf("remove notepads from user: %w", err)
	}

	return cat, nil
}
