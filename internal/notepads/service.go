// Package notepads sequences multi-step writes across the user, category and
// notepad ledgers. The backing store has no cross-collection transactions, so
// every flow here is an ordered chain of single-collection writes; ordering
// is what keeps the denormalized counters and id sets consistent on the
// single-writer path. A failure between steps leaves earlier writes in place
// (residual inconsistency) except on the prepopulation path, which
// compensates best-effort.
package notepads

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simpliv/notepads/internal/errs"
	"github.com/simpliv/notepads/internal/ledger"
	"github.com/simpliv/notepads/internal/obs"
)

// Service is the consistency orchestrator over the three ledgers.
type Service struct {
	users      *ledger.UserLedger
	categories *ledger.CategoryLedger
	notepads   *ledger.NotepadLedger
	log        *slog.Logger
}

// NewService creates the orchestrator.
func NewService(users *ledger.UserLedger, categories *ledger.CategoryLedger, notepads *ledger.NotepadLedger) *Service {
	return &Service{
		users:      users,
		categories: categories,
		notepads:   notepads,
		log:        obs.Pkg("notepads"),
	}
}

// GetNotepad returns one notepad scoped by owner.
func (s *Service) GetNotepad(ctx context.Context, ownerID, id string) (*ledger.Notepad, error) {
	pad, err := s.notepads.GetByIDForUser(ctx, id, ownerID)
	if err == ledger.ErrNotFound {
		return nil, errs.Wrap(errs.NotFound, "notepad not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get notepad: %w", err)
	}
	return pad, nil
}

// ListNotepads returns all notepads owned by a user, optionally filtered by
// category. An empty result is a genuine empty list, not a not-found.
func (s *Service) ListNotepads(ctx context.Context, ownerID, categoryID string) ([]ledger.Notepad, error) {
	if categoryID != "" {
		pads, err := s.notepads.FindByUserAndCategory(ctx, ownerID, categoryID)
		if err != nil {
			return nil, fmt.Errorf("list notepads: %w", err)
		}
		return pads, nil
	}
	pads, err := s.notepads.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notepads: %w", err)
	}
	return pads, nil
}

// CreateNotepad creates a notepad under an owned category, then brings the
// category counter and the user's notepad set up to date. Step order:
//
//	verify category → insert notepad → increment counter → append to user set
//
// A failure before the insert is clean. A failure after it leaves the new
// notepad unreflected in the counter or user set; the triggering error is
// surfaced and the earlier write is not repaired.
func (s *Service) CreateNotepad(ctx context.Context, ownerID string, params CreateNotepadParams) (*ledger.Notepad, error) {
	if params.Title == "" || params.CategoryID == "" {
		return nil, errs.New(errs.InvalidArgument, "title and category are required")
	}

	if _, err := s.categories.GetByIDForUser(ctx, params.CategoryID, ownerID); err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "category not found", err)
		}
		return nil, fmt.Errorf("verify category: %w", err)
	}

	pad, err := s.notepads.Create(ctx, params.Title, params.Text, params.CategoryID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("create notepad: %w", err)
	}

	if _, err := s.categories.IncreaseNotepadsCount(ctx, params.CategoryID, 1); err != nil {
		s.logResidual(ctx, "create_notepad", "counter increment failed after notepad insert", err, pad.ID)
		return nil, fmt.Errorf("increment category counter: %w", err)
	}

	if _, err := s.users.AddNotepad(ctx, ownerID, pad.ID); err != nil {
		s.logResidual(ctx, "create_notepad", "user set append failed after notepad insert", err, pad.ID)
		return nil, fmt.Errorf("add notepad to user: %w", err)
	}

	return pad, nil
}

// UpdateNotepad applies the full desired state to an owned notepad. The new
// category's ownership is verified before anything is written. When the
// notepad moves between categories the row is updated first, then the old
// category's counter is decremented and the new one's incremented, in that
// order.
func (s *Service) UpdateNotepad(ctx context.Context, ownerID, id string, params UpdateNotepadParams) (*ledger.Notepad, error) {
	if params.Title == "" || params.CategoryID == "" {
		return nil, errs.New(errs.InvalidArgument, "title and category are required")
	}

	if _, err := s.categories.GetByIDForUser(ctx, params.CategoryID, ownerID); err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "category not found", err)
		}
		return nil, fmt.Errorf("verify category: %w", err)
	}

	existing, err := s.notepads.GetByIDForUser(ctx, id, ownerID)
	if err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "notepad not found", err)
		}
		return nil, fmt.Errorf("get notepad: %w", err)
	}

	updated, err := s.notepads.Update(ctx, id, ownerID, ledger.UpdateFields{
		Title:      params.Title,
		Text:       params.Text,
		CategoryID: params.CategoryID,
	})
	if err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "notepad not found", err)
		}
		return nil, fmt.Errorf("update notepad: %w", err)
	}

	if existing.CategoryID != params.CategoryID {
		if _, err := s.categories.IncreaseNotepadsCount(ctx, existing.CategoryID, -1); err != nil {
			s.logResidual(ctx, "update_notepad", "old category decrement failed after move", err, id)
			return nil, fmt.Errorf("decrement old category counter: %w", err)
		}
		if _, err := s.categories.IncreaseNotepadsCount(ctx, params.CategoryID, 1); err != nil {
			s.logResidual(ctx, "update_notepad", "new category increment failed after move", err, id)
			return nil, fmt.Errorf("increment new category counter: %w", err)
		}
	}

	return updated, nil
}

// DeleteNotepad removes an owned notepad, decrements its category's counter
// and removes its id from the user's notepad set. A not-found short-circuits
// with zero writes. Returns the pre-deletion snapshot, not a fresh read.
func (s *Service) DeleteNotepad(ctx context.Context, ownerID, id string) (*ledger.Notepad, error) {
	pad, err := s.notepads.GetByIDForUser(ctx, id, ownerID)
	if err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "notepad not found", err)
		}
		return nil, fmt.Errorf("get notepad: %w", err)
	}

	if err := s.notepads.Remove(ctx, pad.ID); err != nil {
		return nil, fmt.Errorf("delete notepad: %w", err)
	}

	if _, err := s.categories.IncreaseNotepadsCount(ctx, pad.CategoryID, -1); err != nil {
		s.logResidual(ctx, "delete_notepad", "counter decrement failed after notepad delete", err, pad.ID)
		return nil, fmt.Errorf("decrement category counter: %w", err)
	}

	if _, err := s.users.RemoveNotepad(ctx, ownerID, pad.ID); err != nil {
		s.logResidual(ctx, "delete_notepad", "user set removal failed after notepad delete", err, pad.ID)
		return nil, fmt.Errorf("remove notepad from user: %w", err)
	}

	return pad, nil
}

func (s *Service) logResidual(ctx context.Context, flow, msg string, err error, entityID string) {
	s.log.Warn("residual_inconsistency",
		"request_id", obs.RequestIDFromContext(ctx),
		"flow", flow,
		"detail", msg,
		"entity_id", entityID,
		"error", err.Error(),
	)
}
