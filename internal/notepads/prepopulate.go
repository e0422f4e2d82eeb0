package notepads

import (
	"context"
	"fmt"

	"github.com/simpliv/notepads/internal/errs"
	"github.com/simpliv/notepads/internal/ledger"
)

// Seed content for a fresh account.
const (
	SampleCategoryName  = "Sample category"
	WelcomeNotepadTitle = "Read me"

	welcomeNotepadText = "Use the menu on the top left to create your own categories " +
		"and then add notepads to them.\n\n" +
		"On the top right of the Dashboard there is a plus sign inside a circle.\n" +
		"Tapping on it will open the Add Notepad window.\n" +
		"Select a category, provide a title and text and save the new notepad.\n\n" +
		"The smaller plus signs on the right of each category's name will open the same " +
		"Add Notepad window with the category preselected.\n\n" +
		"Click on a Notepad on the Dashboard and you will go to the View Notepad window " +
		"where you can read it, edit it and delete it.\n\n" +
		"The categories are managed from their own window where you can go " +
		"by selecting Categories from the left menu(top left to open it).\n\n" +
		"Be careful when deleting a category as this will delete all notepads in it.\n\n"
)

// Prepopulate seeds a fresh account with a sample category holding a welcome
// notepad. Step order mirrors the create flows:
//
//	load user → create category → append to user's category set
//	→ create notepad → increment counter → append to user's notepad set
//
// On failure at any step the partially created entities are compensated
// best-effort in reverse: the category and notepad rows are deleted if they
// were created, and the user's id sets are overwritten from the snapshot
// taken before the first write. Compensation failures are logged and not
// retried; the original error is always returned.
func (s *Service) Prepopulate(ctx context.Context, userID string) (*PrepopulateResult, error) {
	if userID == "" {
		return nil, errs.New(errs.InvalidArgument, "user id is required")
	}

	snapshot, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == ledger.ErrNotFound {
			return nil, errs.Wrap(errs.NotFound, "user not found", err)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	var (
		category *ledger.Category
		notepad  *ledger.Notepad
	)
	fail := func(step string, cause error) (*PrepopulateResult, error) {
		s.compensatePrepopulate(ctx, snapshot, category, notepad)
		return nil, fmt.Errorf("%s: %w", step, cause)
	}

	category, err = s.categories.Create(ctx, SampleCategoryName, userID)
	if err != nil {
		return fail("create sample category", err)
	}

	user, err := s.users.AddCategory(ctx, userID, category.ID)
	if err != nil {
		return fail("add category to user", err)
	}

	notepad, err = s.notepads.Create(ctx, WelcomeNotepadTitle, welcomeNotepadText, category.ID, userID)
	if err != nil {
		return fail("create welcome notepad", err)
	}

	category, err = s.categories.IncreaseNotepadsCount(ctx, category.ID, 1)
	if err != nil {
		return fail("increment category counter", err)
	}

	user, err = s.users.AddNotepad(ctx, userID, notepad.ID)
	if err != nil {
		return fail("add notepad to user", err)
	}

	return &PrepopulateResult{
		User:     user,
		Category: category,
		Notepad:  notepad,
	}, nil
}

// compensatePrepopulate undoes a partial prepopulation. Every action is
// fire-and-forget: a compensation failure is logged at warn and the unwind
// continues, so the caller always sees the original error.
func (s *Service) compensatePrepopulate(ctx context.Context, snapshot *ledger.User, category *ledger.Category, notepad *ledger.Notepad) {
	if category != nil {
		if err := s.categories.Remove(ctx, category.ID); err != nil {
			s.log.Warn("prepopulate_compensation_failed",
				"action", "remove_category", "category_id", category.ID, "error", err.Error())
		}
	}
	if notepad != nil {
		if err := s.notepads.Remove(ctx, notepad.ID); err != nil {
			s.log.Warn("prepopulate_compensation_failed",
				"action", "remove_notepad", "notepad_id", notepad.ID, "error", err.Error())
		}
	}
	if snapshot != nil {
		if _, err := s.users.RestoreRefs(ctx, snapshot.ID, snapshot.Categories, snapshot.Notepads); err != nil {
			s.log.Warn("prepopulate_compensation_failed",
				"action", "restore_user_refs", "user_id", snapshot.ID, "error", err.Error())
		}
	}
}
