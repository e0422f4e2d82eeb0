package notepads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/simpliv/notepads/internal/errs"
	"github.com/simpliv/notepads/internal/ledger"
)

func TestPrepopulate_SeedsFreshAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := setupService(t)
	user := env.mustCreateUser(t)

	result, err := env.svc.Prepopulate(ctx, user.ID)
	require.NoError(t, err)

	require.Equal(t, SampleCategoryName, result.Category.Name)
	require.Equal(t, 1, result.Category.NotepadsCount)
	require.Equal(t, WelcomeNotepadTitle, result.Notepad.Title)
	require.Equal(t, result.Category.ID, result.Notepad.CategoryID)
	require.Equal(t, user.ID, result.Notepad.UserID)

	require.Equal(t, []string{result.Category.ID}, result.User.Categories)
	require.Equal(t, []string{result.Notepad.ID}, result.User.Notepads)

	// The returned triple matches the stored state.
	cats, err := env.categories.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	pads, err := env.notepads.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, pads, 1)
}

func TestPrepopulate_UnknownUser(t *testing.T) {
	t.Parallel()
	env := setupService(t)

	_, err := env.svc.Prepopulate(context.Background(), "no-such-user")
	require.True(t, errs.IsNotFound(err))

	_, err = env.svc.Prepopulate(context.Background(), "")
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestPrepopulate_CompensatesWhenUserSetAppendFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFaultStore()
	svc, users, categories, notepads := fs.service()

	user, err := users.Create(ctx, "sub", "Test", "")
	require.NoError(t, err)

	// Fail the step right after category creation (AddCategory issues a
	// FindOneAndUpdate on the users collection).
	injected := errors.New("store connection reset")
	fs.users.fail("FindOneAndUpdate", injected)

	_, err = svc.Prepopulate(ctx, user.ID)
	require.ErrorIs(t, err, injected)

	// The created category was compensated away...
	cats, err := categories.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, cats)
	pads, err := notepads.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, pads)

	// ...and the user still matches the pre-call snapshot. The restore
	// itself also failed here (same injected fault) and that is tolerated:
	// compensation is fire-and-forget and the user had no refs to lose.
	fs.users.fail("FindOneAndUpdate", nil)
	gotUser, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, gotUser.Categories)
	require.Empty(t, gotUser.Notepads)
}

func TestPrepopulate_CompensatesWhenNotepadCreateFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFaultStore()
	svc, users, categories, notepads := fs.service()

	user, err := users.Create(ctx, "sub", "Test", "")
	require.NoError(t, err)

	injected := errors.New("insert timeout")
	fs.notepads.fail("InsertOne", injected)

	_, err = svc.Prepopulate(ctx, user.ID)
	require.ErrorIs(t, err, injected)

	cats, err := categories.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, cats)
	pads, err := notepads.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, pads)

	gotUser, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, gotUser.Categories, "category set must equal the pre-call snapshot")
	require.Empty(t, gotUser.Notepads, "notepad set must equal the pre-call snapshot")
}

func TestPrepopulate_CompensationPreservesPriorRefs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fs := newFaultStore()
	svc, users, _, _ := fs.service()

	user, err := users.Create(ctx, "sub", "Test", "")
	require.NoError(t, err)
	_, err = users.AddCategory(ctx, user.ID, "pre-existing-cat")
	require.NoError(t, err)
	_, err = users.AddNotepad(ctx, user.ID, "pre-existing-pad")
	require.NoError(t, err)

	injected := errors.New("counter update refused")
	fs.categories.fail("FindOneAndUpdate", injected)

	_, err = svc.Prepopulate(ctx, user.ID)
	require.ErrorIs(t, err, injected)

	gotUser, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"pre-existing-cat"}, gotUser.Categories)
	require.Equal(t, []string{"pre-existing-pad"}, gotUser.Notepads)
}

func TestEnsureUser_CreatesAndPrepopulatesOnFirstLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := setupService(t)

	user, err := env.svc.EnsureUser(ctx, "google-sub-1", "Alice", "https://example.com/a.png")
	require.NoError(t, err)
	require.Len(t, user.Categories, 1)
	require.Len(t, user.Notepads, 1)

	// Second login resolves the same record without reseeding.
	again, err := env.svc.EnsureUser(ctx, "google-sub-1", "Alice", "")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)

	cats, err := env.categories.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cats, 1)
}

func TestEnsureUser_EmptyProviderID(t *testing.T) {
	t.Parallel()
	env := setupService(t)
	_, err := env.svc.EnsureUser(context.Background(), "", "x", "")
	require.Equal(t, errs.InvalidArgument, errs.CodeOf(err))
}

func TestGetUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	env := setupService(t)
	user := env.mustCreateUser(t)

	got, err := env.svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = env.svc.GetUser(ctx, "missing")
	require.True(t, errs.IsNotFound(err))
	require.ErrorIs(t, err, ledger.ErrNotFound)
}
