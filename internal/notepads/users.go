package notepads

import (
	"context"
	"fmt"

	"github.com/simpliv/notepads/internal/errs"
	"github.com/simpliv/notepads/internal/ledger"
)

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID string) (*ledger.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err == ledger.ErrNotFound {
		return nil, errs.Wrap(errs.NotFound, "user not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// EnsureUser resolves an authenticated identity to a user record, creating
// the record and prepopulating the account on first login.
func (s *Service) EnsureUser(ctx context.Context, providerID, name, photoURL string) (*ledger.User, error) {
	if providerID == "" {
		return nil, errs.New(errs.InvalidArgument, "provider id is required")
	}

	user, err := s.users.FindByProviderID(ctx, providerID)
	if err == nil {
		return user, nil
	}
	if err != ledger.ErrNotFound {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user, err = s.users.Create(ctx, providerID, name, photoURL)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user_created", "user_id", user.ID)

	result, err := s.Prepopulate(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("prepopulate user: %w", err)
	}
	return result.User, nil
}
