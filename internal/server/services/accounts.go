package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/samber/oops"
)

// ListAccounts returns every registered account.
func (s *AuthService) ListAccounts(ctx context.Context) ([]models.Account, error) {
	all, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return all, nil
}

// UpdateProfile changes the nickname and email of the caller's own account.
// The password hash is untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, actorID string, input ProfileInput) (*models.Account, error) {
	in, err := input.normalize()
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Update(ctx, &models.Account{ID: actorID, Nickname: in.Nickname, Email: in.Email})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyExists):
			return nil, oops.Code("AUTH_DUPLICATE_ACCOUNT").Wrap(err)
		case errors.Is(err, common.ErrorNotFound):
			return nil, err
		default:
			s.log.Error(ctx, "profile update store failure", "error", err)
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
	}

	s.log.Info(ctx, "account updated", "account_id", account.ID)
	return account, nil
}

// DeleteAccount removes account id. Callers may only delete their own
// account; tokens issued for it keep verifying until they expire, and the
// gate rejects them once it re-resolves the account.
func (s *AuthService) DeleteAccount(ctx context.Context, actorID, id string) (*models.Account, error) {
	if actorID != id {
		return nil, oops.Code("AUTH_FORBIDDEN").With("account_id", id).Wrap(common.ErrForbidden)
	}

	account, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.log.Error(ctx, "account delete store failure", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	s.log.Info(ctx, "account deleted", "account_id", id)
	return account, nil
}
