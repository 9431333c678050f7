// Package accounts stores eBet accounts. It is the credential store the
// authentication core looks identities up in; lookups that find nothing
// return common.ErrorNotFound and duplicate nicknames or emails return
// common.ErrAlreadyExists.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/ebet/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// FindByIdentifier matches value against the nickname and the email.
	FindByIdentifier(ctx context.Context, value string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	// List returns every account ordered by creation time.
	List(ctx context.Context) ([]models.Account, error)
	// Update changes the nickname and email of account.ID.
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
	Delete(ctx context.Context, id string) error
}
