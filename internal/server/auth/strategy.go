package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/samber/oops"
)

// CredentialStore is the account lookup the core depends on. Lookups that
// find nothing return common.ErrorNotFound.
type CredentialStore interface {
	FindByIdentifier(ctx context.Context, value string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

type OutcomeStatus int

const (
	StatusAuthenticated OutcomeStatus = iota + 1
	StatusRejected
	StatusLookupFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusRejected:
		return "rejected"
	case StatusLookupFailed:
		return "lookup_failed"
	default:
		return "unknown"
	}
}

type RejectReason string

const (
	ReasonNoSuchAccount  RejectReason = "no-such-account"
	ReasonBadCredentials RejectReason = "bad-credentials"
)

// Outcome is the result of one login attempt. Account is set only for
// StatusAuthenticated, Reason only for StatusRejected, Err only for
// StatusLookupFailed.
type Outcome struct {
	Status  OutcomeStatus
	Account *models.Account
	Reason  RejectReason
	Err     error
}

// Error converts the outcome into the error taxonomy. Both rejection reasons
// wrap common.ErrInvalidCredentials and differ only in their oops code.
func (o Outcome) Error() error {
	switch o.Status {
	case StatusAuthenticated:
		return nil
	case StatusRejected:
		code := CodeBadCredentials
		if o.Reason == ReasonNoSuchAccount {
			code = CodeNoSuchAccount
		}
		return oops.Code(code).With("reason", string(o.Reason)).Wrap(common.ErrInvalidCredentials)
	case StatusLookupFailed:
		return oops.Code(CodeStoreUnavailable).Wrap(fmt.Errorf("%w: %w", common.ErrStoreUnavailable, o.Err))
	default:
		return common.ErrorInternal
	}
}

// LocalStrategy authenticates an identifier (nickname or email) and a
// plaintext password against the credential store.
type LocalStrategy struct {
	store     CredentialStore
	hasher    PasswordHasher
	dummyHash string
}

// NewLocalStrategy prepares a strategy. A throwaway hash is computed with
// the real hasher so that unknown identifiers cost one verification, like
// known ones.
func NewLocalStrategy(store CredentialStore, hasher PasswordHasher) (*LocalStrategy, error) {
	seed, err := common.GenerateRandByteArray(16)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(fmt.Sprintf("%x", seed))
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &LocalStrategy{store: store, hasher: hasher, dummyHash: dummy}, nil
}

func (s *LocalStrategy) Authenticate(ctx context.Context, identifier, plaintext string) Outcome {
	account, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(plaintext, s.dummyHash)
			return Outcome{Status: StatusRejected, Reason: ReasonNoSuchAccount}
		}
		return Outcome{Status: StatusLookupFailed, Err: err}
	}

	if !s.hasher.Verify(plaintext, account.PasswordHash) {
		return Outcome{Status: StatusRejected, Reason: ReasonBadCredentials}
	}

	return Outcome{Status: StatusAuthenticated, Account: account}
}
