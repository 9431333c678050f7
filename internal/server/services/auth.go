// Package services contains server-side business logic shared by the HTTP and
// gRPC transports. AuthService implements signup, signin and account lookup
// on top of the authentication core.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/logging"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
	"github.com/dmitrijs2005/ebet/internal/server/metrics"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/dmitrijs2005/ebet/internal/server/repositories/accounts"
	"github.com/samber/oops"
)

// TokenIssuer signs credential claims. *auth.TokenManager implements it.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
}

// Session is an account together with a freshly issued access token.
type Session struct {
	Account *models.Account
	Token   string
}

type AuthService struct {
	accounts accounts.Repository
	hasher   auth.PasswordHasher
	strategy *auth.LocalStrategy
	tokens   TokenIssuer
	metrics  *metrics.Metrics
	log      logging.Logger
}

// NewAuthService wires the strategy over repo. m may be nil.
func NewAuthService(repo accounts.Repository, hasher auth.PasswordHasher, tokens TokenIssuer, m *metrics.Metrics, log logging.Logger) (*AuthService, error) {
	strategy, err := auth.NewLocalStrategy(repo, hasher)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		accounts: repo,
		hasher:   hasher,
		strategy: strategy,
		tokens:   tokens,
		metrics:  m,
		log:      log,
	}, nil
}

// SignUp validates input, stores a new account with a hashed password and
// issues its first token. Errors match common.ErrValidation,
// common.ErrAlreadyExists or common.ErrStoreUnavailable.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	in, err := input.normalize()
	if err != nil {
		s.metrics.SignUp("invalid")
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.metrics.SignUp("error")
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	account, err := s.accounts.Create(ctx, &models.Account{
		Nickname:     in.Nickname,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			s.metrics.SignUp("duplicate")
			s.log.Info(ctx, "signup rejected", "code", "AUTH_DUPLICATE_ACCOUNT", "nickname", in.Nickname)
			return nil, oops.Code("AUTH_DUPLICATE_ACCOUNT").Wrap(err)
		}
		s.metrics.SignUp("error")
		s.log.Error(ctx, "signup store failure", "error", err)
		return nil, oops.Code(auth.CodeStoreUnavailable).Wrap(fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err))
	}

	session, err := s.issue(account)
	if err != nil {
		s.metrics.SignUp("error")
		return nil, err
	}

	s.metrics.SignUp("created")
	s.log.Info(ctx, "account created", "account_id", account.ID)
	return session, nil
}

// SignIn authenticates identifier (nickname or email) and password. Unknown
// identifiers and wrong passwords both match common.ErrInvalidCredentials;
// the oops code on the error tells them apart.
func (s *AuthService) SignIn(ctx context.Context, identifier, password string) (*Session, error) {
	identifier, err := checkSignIn(identifier, password)
	if err != nil {
		s.metrics.SignIn("invalid", "")
		return nil, err
	}

	out := s.strategy.Authenticate(ctx, identifier, password)

	switch out.Status {
	case auth.StatusAuthenticated:
	case auth.StatusRejected:
		err := out.Error()
		code := auth.ErrorCode(err)
		s.metrics.SignIn(out.Status.String(), code)
		s.log.Info(ctx, "signin rejected", "code", code)
		return nil, err
	default:
		err := out.Error()
		s.metrics.SignIn(out.Status.String(), auth.ErrorCode(err))
		s.log.Error(ctx, "signin lookup failed", "error", err)
		return nil, err
	}

	account := out.Account
	if s.hasher.NeedsUpgrade(account.PasswordHash) {
		s.upgradeHash(ctx, account, password)
	}

	session, err := s.issue(account)
	if err != nil {
		s.metrics.SignIn("error", "")
		return nil, err
	}

	s.metrics.SignIn(out.Status.String(), "")
	s.log.Debug(ctx, "signin succeeded", "account_id", account.ID)
	return session, nil
}

// Account returns the account with id, or an error matching
// common.ErrorNotFound.
func (s *AuthService) Account(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	return a, nil
}

func (s *AuthService) issue(account *models.Account) (*Session, error) {
	token, err := s.tokens.Issue(auth.Claims{
		ID:       account.ID,
		Nickname: account.Nickname,
		Email:    account.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}
	return &Session{Account: account, Token: token}, nil
}

// upgradeHash replaces a legacy hash after a successful signin. Failure only
// delays the upgrade to the next signin.
func (s *AuthService) upgradeHash(ctx context.Context, account *models.Account, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn(ctx, "rehash failed", "account_id", account.ID, "error", err)
		return
	}
	if err := s.accounts.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		s.log.Warn(ctx, "rehash not stored", "account_id", account.ID, "error", err)
		return
	}
	account.PasswordHash = hash
}
