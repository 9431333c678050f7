package auth

import (
	"context"
	"sync/atomic"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
)

type fakeStore struct {
	accounts map[string]*models.Account
	err      error
}

func (s *fakeStore) FindByIdentifier(_ context.Context, value string) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, a := range s.accounts {
		if a.Nickname == value || a.Email == value {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

// countingHasher records how many verifications ran.
type countingHasher struct {
	PasswordHasher
	verifies atomic.Int64
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.verifies.Add(1)
	return h.PasswordHasher.Verify(plaintext, hash)
}

type countingVerifier struct {
	Verifier
	calls atomic.Int64
}

func (v *countingVerifier) Verify(token string) (Claims, error) {
	v.calls.Add(1)
	return v.Verifier.Verify(token)
}
