package accounts

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.Create(ctx, &models.Account{Nickname: "Bob", Email: "bob@gmail.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	byNick, err := r.FindByIdentifier(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byNick.ID)

	byEmail, err := r.FindByIdentifier(ctx, "bob@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)

	byID, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", byID.Nickname)

	_, err = r.FindByIdentifier(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_UniqueNicknameAndEmail(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, &models.Account{Nickname: "Bob", Email: "bob@gmail.com"})
	require.NoError(t, err)

	_, err = r.Create(ctx, &models.Account{Nickname: "Bob", Email: "other@gmail.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	_, err = r.Create(ctx, &models.Account{Nickname: "Bobby", Email: "bob@gmail.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.Create(ctx, &models.Account{Nickname: "Bob", Email: "bob@gmail.com", PasswordHash: "h"})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	got.PasswordHash = "tampered"

	again, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "h", again.PasswordHash)
}

func TestMemoryRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	a, err := r.Create(ctx, &models.Account{Nickname: "Bob", Email: "bob@gmail.com", PasswordHash: "old"})
	require.NoError(t, err)

	require.NoError(t, r.UpdatePasswordHash(ctx, a.ID, "new"))
	got, err := r.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	require.NoError(t, r.Delete(ctx, a.ID))
	_, err = r.FindByID(ctx, a.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, r.Delete(ctx, a.ID), common.ErrorNotFound)
	assert.ErrorIs(t, r.UpdatePasswordHash(ctx, a.ID, "x"), common.ErrorNotFound)
}

func TestMemoryRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	bob, err := r.Create(ctx, &models.Account{Nickname: "Bob", Email: "bob@gmail.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = r.Create(ctx, &models.Account{Nickname: "Alice", Email: "alice@gmail.com", PasswordHash: "h"})
	require.NoError(t, err)

	got, err := r.Update(ctx, &models.Account{ID: bob.ID, Nickname: "Bobby", Email: "bob@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", got.Nickname)
	assert.Equal(t, "h", got.PasswordHash)

	_, err = r.FindByIdentifier(ctx, "Bob")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.Update(ctx, &models.Account{ID: bob.ID, Nickname: "Alice", Email: "bob@gmail.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
	_, err = r.Update(ctx, &models.Account{ID: bob.ID, Nickname: "Bobby", Email: "alice@gmail.com"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	_, err = r.Update(ctx, &models.Account{ID: "missing", Nickname: "X", Email: "x@gmail.com"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_List(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, n := range []string{"a", "b", "c"} {
		_, err := r.Create(ctx, &models.Account{Nickname: n, Email: n + "@gmail.com"})
		require.NoError(t, err)
	}

	all, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt))
	}
}

func TestMemoryRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(ctx, &models.Account{Nickname: "Bob", Email: "bob@gmail.com"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, common.ErrAlreadyExists)
		}
	}
	assert.Equal(t, 1, ok)
}

var _ Repository = (*MemoryRepository)(nil)
var _ Repository = (*PostgresRepository)(nil)
