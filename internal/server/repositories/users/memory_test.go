package users

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, r *MemoryRepository, name string) *models.User {
	t.Helper()
	u, err := r.Create(context.Background(), &models.User{
		UserName:     name,
		Email:        name + "@example.com",
		FullName:     name,
		Avatar:       "avatars/" + name + ".png",
		PasswordHash: "hash-" + name,
	})
	require.NoError(t, err)
	return u
}

func TestMemory_CreateAndFind(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u := seed(t, r, "ana")
	assert.NotEmpty(t, u.ID)
	assert.Nil(t, u.RefreshToken)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	byName, err := r.FindByLogin(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byMail, err := r.FindByLogin(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byMail.ID)

	_, err = r.FindByLogin(ctx, "bo")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_CreateDuplicate(t *testing.T) {
	r := NewMemoryRepository()
	seed(t, r, "ana")

	_, err := r.Create(context.Background(), &models.User{UserName: "ana", Email: "other@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = r.Create(context.Background(), &models.User{UserName: "other", Email: "ana@example.com"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	exists, err := r.Exists(context.Background(), "nobody", "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	u := seed(t, r, "ana")

	token := "r1"
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, &token))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	*got.RefreshToken = "mutated"
	got.FullName = "mutated"

	again, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "r1", *again.RefreshToken)
	assert.Equal(t, "ana", again.FullName)
}

func TestMemory_SetAndClearFingerprint(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	u := seed(t, r, "ana")

	token := "r1"
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, &token))
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, nil))
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, nil))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)

	assert.ErrorIs(t, r.SetRefreshToken(ctx, "missing", nil), common.ErrorNotFound)
}

func TestMemory_Swap(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	u := seed(t, r, "ana")

	ok, err := r.SwapRefreshToken(ctx, u.ID, "r1", "r2")
	require.NoError(t, err)
	assert.False(t, ok, "no session to swap")

	token := "r1"
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, &token))

	ok, err = r.SwapRefreshToken(ctx, u.ID, "r1", "r2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SwapRefreshToken(ctx, u.ID, "r1", "r3")
	require.NoError(t, err)
	assert.False(t, ok, "stale expected value")

	ok, err = r.SwapRefreshToken(ctx, "missing", "r2", "r3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_ConcurrentSwapSingleWinner(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	u := seed(t, r, "ana")

	token := "r1"
	require.NoError(t, r.SetRefreshToken(ctx, u.ID, &token))

	const n = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := r.SwapRefreshToken(ctx, u.ID, "r1", fmt.Sprintf("next-%d", i))
			if err == nil && ok {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestMemory_UpdateAccount(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	ana := seed(t, r, "ana")
	seed(t, r, "bo")

	_, err := r.UpdateAccount(ctx, ana.ID, "Ana", "bo@example.com")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := r.UpdateAccount(ctx, ana.ID, "Ana Maria", "am@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.FullName)

	_, err = r.FindByLogin(ctx, "ana@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound, "old email is released")
	byMail, err := r.FindByLogin(ctx, "am@example.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, byMail.ID)

	_, err = r.UpdateAccount(ctx, "missing", "x", "x@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_UpdatePassword(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()
	u := seed(t, r, "ana")

	require.NoError(t, r.UpdatePassword(ctx, u.ID, "new-hash"))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
}

func TestMemory_CancelledContext(t *testing.T) {
	r := NewMemoryRepository()
	u := seed(t, r, "ana")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.SwapRefreshToken(ctx, u.ID, "a", "b")
	assert.ErrorIs(t, err, context.Canceled)
}
