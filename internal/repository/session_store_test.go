package repository_test

import (
	"context"
	"testing"
	"time"

	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*repository.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	return repository.NewSessionStoreWithClient(client, time.Second), mr
}

func TestKeyNamespaces(t *testing.T) {
	assert.Equal(t, "session:abc", repository.SessionKey("abc"))
	assert.Equal(t, "blacklist:abc", repository.BlacklistKey("abc"))
	assert.Equal(t, "apikey:abc", repository.APIKeyCacheKey("abc"))
}

func TestSessionStore_SetGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	companyID := int64(42)
	user := model.SessionUser{ID: "u1", CompanyID: &companyID, TokenType: model.AccessToken}

	require.NoError(t, store.Set(ctx, "session:t1", user, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("session:t1"))

	var got model.SessionUser
	found, err := store.Get(ctx, "session:t1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, user, got)
}

func TestSessionStore_SetOverwrites(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", model.SessionUser{ID: "old"}, time.Hour))
	require.NoError(t, store.Set(ctx, "k", model.SessionUser{ID: "new"}, time.Minute))

	var got model.SessionUser
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "new", got.ID)
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestSessionStore_GetMissAndExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	var got model.SessionUser
	found, err := store.Get(ctx, "session:none", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "session:short", model.SessionUser{ID: "u1"}, time.Second))
	mr.FastForward(2 * time.Second)

	found, err = store.Get(ctx, "session:short", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionStore_MalformedValueIsMiss(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set("session:broken", "{not json"))

	var got model.SessionUser
	found, err := store.Get(context.Background(), "session:broken", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionStore_DeleteExists(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "blacklist:t1", model.RevocationEntry{UserID: "u1"}, time.Hour))

	exists, err := store.Exists(ctx, "blacklist:t1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "blacklist:t1"))
	assert.False(t, mr.Exists("blacklist:t1"))

	// повторное удаление не ошибка
	require.NoError(t, store.Delete(ctx, "blacklist:t1"))

	exists, err = store.Exists(ctx, "blacklist:t1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSessionStore_Outage(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	mr.SetError("LOADING dataset in memory")

	var got model.SessionUser
	_, err := store.Get(ctx, "session:t1", &got)
	assert.Error(t, err)

	_, err = store.Exists(ctx, "blacklist:t1")
	assert.Error(t, err)

	assert.Error(t, store.Set(ctx, "session:t1", model.SessionUser{ID: "u1"}, time.Hour))
	assert.Error(t, store.Delete(ctx, "session:t1"))
}
