package badger

import (
	"context"
	"testing"
	"time"

	"github.com/aldeia/advisor/core"
	"github.com/aldeia/advisor/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUsers(t *testing.T) storage.UserRepository {
	t.Helper()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	users, err := NewUserRepository(backend)
	require.NoError(t, err)
	return users
}

func TestUpsertUserRequiresEmail(t *testing.T) {
	users := newTestUsers(t)
	_, err := users.UpsertUser(context.Background(), core.UserProfile{Name: "Jo"})
	assert.ErrorIs(t, err, core.ErrEmailRequired)
}

func TestUpsertUserCreatesAndMerges(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	created, err := users.UpsertUser(ctx, core.UserProfile{Email: "jo@example.com", Name: "Jo"})
	require.NoError(t, err)
	assert.Equal(t, core.UserIDFromEmail("jo@example.com"), created.Id)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := users.UpsertUser(ctx, core.UserProfile{Email: "jo@example.com", County: "LA"})
	require.NoError(t, err)
	assert.Equal(t, created.Id, updated.Id)
	// Field-wise merge: the earlier name survives the county-only update.
	assert.Equal(t, "Jo", updated.Profile.Name)
	assert.Equal(t, "LA", updated.Profile.County)

	fetched, err := users.GetUser(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, updated.Profile, fetched.Profile)
}

func TestGetUserNotFound(t *testing.T) {
	users := newTestUsers(t)
	_, err := users.GetUser(context.Background(), core.ID(42))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListUsersOrder(t *testing.T) {
	users := newTestUsers(t)
	ctx := context.Background()

	_, err := users.UpsertUser(ctx, core.UserProfile{Email: "first@example.com"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = users.UpsertUser(ctx, core.UserProfile{Email: "second@example.com"})
	require.NoError(t, err)

	list, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Most recently created first.
	assert.Equal(t, "second@example.com", list[0].Profile.Email)
	assert.Equal(t, "first@example.com", list[1].Profile.Email)
}
