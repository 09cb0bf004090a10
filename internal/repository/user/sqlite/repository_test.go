package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sharetube/watchroom/internal/repository/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	require.NoError(t, r.CreateUser(ctx, &user.CreateUserParams{
		Id:           "u1",
		Username:     "bob",
		PasswordHash: "hash",
		AvatarURL:    "/a.png",
	}))

	err = r.CreateUser(ctx, &user.CreateUserParams{Id: "u2", Username: "bob"})
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)

	byName, err := r.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.Id)
	assert.Equal(t, "hash", byName.PasswordHash)
	assert.NotZero(t, byName.CreatedAt)

	byId, err := r.GetUserById(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, byName, byId)

	_, err = r.GetUserById(ctx, "u2")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUsersPersistOnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	r, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, r.CreateUser(ctx, &user.CreateUserParams{Id: "u1", Username: "bob"}))
	require.NoError(t, r.Close())

	r, err = Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.GetUserById(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
}
