package users

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_users_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), cleanup
}

func TestUserRepository(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	t.Run("CreateUser persists the account", func(t *testing.T) {
		user := &entities.User{Username: "admin", PasswordHash: "hash"}
		require.NoError(t, repo.CreateUser(user))
		assert.NotZero(t, user.ID)
	})

	t.Run("CreateUser rejects a duplicate username", func(t *testing.T) {
		err := repo.CreateUser(&entities.User{Username: "admin", PasswordHash: "other"})
		assert.ErrorIs(t, err, database.ErrDuplicate)
	})

	t.Run("GetUserByUsername retrieves the account", func(t *testing.T) {
		user, err := repo.GetUserByUsername("admin")
		require.NoError(t, err)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("GetUserByUsername returns not found for unknown names", func(t *testing.T) {
		_, err := repo.GetUserByUsername("nobody")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("GetUserByID retrieves the account", func(t *testing.T) {
		byName, err := repo.GetUserByUsername("admin")
		require.NoError(t, err)

		byID, err := repo.GetUserByID(byName.ID)
		require.NoError(t, err)
		assert.Equal(t, "admin", byID.Username)
	})

	t.Run("CountUsers reflects created accounts", func(t *testing.T) {
		count, err := repo.CountUsers()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, repo.CreateUser(&entities.User{Username: "editor", PasswordHash: "hash"}))

		count, err = repo.CountUsers()
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
