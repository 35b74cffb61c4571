package database

import (
	"path/filepath"
	"testing"

	"arcade/backend/internal/models"
	"arcade/backend/internal/store"

	"github.com/stretchr/testify/require"
)

func TestConnect_SQLiteMigrates(t *testing.T) {
	db, err := Connect("sqlite", filepath.Join(t.TempDir(), "arcade.db"))

	require.NoError(t, err)
	require.True(t, db.Migrator().HasTable(&models.Account{}))
	require.True(t, db.Migrator().HasTable(&store.Entry{}))
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect("oracle", "")
	require.Error(t, err)
}
