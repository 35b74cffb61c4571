package store

import (
	"context"
	"fmt"
	"testing"

	"arcade/backend/internal/hub"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entry{}))
	return db
}

func TestGormBackend_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	b := NewGormBackend(openTestDB(t))

	missing, err := b.Get(ctx, KeyMatches)
	require.NoError(t, err)
	require.Equal(t, int64(0), missing.Version)

	first, err := b.Put(ctx, KeyMatches, []byte(`[1]`), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Version)

	_, err = b.Put(ctx, KeyMatches, []byte(`[dup]`), 0)
	require.ErrorIs(t, err, ErrConflict)

	second, err := b.Put(ctx, KeyMatches, []byte(`[2]`), 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Version)

	_, err = b.Put(ctx, KeyMatches, []byte(`[stale]`), 1)
	require.ErrorIs(t, err, ErrConflict)

	got, err := b.Get(ctx, KeyMatches)
	require.NoError(t, err)
	require.Equal(t, `[2]`, string(got.Value))

	versions, err := b.Versions(ctx, []string{KeyMatches, KeyChallenges})
	require.NoError(t, err)
	require.Equal(t, map[string]int64{KeyMatches: 2}, versions)
}

func TestGormBackend_BehindStore(t *testing.T) {
	ctx := context.Background()
	s := New(NewGormBackend(openTestDB(t)), hub.NewHub())

	for _, id := range []string{"c1", "c2"} {
		_, err := UpdateCollection(ctx, s, "tab-a", KeyChallenges, func(items []string) ([]string, error) {
			return append(items, id), nil
		})
		require.NoError(t, err)
	}

	items, err := LoadCollection[string](ctx, s, KeyChallenges)
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2"}, items)
	require.False(t, s.Degraded())
}
