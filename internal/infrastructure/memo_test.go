package infrastructure_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/infrastructure"
)

func TestMain(m *testing.M) {
	godotenv.Load("../../.env")
	result := m.Run()
	os.Exit(result)
}

func testMemoStore(t *testing.T, store business.MemoStore) {
	ctx := context.Background()

	_, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.SetIfAbsent(ctx, 42, "https://image.tmdb.org/t/p/original/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/abc.jpg", stored)

	// Once set, the URL is permanent
	stored, err = store.SetIfAbsent(ctx, 42, "https://movies.example.com/images/other.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/abc.jpg", stored)

	url, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/abc.jpg", url)
}

func TestSQLiteMemo(t *testing.T) {
	memo, err := infrastructure.NewSQLiteMemo(":memory:", "original")
	require.NoError(t, err)
	t.Cleanup(func() { memo.Close() })

	testMemoStore(t, memo)

	// Other namespaces of the same database are independent
	small := memo.Namespace("w780")
	_, ok, err := small.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	testMemoStore(t, small)
}

func TestSQLiteMemoCancelledContext(t *testing.T) {
	memo, err := infrastructure.NewSQLiteMemo(":memory:", "original")
	require.NoError(t, err)
	t.Cleanup(func() { memo.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = memo.SetIfAbsent(ctx, 1, "url")
	assert.Error(t, err)

	_, ok, err := memo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMongoMemo(t *testing.T) {
	if os.Getenv("DB_URL") == "" {
		t.Skip("DB_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	memo, err := infrastructure.NewMongoMemo(ctx,
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_URL"),
		os.Getenv("DB_PORT"),
		"marquee_test",
		"image_memo_test")
	require.NoError(t, err)
	require.NoError(t, memo.Drop(ctx))
	t.Cleanup(func() {
		memo.Drop(context.Background())
		memo.Close(context.Background())
	})

	testMemoStore(t, memo)
}
