package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/mcq-extractor/internal/domain"
	"github.com/spherical/mcq-extractor/internal/testutil"
)

func TestRedisClient(t *testing.T) {
	addr := testutil.StartRedis(t)
	ctx := context.Background()

	c, err := NewRedisClient(ctx, RedisConfig{Addr: addr, Prefix: "test:"})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "doc:a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "doc:b", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "other", []byte("3"), time.Minute))

	val, err := c.Get(ctx, "doc:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	require.NoError(t, c.DeleteByPrefix(ctx, "doc:"))
	_, err = c.Get(ctx, "doc:b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	val, err = c.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)

	require.NoError(t, c.Delete(ctx, "other"))
	_, err = c.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisExtractionCache(t *testing.T) {
	addr := testutil.StartRedis(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, RedisConfig{Addr: addr})
	require.NoError(t, err)
	c := NewExtractionCache(client, time.Minute)
	defer c.Close()

	ext := &domain.Extraction{
		Filename:  "quiz.pdf",
		SHA256:    "abc123",
		Questions: []domain.QuestionRecord{domain.NewQuestionRecord("Q", []string{"x", "y"}, "B")},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.Set(ctx, ext))

	got, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ext.Questions, got.Questions)
	assert.True(t, ext.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.Purge(ctx))
	got, err = c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Nil(t, got)
}
