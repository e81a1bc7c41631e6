package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresGon/cursor-pet/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func sampleListing() []domain.Product {
	return []domain.Product{
		{
			ID:       1,
			Title:    "Collar para perro",
			Price:    19.99,
			Discount: 10,
			Category: domain.Category{CategoryName: "Perros", Slug: "perros"},
		},
		{
			ID:       2,
			Title:    "Rascador",
			Price:    35,
			Category: domain.Category{CategoryName: "Gatos", Slug: "gatos"},
		},
	}
}

func TestCacheGet_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)

	data, err := json.Marshal(sampleListing())
	require.NoError(t, err)
	mr.Set(listingKey, string(data))

	products, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleListing(), products)
}

func TestCacheGet_CorruptEntry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Set(listingKey, "{not json")

	_, err := cache.Get(context.Background())
	assert.ErrorContains(t, err, "unmarshal")
}

func TestCacheSet_RoundTripWithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleListing()))

	products, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleListing(), products)

	ttl := mr.TTL(listingKey)
	assert.GreaterOrEqual(t, ttl, cache.baseTTL)
}

func TestCacheDelete(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleListing()))
	require.NoError(t, cache.Delete(ctx))

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
