package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// fakeCmdable implements the two commands the cache uses on top of a map.
type fakeCmdable struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
}

func newFake() *fakeCmdable {
	return &fakeCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeCmdable) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	default:
		f.data[key] = fmt.Sprint(v)
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestNewWithoutURL(t *testing.T) {
	c, err := New(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

func TestCEPCacheRoundTrip(t *testing.T) {
	fake := newFake()
	cache := NewCEPCache(fake)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "01001000")
	require.NoError(t, err)
	assert.False(t, ok)

	addr := model.Address{CEP: "01001-000", Cidade: "São Paulo", Estado: "SP"}
	require.NoError(t, cache.Set(ctx, "01001000", addr, time.Hour))
	assert.Equal(t, time.Hour, fake.ttls["cep:01001000"])

	got, ok, err := cache.Get(ctx, "01001000")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, addr, got)
}

func TestCEPCacheCorruptEntry(t *testing.T) {
	fake := newFake()
	fake.data["cep:01001000"] = "{broken"
	_, _, err := NewCEPCache(fake).Get(context.Background(), "01001000")
	assert.Error(t, err)
}
