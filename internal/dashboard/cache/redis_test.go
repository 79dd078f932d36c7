package cache

import (
	"context"
	"testing"
	"time"

	"crm_backend/internal/dashboard/transport"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestGetSetRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	tenant, user := uuid.New(), uuid.New()

	_, ok, err := c.Get(ctx, tenant, user)
	require.NoError(t, err)
	assert.False(t, ok)

	want := transport.DashboardResponse{TotalLeads: 3, Revenue: 5000, ConversionRate: 33.3, Monthly: make([]int64, 12)}
	require.NoError(t, c.Set(ctx, tenant, user, want))

	got, ok, err := c.Get(ctx, tenant, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Revenue, got.Revenue)
	assert.Equal(t, want.ConversionRate, got.ConversionRate)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, tenant, user)
	require.NoError(t, err)
	assert.False(t, ok, "entries expire after the ttl")
}

func TestInvalidateTenantKeepsOtherTenants(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	tenant, other := uuid.New(), uuid.New()
	userA, userB := uuid.New(), uuid.New()

	require.NoError(t, c.Set(ctx, tenant, userA, transport.DashboardResponse{TotalLeads: 1}))
	require.NoError(t, c.Set(ctx, tenant, userB, transport.DashboardResponse{TotalLeads: 2}))
	require.NoError(t, c.Set(ctx, other, userA, transport.DashboardResponse{TotalLeads: 9}))

	require.NoError(t, c.InvalidateTenant(ctx, tenant))

	for _, user := range []uuid.UUID{userA, userB} {
		_, ok, err := c.Get(ctx, tenant, user)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	got, ok, err := c.Get(ctx, other, userA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, got.TotalLeads)

	require.NoError(t, c.InvalidateTenant(ctx, uuid.New()), "empty tenants are fine")
}

func TestGetCorruptEntry(t *testing.T) {
	c, mr := newCache(t)
	tenant, user := uuid.New(), uuid.New()
	require.NoError(t, mr.Set(key(tenant, user), "{not json"))

	_, ok, err := c.Get(context.Background(), tenant, user)
	assert.Error(t, err)
	assert.False(t, ok)
}
