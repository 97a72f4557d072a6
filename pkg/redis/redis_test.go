package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromUniversal(rdb, zap.NewNop()), mr
}

func TestBlacklist(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.BlacklistToken(ctx, "jti-1", time.Minute))
	ok, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = c.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "黑名单应随 TTL 过期")
}

func TestBlacklist_ExpiredTokenIgnored(t *testing.T) {
	c, mr := newTestClient(t)

	require.NoError(t, c.BlacklistToken(context.Background(), "jti-2", 0))
	assert.False(t, mr.Exists(blacklistPrefix+"jti-2"))
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "第 %d 次请求应放行", i+1)
	}

	ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "超过上限应被拒绝")

	ok, err = c.CheckRateLimit(ctx, "rl:other", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "不同 key 互不影响")
}

func TestLock(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	token, ok, err := c.AcquireLock(ctx, "promotion", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.AcquireLock(ctx, "promotion", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "锁被持有时不应重复获取")

	// 错误 token 不能释放
	require.NoError(t, c.ReleaseLock(ctx, "promotion", "other"))
	_, ok, _ = c.AcquireLock(ctx, "promotion", time.Minute)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, "promotion", token))
	_, ok, err = c.AcquireLock(ctx, "promotion", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
