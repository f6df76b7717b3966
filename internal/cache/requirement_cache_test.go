package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradplan/planner-backend/internal/model"
)

// fakeRedis implements the commands the cache issues. Any other command
// panics on the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(v))
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func sampleCheck() *model.RequirementCheck {
	return &model.RequirementCheck{
		Majors: []model.MajorRequirementCheck{{
			MajorName:        "컴퓨터공학부",
			MajorType:        model.MajorTypeMajor,
			MajorAll:         72,
			MajorRequirement: 39,
		}},
		All:     130,
		General: 30,
	}
}

func TestRequirementCacheRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	c := NewRequirementCache(rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, _, ok := c.GetRequirementCheck(ctx, 42)
	assert.False(t, ok)

	c.SetRequirementCheck(ctx, 42, 7, sampleCheck())
	assert.Equal(t, time.Minute, rdb.ttls["plan:42:requirement_check"])

	owner, check, ok := c.GetRequirementCheck(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, 7, owner)
	assert.Equal(t, sampleCheck(), check)

	c.SetRequirementCheck(ctx, 43, 7, sampleCheck())
	c.Invalidate(ctx, 42, 43)
	_, _, ok = c.GetRequirementCheck(ctx, 42)
	assert.False(t, ok)
	assert.Empty(t, rdb.data)
}

func TestRequirementCacheIgnoresCorruptEntries(t *testing.T) {
	rdb := newFakeRedis()
	rdb.data["plan:42:requirement_check"] = []byte("{not json")
	c := NewRequirementCache(rdb, time.Minute, zerolog.Nop())

	_, _, ok := c.GetRequirementCheck(context.Background(), 42)
	assert.False(t, ok)

	c.SetRequirementCheck(context.Background(), 42, 7, nil)
	assert.Equal(t, []byte("{not json"), rdb.data["plan:42:requirement_check"])
}

func TestRequirementCacheDegradesOnRedisErrors(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	c := NewRequirementCache(rdb, time.Minute, zerolog.Nop())
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.SetRequirementCheck(ctx, 42, 7, sampleCheck())
		c.Invalidate(ctx, 42)
	})
	_, _, ok := c.GetRequirementCheck(ctx, 42)
	assert.False(t, ok)
}

func TestNilRequirementCacheIsNoop(t *testing.T) {
	var c *RequirementCache
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.SetRequirementCheck(ctx, 42, 7, sampleCheck())
		c.Invalidate(ctx, 42)
	})
	_, _, ok := c.GetRequirementCheck(ctx, 42)
	assert.False(t, ok)
}
