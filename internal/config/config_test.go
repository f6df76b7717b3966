package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("NONE_MAJOR_ID", "99")
	t.Setenv("RECALC_WORKERS", "not-a-number")
	t.Setenv("REQUIREMENT_CACHE_TTL_SECONDS", "60")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	assert.Equal(t, 99, cfg.NoneMajorID)
	assert.Equal(t, 4, cfg.RecalcWorkers)
	assert.Equal(t, time.Minute, cfg.RequirementCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "plan:42:requirement_check", CacheKey.RequirementCheckKey(42))
	assert.Equal(t, "recalculate_plan_queue", WorkerKey.RecalculatePlanQueue)
	assert.Nil(t, parseOrigins(""))
}
