package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RequirementCheckKey returns the cache key for a plan's requirement check view
func (r *CacheKeyStruct) RequirementCheckKey(planID int) string {
	return fmt.Sprintf("plan:%d:requirement_check", planID)
}

var CacheKey = NewCacheKeyStruct()
