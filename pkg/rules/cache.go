package rules

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// LRUCache is a bounded ProgramCache safe for concurrent use.
type LRUCache struct {
	programs *lru.Cache[string, any]
}

// NewLRUCache keeps at most size compiled programs.
func NewLRUCache(size int) (*LRUCache, error) {
	programs, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("rules: program cache: %w", err)
	}
	return &LRUCache{programs: programs}, nil
}

func (c *LRUCache) Get(key string) (any, bool) {
	return c.programs.Get(key)
}

func (c *LRUCache) Set(key string, value any) {
	c.programs.Add(key, value)
}

// Len reports the number of cached programs.
func (c *LRUCache) Len() int {
	return c.programs.Len()
}
