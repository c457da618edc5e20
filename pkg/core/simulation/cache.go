package simulation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// ErrNoCachedResult is returned by the cache-only strategy on a miss; that
// strategy never computes.
var ErrNoCachedResult = errors.New("no cached result for scenario")

type cacheEntry struct {
	result  *model.SimulationResult
	expires time.Time
}

// ResultCache is a process-wide, content-hash keyed store of computed
// simulation outputs plus named intermediate step artifacts. It is
// explicitly constructed and injected, never a hidden global. Access is
// mutex-synchronized; entries expire individually and are evicted lazily on
// read.
type ResultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	steps   map[string]json.RawMessage
	now     func() time.Time
}

// NewResultCache creates a cache whose entries live for ttl.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		steps:   make(map[string]json.RawMessage),
		now:     time.Now,
	}
}

// CacheKey derives the content-hash key for a parameter set: scenario id
// plus the canonical JSON serialization of the parameters.
func CacheKey(params Params) string {
	payload, err := json.Marshal(params)
	if err != nil {
		// Params are plain data; marshalling cannot realistically fail, but
		// a degenerate key must never collide across scenarios.
		return "scenario:" + params.ScenarioID
	}
	sum := sha256.Sum256(append([]byte(params.ScenarioID+"|"), payload...))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for key, evicting it first if expired.
func (c *ResultCache) Get(key string) (*model.SimulationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result, true
}

// Put stores a result under key with the cache's TTL.
func (c *ResultCache) Put(key string, result *model.SimulationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: result, expires: c.now().Add(c.ttl)}
}

// GetOrCompute returns the cached result for key, computing and storing it
// on a miss. The compute function runs outside the lock; concurrent misses
// on the same key may compute twice, last write wins.
func (c *ResultCache) GetOrCompute(key string, compute func() (*model.SimulationResult, error)) (*model.SimulationResult, error) {
	if result, ok := c.Get(key); ok {
		return result, nil
	}
	result, err := compute()
	if err != nil {
		return nil, err
	}
	c.Put(key, result)
	return result, nil
}

// SaveStep persists a named intermediate artifact for a scenario, for reuse
// by the incremental strategy.
func (c *ResultCache) SaveStep(scenarioID, stepName string, artifact any) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to serialize step %s: %w", stepName, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps[scenarioID+"/"+stepName] = payload
	return nil
}

// LoadStep retrieves a named intermediate artifact into out.
func (c *ResultCache) LoadStep(scenarioID, stepName string, out any) (bool, error) {
	c.mu.Lock()
	payload, ok := c.steps[scenarioID+"/"+stepName]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("failed to deserialize step %s: %w", stepName, err)
	}
	return true, nil
}
