package mlmodel

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/apperr"
	"github.com/SpaceBug199/ML-pipeline-home-assigment/internal/logger"
)

// DecodeFunc deserializes artifact bytes into a scorer. Injected so tests
// can load stub scorers through the normal path.
type DecodeFunc func(raw []byte) (Scorer, error)

// Cache holds the one scoring object the process serves predictions with,
// plus a single level of rollback history. The current scorer, the previous
// scorer, and the raw bytes backing each are swapped as one unit under the
// lock; readers never observe a half-loaded state.
//
// Only one level of history is kept: a second consecutive failed load loses
// the ability to roll back past the object that existed before it. That is a
// deliberate limit, not an oversight.
type Cache struct {
	mu     sync.RWMutex
	log    *logger.Logger
	decode DecodeFunc

	current     Scorer
	currentRaw  []byte
	previous    Scorer
	previousRaw []byte
}

func NewCache(log *logger.Logger, decode DecodeFunc) *Cache {
	if decode == nil {
		decode = DecodeArtifact
	}
	return &Cache{
		log:    log.With("component", "ModelCache"),
		decode: decode,
	}
}

// LoadFromBytes deserializes raw into the current slot. The prior current
// object moves to the previous slot first (unconditionally overwriting it);
// if deserialization fails the prior object is restored, so a failed load
// never empties a cache that already held a model.
func (c *Cache) LoadFromBytes(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	priorScorer, priorRaw := c.current, c.currentRaw
	priorPrev, priorPrevRaw := c.previous, c.previousRaw
	c.previous, c.previousRaw = priorScorer, priorRaw

	scorer, err := c.decode(raw)
	if err != nil {
		c.current, c.currentRaw = priorScorer, priorRaw
		c.previous, c.previousRaw = priorPrev, priorPrevRaw
		c.log.Warn("Model load failed, cache restored to prior state", "error", err)
		return fmt.Errorf("%w: %v", apperr.ErrModelLoad, err)
	}

	c.current = scorer
	c.currentRaw = append([]byte(nil), raw...)
	c.log.Info("Model loaded into cache", "bytes", len(raw))
	return nil
}

// Rollback makes the previous object current again, consuming the history
// slot. A second rollback without an intervening successful load fails.
func (c *Cache) Rollback() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.previous == nil {
		c.log.Error("Rollback requested with no previous model")
		return apperr.ErrNoPreviousModel
	}
	c.current, c.currentRaw = c.previous, c.previousRaw
	c.previous, c.previousRaw = nil, nil
	c.log.Info("Rolled back to previous model")
	return nil
}

// Current returns the loaded scorer, or false when nothing has been
// successfully loaded yet.
func (c *Cache) Current() (Scorer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, false
	}
	return c.current, true
}

// Persist writes the serialized bytes of the current object to path. Used
// for out-of-band backups, not during activation.
func (c *Cache) Persist(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return apperr.ErrModelNotLoaded
	}
	if len(c.currentRaw) == 0 {
		return fmt.Errorf("no serialized backup for current model")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("persist model: %w", err)
		}
	}
	if err := os.WriteFile(path, c.currentRaw, 0o644); err != nil {
		return fmt.Errorf("persist model: %w", err)
	}
	c.log.Info("Model persisted", "path", path, "bytes", len(c.currentRaw))
	return nil
}
