package viewer

import (
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/onnwee/gravity-sim/internal/metrics"
)

// FrameCache keeps recently encoded frames so clients can rewind without
// the simulation retaining every step. Ristretto evicts by byte cost.
type FrameCache struct {
	cache *ristretto.Cache
}

// NewFrameCache creates a cache bounded at maxSizeMB megabytes of encoded
// frames.
func NewFrameCache(maxSizeMB int64) (*FrameCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxSizeMB * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &FrameCache{cache: cache}, nil
}

func frameKey(step int) string { return fmt.Sprintf("frame:%d", step) }

// Put stores an encoded frame. Ristretto admits asynchronously; a frame
// may not be immediately retrievable, which is acceptable for a rewind
// buffer.
func (c *FrameCache) Put(step int, encoded []byte) {
	c.cache.Set(frameKey(step), encoded, int64(len(encoded)))
}

// Get returns the encoded frame for a step if still cached.
func (c *FrameCache) Get(step int) ([]byte, bool) {
	v, ok := c.cache.Get(frameKey(step))
	if !ok {
		metrics.ViewerFrameCacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.ViewerFrameCacheHits.WithLabelValues("hit").Inc()
	return v.([]byte), true
}

// Wait blocks until pending admissions are visible; used by tests.
func (c *FrameCache) Wait() { c.cache.Wait() }

// Close releases the cache.
func (c *FrameCache) Close() { c.cache.Close() }
