// Package levels caches the Loop subdivision levels of one base mesh.
// Level 0 is the imported mesh; level k is computed from level k-1 on
// first request and kept until the next Reset.
package levels

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/loop"
)

var (
	// ErrNoMesh is returned by Level before the first Reset.
	ErrNoMesh = errors.New("levels: no base mesh")
	// ErrLevelRange is returned for negative levels and levels above the
	// configured maximum.
	ErrLevelRange = errors.New("levels: level out of range")
)

// Cache holds levels 0..Len()-1. It is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	levels []*halfedge.Mesh
	max    int
	sub    *loop.Subdivider
	log    *slog.Logger
}

// New returns an empty cache serving levels up to max. A nil logger uses
// slog.Default().
func New(max int, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		max: max,
		sub: loop.New(logger),
		log: logger,
	}
}

// Reset drops every cached level and makes base level 0. base must be a
// valid mesh; the cache takes ownership of it.
func (c *Cache) Reset(base *halfedge.Mesh) error {
	if err := halfedge.Validate(base); err != nil {
		return fmt.Errorf("levels: reset: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels = []*halfedge.Mesh{base}
	c.log.Info("levels: new base mesh",
		"vertices", base.NumVertices(), "faces", base.NumFaces())
	return nil
}

// Level returns subdivision level k, computing any missing levels from
// the highest cached one. Repeated requests return the same mesh. The
// returned mesh must not be modified.
func (c *Cache) Level(k int) (*halfedge.Mesh, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.levels) == 0 {
		return nil, ErrNoMesh
	}
	if k < 0 || k > c.max {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrLevelRange, k, c.max)
	}
	for len(c.levels) <= k {
		prev := c.levels[len(c.levels)-1]
		next, err := c.sub.Subdivide(prev)
		if err != nil {
			return nil, fmt.Errorf("levels: level %d: %w", len(c.levels), err)
		}
		c.levels = append(c.levels, next)
		c.log.Debug("levels: computed level", "level", len(c.levels)-1,
			"vertices", next.NumVertices(), "faces", next.NumFaces())
	}
	return c.levels[k], nil
}

// Len returns the number of cached levels.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.levels)
}

// Max returns the highest level the cache will compute.
func (c *Cache) Max() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max
}

// SetMax changes the highest level served. Cached levels above max are
// dropped.
func (c *Cache) SetMax(max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.max = max
	if max >= 0 && len(c.levels) > max+1 {
		c.levels = c.levels[:max+1]
	}
}
