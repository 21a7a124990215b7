package tablet_catalog

import (
	"context"
	"sync"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

// MemoryCatalog is used when no redis address is configured.
type MemoryCatalog struct {
	mu      sync.RWMutex
	tablets map[cluster.NodeIdentity][]shard.Tablet
}

var _ port.TabletCatalog = (*MemoryCatalog)(nil)

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{tablets: make(map[cluster.NodeIdentity][]shard.Tablet)}
}

func (c *MemoryCatalog) TabletsFor(_ context.Context, node cluster.NodeIdentity) ([]shard.Tablet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts, ok := c.tablets[node]
	if !ok {
		return nil, nil
	}
	return append([]shard.Tablet(nil), ts...), nil
}

func (c *MemoryCatalog) PutTablets(_ context.Context, node cluster.NodeIdentity, tablets []shard.Tablet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tablets[node] = append([]shard.Tablet(nil), tablets...)
	return nil
}

func (c *MemoryCatalog) UpdateState(_ context.Context, node cluster.NodeIdentity, state shard.TabletState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts, ok := c.tablets[node]; ok {
		c.tablets[node] = withState(ts, state)
	}
	return nil
}
