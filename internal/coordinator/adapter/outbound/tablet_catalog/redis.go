package tablet_catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

const maxWatchRetries = 5

// RedisCatalog keeps each master's tablets as one JSON value under
// <prefix><server id>:<generation>.
type RedisCatalog struct {
	Client redis.UniversalClient
	Prefix string
}

var _ port.TabletCatalog = (*RedisCatalog)(nil)

func NewRedisCatalog(client redis.UniversalClient, prefix string) *RedisCatalog {
	return &RedisCatalog{Client: client, Prefix: prefix}
}

func (c *RedisCatalog) key(node cluster.NodeIdentity) string {
	return fmt.Sprintf("%s%d:%d", c.Prefix, node.ID, node.Generation)
}

func (c *RedisCatalog) TabletsFor(ctx context.Context, node cluster.NodeIdentity) ([]shard.Tablet, error) {
	data, err := c.Client.Get(ctx, c.key(node)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tablets of %s: %w", node, err)
	}
	return decodeTablets(data)
}

func (c *RedisCatalog) PutTablets(ctx context.Context, node cluster.NodeIdentity, tablets []shard.Tablet) error {
	data, err := encodeTablets(tablets)
	if err != nil {
		return err
	}
	if err := c.Client.Set(ctx, c.key(node), data, 0).Err(); err != nil {
		return fmt.Errorf("persisting tablets of %s: %w", node, err)
	}
	return nil
}

// UpdateState rewrites the tablet list under WATCH so concurrent writers never lose updates.
func (c *RedisCatalog) UpdateState(ctx context.Context, node cluster.NodeIdentity, state shard.TabletState) error {
	key := c.key(node)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		tablets, err := decodeTablets(data)
		if err != nil {
			return err
		}
		out, err := encodeTablets(withState(tablets, state))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := c.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update tablet state of %s: %w", node, err)
		}
		return nil
	}
	return fmt.Errorf("update tablet state of %s: %w", node, redis.TxFailedErr)
}

func encodeTablets(tablets []shard.Tablet) ([]byte, error) {
	if tablets == nil {
		tablets = []shard.Tablet{}
	}
	data, err := json.Marshal(tablets)
	if err != nil {
		return nil, fmt.Errorf("encoding tablets: %w", err)
	}
	return data, nil
}

func decodeTablets(data []byte) ([]shard.Tablet, error) {
	var tablets []shard.Tablet
	if err := json.Unmarshal(data, &tablets); err != nil {
		return nil, fmt.Errorf("decoding tablets: %w", err)
	}
	return tablets, nil
}

func withState(tablets []shard.Tablet, state shard.TabletState) []shard.Tablet {
	out := make([]shard.Tablet, len(tablets))
	for i, t := range tablets {
		t.State = state
		out[i] = t
	}
	return out
}
