package port

import (
	"context"

	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

//go:generate mockgen -destination=../service/mocks/catalog_mock.go -package=mocks -source=catalog.go

// TabletCatalog stores which tablets each master owns.
type TabletCatalog interface {
	TabletsFor(ctx context.Context, node cluster.NodeIdentity) ([]shard.Tablet, error)
	PutTablets(ctx context.Context, node cluster.NodeIdentity, tablets []shard.Tablet) error
	// UpdateState sets the state of every tablet of node.
	UpdateState(ctx context.Context, node cluster.NodeIdentity, state shard.TabletState) error
}
