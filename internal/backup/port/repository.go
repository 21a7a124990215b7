package port

import (
	"context"

	"github.com/anthanhphan/go-ramstore/internal/backup/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
)

//go:generate mockgen -destination=../service/mocks/repository_mock.go -package=mocks -source=repository.go

// ReplicaRepository stores segment replicas.
type ReplicaRepository interface {
	// Put stores r, replacing any replica with the same key.
	Put(ctx context.Context, r domain.Replica) error

	// Get returns domain.ErrReplicaNotFound when no replica exists.
	Get(ctx context.Context, key domain.ReplicaKey) (domain.Replica, error)

	// List returns the replicas of master ordered by segment id.
	List(ctx context.Context, master cluster.NodeIdentity) ([]domain.Replica, error)

	Close() error
}
