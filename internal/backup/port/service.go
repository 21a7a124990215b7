package port

import (
	"context"

	"github.com/anthanhphan/go-ramstore/internal/backup/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

//go:generate mockgen -destination=../service/mocks/service_mock.go -package=mocks -source=service.go

// BackupService holds segment replicas and serves them back during recovery.
type BackupService interface {
	WriteReplica(ctx context.Context, r domain.Replica) (uint64, error)

	// ListReplicas reports master's replicas and starts partitioning them by tablets.
	ListReplicas(ctx context.Context, master cluster.NodeIdentity, tablets []shard.Tablet) ([]domain.Replica, error)

	// GetRecoveryData returns domain.ErrNotReady until the replica is partitioned.
	GetRecoveryData(ctx context.Context, key domain.ReplicaKey, partitionID uint64) ([]shard.Record, error)

	Close()
}
