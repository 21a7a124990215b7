package port

import (
	"context"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

//go:generate mockgen -destination=../service/mocks/backup_mock.go -package=mocks -source=backup.go

// BackupClient talks to backup nodes on behalf of a recovery.
type BackupClient interface {
	// ListReplicas returns the replicas of crashed's log held by the backup at addr.
	// The tablets let the backup start partitioning its replicas in the background.
	ListReplicas(ctx context.Context, addr string, crashed cluster.NodeIdentity, tablets []shard.Tablet) ([]domain.ReplicaInfo, error)

	// GetRecoveryData returns the records of one segment that fall in one partition.
	// It returns domain.ErrNotReady while the backup is still partitioning.
	GetRecoveryData(ctx context.Context, addr string, crashed cluster.NodeIdentity, segmentID, partitionID uint64) ([]shard.Record, error)
}
