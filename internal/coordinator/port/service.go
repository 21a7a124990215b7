package port

import (
	"context"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

//go:generate mockgen -destination=../service/mocks/service_mock.go -package=mocks -source=service.go

// RecoveryService drives crash recoveries for the cluster.
type RecoveryService interface {
	// StartRecovery begins recovering crashed and returns the recovery id.
	StartRecovery(ctx context.Context, crashed cluster.NodeIdentity) (uint64, error)

	GetRecovery(id uint64) (domain.RecoveryStatus, error)
	ListRecoveries() []domain.RecoveryStatus

	// HandleNodeFailure is called when membership reports a node as gone.
	HandleNodeFailure(node cluster.Node)

	PutTablets(ctx context.Context, node cluster.NodeIdentity, tablets []shard.Tablet) error
	ListNodes() []cluster.Node

	// Close abandons every running recovery.
	Close()
}
