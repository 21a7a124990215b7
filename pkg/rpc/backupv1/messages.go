package backupv1

import (
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

// Replica roles on the wire.
const (
	RolePrimary   = "primary"
	RoleSecondary = "secondary"
)

type WriteReplicaRequest struct {
	Master    cluster.NodeIdentity `json:"master"`
	SegmentID uint64               `json:"segment_id"`
	Role      string               `json:"role"`
	Open      bool                 `json:"open"`
	Records   []shard.Record       `json:"records,omitempty"`
	Digest    []byte               `json:"digest,omitempty"`
}

type WriteReplicaResponse struct {
	Length uint64 `json:"length"`
}

type ListReplicasRequest struct {
	Master  cluster.NodeIdentity `json:"master"`
	Tablets []shard.Tablet       `json:"tablets,omitempty"`
}

// ReplicaInfo describes one replica held by a backup.
type ReplicaInfo struct {
	SegmentID uint64 `json:"segment_id"`
	Role      string `json:"role"`
	Open      bool   `json:"open"`
	Length    uint64 `json:"length"`
	Digest    []byte `json:"digest,omitempty"`
}

type ListReplicasResponse struct {
	Replicas []ReplicaInfo `json:"replicas"`
}

type GetRecoveryDataRequest struct {
	Master      cluster.NodeIdentity `json:"master"`
	SegmentID   uint64               `json:"segment_id"`
	PartitionID uint64               `json:"partition_id"`
}

type GetRecoveryDataResponse struct {
	Records []shard.Record `json:"records"`
}
