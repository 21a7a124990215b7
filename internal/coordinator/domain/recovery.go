package domain

import (
	"time"

	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

type RecoveryPhase string

const (
	PhaseConstructed      RecoveryPhase = "constructed"
	PhaseReplicaListBuilt RecoveryPhase = "replica_list_built"
	PhaseLogVerified      RecoveryPhase = "log_verified"
	PhasePlanned          RecoveryPhase = "planned"
	PhaseRetrieving       RecoveryPhase = "retrieving"
	PhaseCompleted        RecoveryPhase = "completed"
	PhaseAborted          RecoveryPhase = "aborted"
)

// Terminal reports whether no further transition is possible.
func (p RecoveryPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseAborted
}

// MissingSegmentPolicy decides what a declared but unlocated segment does to a recovery.
type MissingSegmentPolicy string

const (
	MissingSegmentAdvisory MissingSegmentPolicy = "advisory"
	MissingSegmentFatal    MissingSegmentPolicy = "fatal"
)

// PartitionAssignment binds a recovery partition to the master that rebuilds it.
type PartitionAssignment struct {
	PartitionID uint64       `json:"partition_id"`
	Master      cluster.Node `json:"master"`
}

// RecoveryStatus is a point-in-time view of a recovery.
type RecoveryStatus struct {
	ID                   uint64                `json:"id"`
	Crashed              cluster.NodeIdentity  `json:"crashed"`
	Phase                RecoveryPhase         `json:"phase"`
	Tablets              []shard.Tablet        `json:"tablets"`
	TabletsUnderRecovery int                   `json:"tablets_under_recovery"`
	ReplicaList          ReplicaList           `json:"replica_list"`
	Head                 *LogHead              `json:"head,omitempty"`
	MissingSegments      []uint64              `json:"missing_segments,omitempty"`
	Assignments          []PartitionAssignment `json:"assignments,omitempty"`
	PartitionRecords     map[uint64]int        `json:"partition_records,omitempty"`
	Error                string                `json:"error,omitempty"`
	Fatal                bool                  `json:"fatal"`
	StartedAt            time.Time             `json:"started_at"`
	FinishedAt           *time.Time            `json:"finished_at,omitempty"`
}
