package domain

import (
	"errors"
	"fmt"

	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

var (
	// ErrNotReady means the replica exists but has not been partitioned yet.
	ErrNotReady        = errors.New("replica not partitioned yet")
	ErrReplicaNotFound = errors.New("replica not found")
	ErrInvalidRole     = errors.New("invalid replica role")
)

type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

func (r Role) Valid() bool {
	return r == RolePrimary || r == RoleSecondary
}

// ReplicaKey names a replica of one master's log segment.
type ReplicaKey struct {
	Master    cluster.NodeIdentity
	SegmentID uint64
}

func (k ReplicaKey) String() string {
	return fmt.Sprintf("%s/%d", k.Master, k.SegmentID)
}

// Replica is one durable copy of a log segment.
type Replica struct {
	Master    cluster.NodeIdentity `json:"master"`
	SegmentID uint64               `json:"segment_id"`
	Role      Role                 `json:"role"`
	Open      bool                 `json:"open"`
	Records   []shard.Record       `json:"records,omitempty"`
	// Digest is set only on the segment that was the log head when written.
	Digest []byte `json:"digest,omitempty"`
}

func (r Replica) Key() ReplicaKey {
	return ReplicaKey{Master: r.Master, SegmentID: r.SegmentID}
}

// Length is the number of payload bytes held by the replica.
func (r Replica) Length() uint64 {
	var n uint64
	for _, rec := range r.Records {
		n += uint64(len(rec.Key) + len(rec.Value))
	}
	return n
}
