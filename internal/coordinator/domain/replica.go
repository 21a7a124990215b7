package domain

import (
	"fmt"

	"github.com/anthanhphan/go-ramstore/pkg/cluster"
)

type ReplicaRole string

const (
	RolePrimary   ReplicaRole = "primary"
	RoleSecondary ReplicaRole = "secondary"
)

// ReplicaInfo is a backup's answer about one replica of the crashed master's log.
type ReplicaInfo struct {
	SegmentID uint64
	Role      ReplicaRole
	Open      bool
	Length    uint64
	Digest    []byte
}

// SegmentReplica is one physical copy of a log segment held by one backup.
type SegmentReplica struct {
	SegmentID uint64               `json:"segment_id"`
	Backup    cluster.NodeIdentity `json:"backup"`
	Addr      string               `json:"addr"`
	Role      ReplicaRole          `json:"role"`
}

func (r SegmentReplica) String() string {
	return fmt.Sprintf("%d@%s(%s)", r.SegmentID, r.Addr, r.Role)
}

// ReplicaList orders replicas by read priority. All primaries precede all secondaries.
type ReplicaList []SegmentReplica

// Ordered reports whether no primary follows a secondary.
func (l ReplicaList) Ordered() bool {
	seenSecondary := false
	for _, r := range l {
		if r.Role == RoleSecondary {
			seenSecondary = true
		} else if seenSecondary {
			return false
		}
	}
	return true
}

// SegmentIDs returns the distinct segment ids in list order.
func (l ReplicaList) SegmentIDs() []uint64 {
	seen := make(map[uint64]struct{}, len(l))
	ids := make([]uint64, 0, len(l))
	for _, r := range l {
		if _, ok := seen[r.SegmentID]; ok {
			continue
		}
		seen[r.SegmentID] = struct{}{}
		ids = append(ids, r.SegmentID)
	}
	return ids
}

// ReplicasFor returns every replica of segmentID in list order.
func (l ReplicaList) ReplicasFor(segmentID uint64) []SegmentReplica {
	var out []SegmentReplica
	for _, r := range l {
		if r.SegmentID == segmentID {
			out = append(out, r)
		}
	}
	return out
}

// Contains reports whether any replica of segmentID was located.
func (l ReplicaList) Contains(segmentID uint64) bool {
	for _, r := range l {
		if r.SegmentID == segmentID {
			return true
		}
	}
	return false
}

// Backups returns the distinct backup addresses in list order.
func (l ReplicaList) Backups() []string {
	seen := make(map[string]struct{}, len(l))
	addrs := make([]string, 0, len(l))
	for _, r := range l {
		if _, ok := seen[r.Addr]; ok {
			continue
		}
		seen[r.Addr] = struct{}{}
		addrs = append(addrs, r.Addr)
	}
	return addrs
}

// DigestCandidate is a replica that carried a log digest.
type DigestCandidate struct {
	SegmentID uint64
	Length    uint64
	Digest    []byte
}

// LogHead is the chosen head segment and the segment ids its digest declares.
type LogHead struct {
	SegmentID uint64   `json:"segment_id"`
	Length    uint64   `json:"length"`
	Segments  []uint64 `json:"segments"`
}
