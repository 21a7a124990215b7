package cluster

import (
	"fmt"
	"strings"
)

// NodeIdentity names one incarnation of a cluster slot.
// Two identities are equal only when both ID and Generation match.
type NodeIdentity struct {
	ID         uint64 `json:"id"`
	Generation uint32 `json:"generation"`
}

func (n NodeIdentity) String() string {
	return fmt.Sprintf("%d.%d", n.ID, n.Generation)
}

// IsZero reports whether the identity was never assigned.
func (n NodeIdentity) IsZero() bool {
	return n.ID == 0 && n.Generation == 0
}

// Capability is a set of services a node offers.
type Capability uint32

const (
	// CapabilityBackup marks nodes that hold durable segment replicas.
	CapabilityBackup Capability = 1 << iota
	// CapabilityMaster marks nodes that can host storage partitions.
	CapabilityMaster
)

// Has reports whether every bit of c is set.
func (m Capability) Has(c Capability) bool {
	return c != 0 && m&c == c
}

func (m Capability) String() string {
	var parts []string
	if m.Has(CapabilityMaster) {
		parts = append(parts, "master")
	}
	if m.Has(CapabilityBackup) {
		parts = append(parts, "backup")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ParseCapabilities converts names such as "master" or "backup" into a Capability set.
func ParseCapabilities(names []string) (Capability, error) {
	var caps Capability
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "master":
			caps |= CapabilityMaster
		case "backup":
			caps |= CapabilityBackup
		case "":
		default:
			return 0, fmt.Errorf("unknown capability %q", name)
		}
	}
	return caps, nil
}

// Node is a directory entry: who the node is, where to reach it and what it serves.
type Node struct {
	Identity     NodeIdentity `json:"identity"`
	Addr         string       `json:"addr"`
	Capabilities Capability   `json:"capabilities"`
}

func (n Node) String() string {
	return fmt.Sprintf("%s@%s[%s]", n.Identity, n.Addr, n.Capabilities)
}
