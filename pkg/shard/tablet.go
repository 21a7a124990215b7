package shard

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

type TabletState string

const (
	TabletNormal     TabletState = "normal"
	TabletRecovering TabletState = "recovering"
	TabletRecovered  TabletState = "recovered"
)

// Valid reports whether s is a known tablet state.
func (s TabletState) Valid() bool {
	switch s {
	case TabletNormal, TabletRecovering, TabletRecovered:
		return true
	}
	return false
}

// Tablet is a contiguous key-hash range of one table, tagged with the
// recovery partition it belongs to. Both bounds are inclusive.
type Tablet struct {
	TableID      uint64      `json:"table_id"`
	StartKeyHash uint64      `json:"start_key_hash"`
	EndKeyHash   uint64      `json:"end_key_hash"`
	PartitionID  uint64      `json:"partition_id"`
	State        TabletState `json:"state"`
}

// Contains reports whether the tablet owns keyHash in tableID.
func (t Tablet) Contains(tableID, keyHash uint64) bool {
	return t.TableID == tableID && keyHash >= t.StartKeyHash && keyHash <= t.EndKeyHash
}

func (t Tablet) String() string {
	return fmt.Sprintf("table %d [%#x, %#x] partition %d (%s)", t.TableID, t.StartKeyHash, t.EndKeyHash, t.PartitionID, t.State)
}

// Record is one opaque log entry.
type Record struct {
	TableID uint64 `json:"table_id"`
	Key     []byte `json:"key"`
	Value   []byte `json:"value,omitempty"`
}

// HashKey returns the key hash used for tablet ownership.
func HashKey(key []byte) uint64 {
	return murmur3.Sum64(key)
}
