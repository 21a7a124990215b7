package shard

import (
	"sort"
)

// TabletMap is a read-only index from (table, key hash) to tablet.
type TabletMap struct {
	tablets []Tablet // sorted by TableID, then StartKeyHash
}

// NewTabletMap builds an index over a copy of tablets.
func NewTabletMap(tablets []Tablet) *TabletMap {
	sorted := make([]Tablet, len(tablets))
	copy(sorted, tablets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TableID != sorted[j].TableID {
			return sorted[i].TableID < sorted[j].TableID
		}
		return sorted[i].StartKeyHash < sorted[j].StartKeyHash
	})
	return &TabletMap{tablets: sorted}
}

// Len returns the number of indexed tablets.
func (m *TabletMap) Len() int {
	return len(m.tablets)
}

// Locate finds the tablet owning keyHash in tableID.
func (m *TabletMap) Locate(tableID, keyHash uint64) (Tablet, bool) {
	// First tablet that starts strictly after the key.
	idx := sort.Search(len(m.tablets), func(i int) bool {
		t := m.tablets[i]
		if t.TableID != tableID {
			return t.TableID > tableID
		}
		return t.StartKeyHash > keyHash
	})
	if idx == 0 {
		return Tablet{}, false
	}
	t := m.tablets[idx-1]
	if !t.Contains(tableID, keyHash) {
		return Tablet{}, false
	}
	return t, true
}

// LocateRecord finds the tablet owning rec.
func (m *TabletMap) LocateRecord(rec Record) (Tablet, bool) {
	return m.Locate(rec.TableID, HashKey(rec.Key))
}

// Split groups records by the recovery partition of the owning tablet,
// preserving record order. Records owned by no tablet are dropped.
func (m *TabletMap) Split(records []Record) map[uint64][]Record {
	out := make(map[uint64][]Record)
	for _, rec := range records {
		t, ok := m.LocateRecord(rec)
		if !ok {
			continue
		}
		out[t.PartitionID] = append(out[t.PartitionID], rec)
	}
	return out
}

// Partitions returns the distinct partition ids, ascending.
func Partitions(tablets []Tablet) []uint64 {
	seen := make(map[uint64]struct{}, len(tablets))
	ids := make([]uint64, 0, len(tablets))
	for _, t := range tablets {
		if _, ok := seen[t.PartitionID]; ok {
			continue
		}
		seen[t.PartitionID] = struct{}{}
		ids = append(ids, t.PartitionID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
