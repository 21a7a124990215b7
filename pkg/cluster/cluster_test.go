package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIdentity_Equality(t *testing.T) {
	assert.Equal(t, NodeIdentity{ID: 99, Generation: 0}, NodeIdentity{ID: 99})
	assert.NotEqual(t, NodeIdentity{ID: 99, Generation: 1}, NodeIdentity{ID: 99, Generation: 0})
	assert.Equal(t, "99.1", NodeIdentity{ID: 99, Generation: 1}.String())
	assert.True(t, NodeIdentity{}.IsZero())
}

func TestCapability_Has(t *testing.T) {
	both := CapabilityBackup | CapabilityMaster
	assert.True(t, both.Has(CapabilityBackup))
	assert.True(t, both.Has(CapabilityMaster))
	assert.True(t, CapabilityBackup.Has(CapabilityBackup))
	assert.False(t, CapabilityBackup.Has(CapabilityMaster))
	assert.False(t, both.Has(0))
	assert.Equal(t, "master+backup", both.String())
	assert.Equal(t, "none", Capability(0).String())
}

func TestParseCapabilities(t *testing.T) {
	caps, err := ParseCapabilities([]string{"Master", " backup", ""})
	require.NoError(t, err)
	assert.Equal(t, CapabilityMaster|CapabilityBackup, caps)

	_, err = ParseCapabilities([]string{"coordinator"})
	assert.Error(t, err)
}

func TestDirectory_SnapshotIsImmutable(t *testing.T) {
	nodes := []Node{
		{Identity: NodeIdentity{ID: 1}, Addr: "b1", Capabilities: CapabilityBackup},
		{Identity: NodeIdentity{ID: 2}, Addr: "m1", Capabilities: CapabilityMaster},
		{Identity: NodeIdentity{ID: 3}, Addr: "bm", Capabilities: CapabilityBackup | CapabilityMaster},
	}
	dir := NewDirectory(nodes)

	nodes[0].Addr = "mutated"
	assert.Equal(t, "b1", dir.Nodes()[0].Addr)

	got := dir.Nodes()
	got[1].Addr = "mutated"
	assert.Equal(t, "m1", dir.Nodes()[1].Addr)

	backups := dir.WithCapability(CapabilityBackup)
	require.Len(t, backups, 2)
	assert.Equal(t, "b1", backups[0].Addr)
	assert.Equal(t, "bm", backups[1].Addr)

	masters := dir.WithCapability(CapabilityMaster)
	require.Len(t, masters, 2)
	assert.Equal(t, "m1", masters[0].Addr)

	n, ok := dir.Lookup(NodeIdentity{ID: 3})
	assert.True(t, ok)
	assert.Equal(t, "bm", n.Addr)
	_, ok = dir.Lookup(NodeIdentity{ID: 3, Generation: 1})
	assert.False(t, ok)
}
