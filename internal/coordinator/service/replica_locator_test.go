package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/logdigest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicaLocator_Scenario(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup-a"] = []domain.ReplicaInfo{closed(88), openHead(89, 512, 88, 89)}
	backups.replicas["backup-b"] = []domain.ReplicaInfo{closed(88)}

	dir := cluster.NewDirectory([]cluster.Node{backupNode(1, "backup-a"), backupNode(2, "backup-b")})
	locator := newReplicaLocator(backups, fixedRand{}, time.Second)

	list, candidates := locator.locate(context.Background(), crashedNode, dir, nil)

	require.Len(t, list, 3)
	assert.Equal(t, domain.SegmentReplica{SegmentID: 89, Backup: cluster.NodeIdentity{ID: 1}, Addr: "backup-a", Role: domain.RolePrimary}, list[0])
	assert.Equal(t, domain.SegmentReplica{SegmentID: 88, Backup: cluster.NodeIdentity{ID: 2}, Addr: "backup-b", Role: domain.RoleSecondary}, list[1])
	assert.Equal(t, domain.SegmentReplica{SegmentID: 88, Backup: cluster.NodeIdentity{ID: 1}, Addr: "backup-a", Role: domain.RoleSecondary}, list[2])

	require.Len(t, candidates, 1)
	assert.Equal(t, uint64(89), candidates[0].SegmentID)
	assert.Equal(t, uint64(512), candidates[0].Length)
}

func TestReplicaLocator_SkipsUnreachableAndNonBackups(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup-a"] = []domain.ReplicaInfo{openHead(5, 10, 5)}
	backups.replicas["master-x"] = []domain.ReplicaInfo{closed(4)}
	backups.listErr["backup-b"] = errors.New("connection refused")

	dir := cluster.NewDirectory([]cluster.Node{
		backupNode(1, "backup-a"),
		backupNode(2, "backup-b"),
		masterNode(3, "master-x"),
		// The crashed node is never asked about its own log.
		{Identity: crashedNode, Addr: "crashed", Capabilities: cluster.CapabilityBackup | cluster.CapabilityMaster},
	})

	list, candidates := newReplicaLocator(backups, fixedRand{}, time.Second).locate(context.Background(), crashedNode, dir, nil)

	require.Len(t, list, 1)
	assert.Equal(t, "backup-a", list[0].Addr)
	assert.Len(t, candidates, 1)
}

func TestReplicaLocator_PrimaryRoleIsKept(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup-a"] = []domain.ReplicaInfo{closed(1), {SegmentID: 2, Role: domain.RolePrimary}}
	dir := cluster.NewDirectory([]cluster.Node{backupNode(1, "backup-a")})

	list, _ := newReplicaLocator(backups, fixedRand{}, time.Second).locate(context.Background(), crashedNode, dir, nil)

	require.Len(t, list, 2)
	assert.Equal(t, uint64(2), list[0].SegmentID)
	assert.Equal(t, domain.RolePrimary, list[0].Role)
	assert.Equal(t, domain.RoleSecondary, list[1].Role)
}

func TestReplicaLocator_DeterministicForSeed(t *testing.T) {
	backups := newFakeBackups()
	var nodes []cluster.Node
	for i := uint64(1); i <= 4; i++ {
		addr := "backup-" + string(rune('a'+i-1))
		nodes = append(nodes, backupNode(i, addr))
		backups.replicas[addr] = []domain.ReplicaInfo{closed(10), closed(11), closed(12)}
	}
	dir := cluster.NewDirectory(nodes)

	first, _ := newReplicaLocator(backups, NewRand(7), time.Second).locate(context.Background(), crashedNode, dir, nil)
	second, _ := newReplicaLocator(backups, NewRand(7), time.Second).locate(context.Background(), crashedNode, dir, nil)

	assert.Equal(t, first, second)
}

// Every generated scenario must keep primaries first and list every replica a backup holds.
func TestReplicaLocator_OrderingAndCoverage(t *testing.T) {
	gen := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		backups := newFakeBackups()
		var nodes []cluster.Node
		held := make(map[string]map[uint64]bool)

		backupCount := 1 + gen.Intn(6)
		for b := 0; b < backupCount; b++ {
			addr := string(rune('a' + b))
			nodes = append(nodes, backupNode(uint64(b+1), addr))
			held[addr] = make(map[uint64]bool)
			for seg := uint64(1); seg <= 8; seg++ {
				if gen.Intn(2) == 0 {
					continue
				}
				info := closed(seg)
				if gen.Intn(3) == 0 {
					info.Role = domain.RolePrimary
				}
				if seg == 8 {
					info.Open = true
					info.Digest = logdigest.Encode([]uint64{1, 2, 3, 4, 5, 6, 7, 8})
				}
				backups.replicas[addr] = append(backups.replicas[addr], info)
				held[addr][seg] = true
			}
		}

		list, _ := newReplicaLocator(backups, NewRand(int64(round+1)), time.Second).
			locate(context.Background(), crashedNode, cluster.NewDirectory(nodes), nil)

		require.True(t, list.Ordered(), "round %d: %v", round, list)

		seen := make(map[string]map[uint64]bool)
		for _, r := range list {
			if seen[r.Addr] == nil {
				seen[r.Addr] = make(map[uint64]bool)
			}
			seen[r.Addr][r.SegmentID] = true
		}
		for addr, segs := range held {
			for seg := range segs {
				assert.True(t, seen[addr][seg], "round %d: segment %d on %s missing", round, seg, addr)
			}
		}
	}
}
