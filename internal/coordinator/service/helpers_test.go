package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/logdigest"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

var crashedNode = cluster.NodeIdentity{ID: 99}

// fixedRand always picks the same index, which reverses a two element group.
type fixedRand struct{ v int }

func (f fixedRand) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func backupNode(id uint64, addr string) cluster.Node {
	return cluster.Node{Identity: cluster.NodeIdentity{ID: id}, Addr: addr, Capabilities: cluster.CapabilityBackup}
}

func masterNode(id uint64, addr string) cluster.Node {
	return cluster.Node{Identity: cluster.NodeIdentity{ID: id}, Addr: addr, Capabilities: cluster.CapabilityMaster}
}

func tablets(partitions ...uint64) []shard.Tablet {
	out := make([]shard.Tablet, len(partitions))
	for i, pid := range partitions {
		out[i] = shard.Tablet{TableID: uint64(i + 1), EndKeyHash: ^uint64(0), PartitionID: pid, State: shard.TabletRecovering}
	}
	return out
}

func closed(seg uint64) domain.ReplicaInfo {
	return domain.ReplicaInfo{SegmentID: seg, Role: domain.RoleSecondary, Length: 1024}
}

func openHead(seg uint64, length uint64, declared ...uint64) domain.ReplicaInfo {
	return domain.ReplicaInfo{SegmentID: seg, Role: domain.RoleSecondary, Open: true, Length: length, Digest: logdigest.Encode(declared)}
}

func testOptions() RecoveryOptions {
	return RecoveryOptions{
		ID:            1,
		Rand:          fixedRand{},
		LocateTimeout: time.Second,
		RPCTimeout:    time.Second,
		Retry: resilience.RetryPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			Timeout:         time.Second,
		},
		MaxConcurrency: 1,
	}
}

type dataCall struct {
	Addr        string
	SegmentID   uint64
	PartitionID uint64
}

// fakeBackups serves replica listings from a map and recovery data from a
// per-test function.
type fakeBackups struct {
	mu       sync.Mutex
	replicas map[string][]domain.ReplicaInfo
	listErr  map[string]error
	data     func(ctx context.Context, call dataCall, n int) ([]shard.Record, error)
	// onList runs before every replica listing.
	onList   func()
	calls    []dataCall
}

func newFakeBackups() *fakeBackups {
	return &fakeBackups{
		replicas: make(map[string][]domain.ReplicaInfo),
		listErr:  make(map[string]error),
	}
}

func (f *fakeBackups) ListReplicas(ctx context.Context, addr string, crashed cluster.NodeIdentity, _ []shard.Tablet) ([]domain.ReplicaInfo, error) {
	if f.onList != nil {
		f.onList()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if crashed != crashedNode {
		return nil, fmt.Errorf("unexpected crashed node %s", crashed)
	}
	if err := f.listErr[addr]; err != nil {
		return nil, err
	}
	return append([]domain.ReplicaInfo(nil), f.replicas[addr]...), nil
}

func (f *fakeBackups) GetRecoveryData(ctx context.Context, addr string, _ cluster.NodeIdentity, segmentID, partitionID uint64) ([]shard.Record, error) {
	call := dataCall{Addr: addr, SegmentID: segmentID, PartitionID: partitionID}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	fn := f.data
	f.mu.Unlock()

	if fn == nil {
		return []shard.Record{{TableID: 1, Key: []byte(fmt.Sprintf("%s/%d/%d", addr, segmentID, partitionID))}}, nil
	}
	return fn(ctx, call, n)
}

func (f *fakeBackups) dataCalls() []dataCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dataCall(nil), f.calls...)
}
