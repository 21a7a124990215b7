package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/service/mocks"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/logdigest"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func scenarioDirectory(masters int) cluster.Directory {
	nodes := []cluster.Node{backupNode(1, "backup1"), backupNode(2, "backup2")}
	for i := 0; i < masters; i++ {
		nodes = append(nodes, masterNode(uint64(10+i), "master"+string(rune('1'+i))))
	}
	return cluster.NewDirectory(nodes)
}

func expectScenarioListing(client *mocks.MockBackupClient) {
	client.EXPECT().ListReplicas(gomock.Any(), "backup1", crashedNode, gomock.Any()).
		Return([]domain.ReplicaInfo{closed(88), openHead(89, 4096, 88, 89)}, nil)
	client.EXPECT().ListReplicas(gomock.Any(), "backup2", crashedNode, gomock.Any()).
		Return([]domain.ReplicaInfo{closed(88)}, nil)
}

func TestRecovery_StartRetrievesEveryPartitionAndSegment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockBackupClient(ctrl)
	expectScenarioListing(client)

	record := func(key string) []shard.Record { return []shard.Record{{TableID: 1, Key: []byte(key)}} }
	gomock.InOrder(
		client.EXPECT().GetRecoveryData(gomock.Any(), "backup1", crashedNode, uint64(89), uint64(0)).Return(record("89/0"), nil),
		client.EXPECT().GetRecoveryData(gomock.Any(), "backup2", crashedNode, uint64(88), uint64(0)).Return(record("88/0"), nil),
		client.EXPECT().GetRecoveryData(gomock.Any(), "backup1", crashedNode, uint64(89), uint64(1)).Return(record("89/1"), nil),
		client.EXPECT().GetRecoveryData(gomock.Any(), "backup2", crashedNode, uint64(88), uint64(1)).Return(nil, nil),
	)

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0, 0, 1), scenarioDirectory(2), client, testOptions())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLogVerified, r.Phase())

	list := r.ReplicaList()
	require.Len(t, list, 3)
	assert.Equal(t, "backup1", list[0].Addr)
	assert.Equal(t, uint64(89), list[0].SegmentID)

	require.NoError(t, r.Start(context.Background()))

	assert.Equal(t, domain.PhaseCompleted, r.Phase())
	assert.Equal(t, 3, r.TabletsUnderRecovery())
	assert.NoError(t, r.Err())

	assignments := r.Assignments()
	require.Len(t, assignments, 2)
	assert.Equal(t, "master1", assignments[0].Master.Addr)
	assert.Equal(t, "master2", assignments[1].Master.Addr)

	assert.Len(t, r.PartitionRecords(0), 2)
	assert.Len(t, r.PartitionRecords(1), 1)

	st := r.Status()
	assert.Equal(t, domain.PhaseCompleted, st.Phase)
	assert.Equal(t, map[uint64]int{0: 2, 1: 1}, st.PartitionRecords)
	assert.NotNil(t, st.FinishedAt)
	require.NotNil(t, st.Head)
	assert.Equal(t, uint64(89), st.Head.SegmentID)
}

func TestRecovery_StartNotEnoughMasters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockBackupClient(ctrl)
	expectScenarioListing(client)
	client.EXPECT().GetRecoveryData(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0, 1, 2), scenarioDirectory(2), client, testOptions())
	require.NoError(t, err)

	err = r.Start(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsFatal(err))
	assert.True(t, errors.Is(err, domain.ErrInsufficientMasters))
	assert.Equal(t, domain.PhaseAborted, r.Phase())
	assert.Empty(t, r.Assignments())
	assert.True(t, r.Status().Fatal)
}

func TestRecovery_NoLogHead(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{closed(88)}

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoLogHead))
	require.NotNil(t, r)
	assert.Equal(t, domain.PhaseAborted, r.Phase())
	_, ok := r.Head()
	assert.False(t, ok)

	err = r.Start(context.Background())
	assert.True(t, errors.Is(err, domain.ErrInvalidPhase))
	assert.Empty(t, backups.dataCalls())
}

func TestRecovery_CanceledLocateIsNotFatal(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(89, 64, 88, 89), closed(88)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := NewRecovery(ctx, crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsFatal(err))
	assert.False(t, errors.Is(err, domain.ErrNoLogHead))
	require.NotNil(t, r)
	assert.Equal(t, domain.PhaseAborted, r.Phase())
	assert.False(t, r.Status().Fatal)
	assert.Empty(t, backups.dataCalls())
}

func TestRecovery_MissingSegmentPolicy(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(89, 10, 87, 88, 89)}
	backups.replicas["backup2"] = []domain.ReplicaInfo{closed(88)}

	opts := testOptions()
	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, opts)
	require.NoError(t, err)
	assert.Equal(t, []uint64{87}, r.MissingSegments())

	opts.MissingSegmentPolicy = domain.MissingSegmentFatal
	r, err = NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIncompleteLog))
	assert.Equal(t, domain.PhaseAborted, r.Phase())
	head, ok := r.Head()
	assert.True(t, ok)
	assert.Equal(t, uint64(89), head.SegmentID)
}

func TestRecovery_RetriesNotReady(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(7, 10, 7)}
	backups.data = func(_ context.Context, _ dataCall, n int) ([]shard.Record, error) {
		if n < 3 {
			return nil, domain.ErrNotReady
		}
		return []shard.Record{{TableID: 1, Key: []byte("k")}}, nil
	}

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))

	assert.Equal(t, domain.PhaseCompleted, r.Phase())
	assert.Len(t, backups.dataCalls(), 3)
	assert.Len(t, r.PartitionRecords(0), 1)
}

func TestRecovery_TimeoutFailsOverToNextReplica(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(89, 10, 88, 89), closed(88)}
	backups.replicas["backup2"] = []domain.ReplicaInfo{closed(88)}
	backups.data = func(_ context.Context, call dataCall, _ int) ([]shard.Record, error) {
		if call.SegmentID == 88 && call.Addr == "backup2" {
			return nil, domain.ErrNotReady
		}
		return []shard.Record{{TableID: 1, Key: []byte(call.Addr)}}, nil
	}

	opts := testOptions()
	opts.Retry.Timeout = 30 * time.Millisecond

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, opts)
	require.NoError(t, err)
	// fixedRand puts backup2 ahead of backup1 for segment 88.
	require.Equal(t, "backup2", r.ReplicaList().ReplicasFor(88)[0].Addr)

	require.NoError(t, r.Start(context.Background()))

	assert.Equal(t, domain.PhaseCompleted, r.Phase())
	calls := backups.dataCalls()
	last := calls[len(calls)-1]
	assert.Equal(t, dataCall{Addr: "backup1", SegmentID: 88, PartitionID: 0}, last)
}

func TestRecovery_ExhaustedReplicasAbort(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(89, 10, 88, 89), closed(88)}
	backups.replicas["backup2"] = []domain.ReplicaInfo{closed(88)}
	refused := errors.New("connection refused")
	backups.data = func(_ context.Context, call dataCall, _ int) ([]shard.Record, error) {
		if call.SegmentID == 88 {
			return nil, refused
		}
		return nil, nil
	}

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())
	require.NoError(t, err)

	err = r.Start(context.Background())

	require.Error(t, err)
	var retrievalErr *domain.RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.Equal(t, uint64(88), retrievalErr.SegmentID)
	assert.Equal(t, 2, retrievalErr.Attempts)
	assert.True(t, errors.Is(err, refused))
	assert.False(t, domain.IsFatal(err))
	assert.Equal(t, domain.PhaseAborted, r.Phase())
	assert.False(t, r.Status().Fatal)
}

func TestRecovery_Abandon(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(5, 10, 5)}
	called := make(chan struct{}, 1)
	backups.data = func(ctx context.Context, _ dataCall, _ int) ([]shard.Record, error) {
		select {
		case called <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("retrieval never started")
	}
	r.Abandon()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Abandon")
	}
	assert.Equal(t, domain.PhaseAborted, r.Phase())

	// Abandon after completion is a no-op.
	r.Abandon()
	assert.Equal(t, domain.PhaseAborted, r.Phase())
}

func TestRecovery_StartTwice(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{openHead(5, 10, 5)}

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())
	require.NoError(t, err)
	require.NoError(t, r.Start(context.Background()))

	err = r.Start(context.Background())
	assert.True(t, errors.Is(err, domain.ErrInvalidPhase))
	assert.Len(t, backups.dataCalls(), 1)
}

func TestRetrievalPlan(t *testing.T) {
	list := domain.ReplicaList{
		{SegmentID: 89, Addr: "a", Role: domain.RolePrimary},
		{SegmentID: 88, Addr: "b", Role: domain.RoleSecondary},
		{SegmentID: 88, Addr: "a", Role: domain.RoleSecondary},
	}
	assignments := []domain.PartitionAssignment{{PartitionID: 0}, {PartitionID: 1}}

	plan := retrievalPlan(assignments, list)

	require.Len(t, plan, 4)
	got := make([][2]uint64, len(plan))
	for i, task := range plan {
		got[i] = [2]uint64{task.partitionID, task.segmentID}
	}
	assert.Equal(t, [][2]uint64{{0, 89}, {0, 88}, {1, 89}, {1, 88}}, got)
	assert.Equal(t, "b", plan[1].replicas[0].Addr)
	assert.Len(t, plan[1].replicas, 2)
}

func TestRecovery_DigestDecodedFromHead(t *testing.T) {
	backups := newFakeBackups()
	backups.replicas["backup1"] = []domain.ReplicaInfo{
		closed(1),
		{SegmentID: 2, Role: domain.RoleSecondary, Open: true, Length: 5, Digest: logdigest.Encode([]uint64{1, 2})},
	}

	r, err := NewRecovery(context.Background(), crashedNode, tablets(0), scenarioDirectory(1), backups, testOptions())
	require.NoError(t, err)

	head, ok := r.Head()
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2}, head.Segments)
	assert.Len(t, r.DigestCandidates(), 1)
}
