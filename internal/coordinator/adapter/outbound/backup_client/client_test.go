package backup_client

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/rpc/backupv1"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

func TestNormalizeRPCErr(t *testing.T) {
	t.Run("grpc canceled to context canceled", func(t *testing.T) {
		err := normalizeRPCErr(context.Background(), status.Error(codes.Canceled, "canceled"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("eof with canceled context to context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := normalizeRPCErr(ctx, io.EOF)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("failed precondition to not ready", func(t *testing.T) {
		err := normalizeRPCErr(context.Background(), status.Error(codes.FailedPrecondition, "partitioning"))
		assert.ErrorIs(t, err, domain.ErrNotReady)
		assert.False(t, isPeerFailure(err))
	})

	t.Run("not found to replica not found", func(t *testing.T) {
		err := normalizeRPCErr(context.Background(), status.Error(codes.NotFound, "no segment"))
		assert.ErrorIs(t, err, domain.ErrReplicaNotFound)
		assert.False(t, isPeerFailure(err))
	})

	t.Run("deadline exceeded to context deadline", func(t *testing.T) {
		err := normalizeRPCErr(context.Background(), status.Error(codes.DeadlineExceeded, "slow"))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, isPeerFailure(err))
	})

	t.Run("unavailable stays failure", func(t *testing.T) {
		input := status.Error(codes.Unavailable, "unavailable")
		err := normalizeRPCErr(context.Background(), input)
		if status.Code(err) != codes.Unavailable {
			t.Fatalf("expected unavailable, got %v", err)
		}
		assert.True(t, isPeerFailure(err))
	})
}

type fakeBackup struct {
	backupv1.UnimplementedBackupServiceServer
	listErr error
	dataErr error
	calls   int
}

func (f *fakeBackup) ListReplicas(_ context.Context, req *backupv1.ListReplicasRequest) (*backupv1.ListReplicasResponse, error) {
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &backupv1.ListReplicasResponse{Replicas: []backupv1.ReplicaInfo{
		{SegmentID: 89, Role: backupv1.RolePrimary, Open: true, Length: 64, Digest: []byte{1}},
		{SegmentID: 88, Role: backupv1.RoleSecondary, Length: 128},
	}}, nil
}

func (f *fakeBackup) GetRecoveryData(_ context.Context, req *backupv1.GetRecoveryDataRequest) (*backupv1.GetRecoveryDataResponse, error) {
	f.calls++
	if f.dataErr != nil {
		return nil, f.dataErr
	}
	return &backupv1.GetRecoveryDataResponse{Records: []shard.Record{
		{TableID: 1, Key: []byte("k"), Value: []byte("v")},
	}}, nil
}

func newTestAdapter(t *testing.T, srv backupv1.BackupServiceServer) *ClientAdapter {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	backupv1.RegisterBackupServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c := NewClientAdapter(Config{FailureThreshold: 2, OpenTimeout: time.Minute, DefaultTimeout: time.Second})
	c.dial = func(string) (grpc.ClientConnInterface, io.Closer, error) {
		conn, err := grpc.NewClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, nil, err
		}
		return conn, conn, nil
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientAdapter_ListReplicas(t *testing.T) {
	c := newTestAdapter(t, &fakeBackup{})

	replicas, err := c.ListReplicas(context.Background(), "backup-1", cluster.NodeIdentity{ID: 99}, nil)
	require.NoError(t, err)
	require.Len(t, replicas, 2)
	assert.Equal(t, domain.RolePrimary, replicas[0].Role)
	assert.True(t, replicas[0].Open)
	assert.Equal(t, []byte{1}, replicas[0].Digest)
	assert.Equal(t, domain.RoleSecondary, replicas[1].Role)
	assert.Equal(t, uint64(128), replicas[1].Length)
}

func TestClientAdapter_GetRecoveryData(t *testing.T) {
	c := newTestAdapter(t, &fakeBackup{})

	records, err := c.GetRecoveryData(context.Background(), "backup-1", cluster.NodeIdentity{ID: 99}, 88, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte("v"), records[0].Value)
}

func TestClientAdapter_NotReadyKeepsBreakerClosed(t *testing.T) {
	srv := &fakeBackup{dataErr: status.Error(codes.FailedPrecondition, "partitioning")}
	c := newTestAdapter(t, srv)

	for i := 0; i < 5; i++ {
		_, err := c.GetRecoveryData(context.Background(), "backup-1", cluster.NodeIdentity{ID: 99}, 88, 0)
		require.ErrorIs(t, err, domain.ErrNotReady)
	}
	assert.Equal(t, 5, srv.calls)
	assert.Equal(t, resilience.CircuitClosed, c.getBreaker("backup-1").State())
}

func TestClientAdapter_FailuresOpenBreaker(t *testing.T) {
	srv := &fakeBackup{listErr: status.Error(codes.Internal, "disk gone")}
	c := newTestAdapter(t, srv)

	for i := 0; i < 2; i++ {
		_, err := c.ListReplicas(context.Background(), "backup-1", cluster.NodeIdentity{ID: 99}, nil)
		require.Error(t, err)
		assert.Equal(t, codes.Internal, status.Code(err))
	}

	_, err := c.ListReplicas(context.Background(), "backup-1", cluster.NodeIdentity{ID: 99}, nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, srv.calls)
}
