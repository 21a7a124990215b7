package backupv1

import (
	"context"
	"net"
	"testing"

	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fakeServer struct {
	UnimplementedBackupServiceServer
	lastList *ListReplicasRequest
}

func (f *fakeServer) ListReplicas(_ context.Context, req *ListReplicasRequest) (*ListReplicasResponse, error) {
	f.lastList = req
	return &ListReplicasResponse{Replicas: []ReplicaInfo{
		{SegmentID: 89, Role: RolePrimary, Open: true, Length: 64, Digest: []byte{0x0a, 0x02, 0x58, 0x59}},
		{SegmentID: 88, Role: RoleSecondary, Length: 128},
	}}, nil
}

func (f *fakeServer) GetRecoveryData(_ context.Context, req *GetRecoveryDataRequest) (*GetRecoveryDataResponse, error) {
	if req.SegmentID == 88 {
		return nil, status.Error(codes.FailedPrecondition, "not ready")
	}
	return &GetRecoveryDataResponse{Records: []shard.Record{{TableID: 1, Key: []byte("k"), Value: []byte("v")}}}, nil
}

func dial(t *testing.T, srv BackupServiceServer) BackupServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterBackupServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewBackupServiceClient(conn)
}

func TestBackupService_RoundTrip(t *testing.T) {
	srv := &fakeServer{}
	client := dial(t, srv)
	master := cluster.NodeIdentity{ID: 99}

	resp, err := client.ListReplicas(context.Background(), &ListReplicasRequest{
		Master:  master,
		Tablets: []shard.Tablet{{TableID: 1, EndKeyHash: ^uint64(0), PartitionID: 0}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Replicas, 2)
	assert.Equal(t, uint64(89), resp.Replicas[0].SegmentID)
	assert.Equal(t, []byte{0x0a, 0x02, 0x58, 0x59}, resp.Replicas[0].Digest)
	assert.Equal(t, master, srv.lastList.Master)
	assert.Equal(t, ^uint64(0), srv.lastList.Tablets[0].EndKeyHash)

	data, err := client.GetRecoveryData(context.Background(), &GetRecoveryDataRequest{Master: master, SegmentID: 89})
	require.NoError(t, err)
	require.Len(t, data.Records, 1)
	assert.Equal(t, []byte("k"), data.Records[0].Key)
}

func TestBackupService_StatusPropagates(t *testing.T) {
	client := dial(t, &fakeServer{})

	_, err := client.GetRecoveryData(context.Background(), &GetRecoveryDataRequest{SegmentID: 88})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.WriteReplica(context.Background(), &WriteReplicaRequest{SegmentID: 1})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
