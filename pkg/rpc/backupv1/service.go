package backupv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "backup.v1.BackupService"

	WriteReplicaFullMethod    = "/" + ServiceName + "/WriteReplica"
	ListReplicasFullMethod    = "/" + ServiceName + "/ListReplicas"
	GetRecoveryDataFullMethod = "/" + ServiceName + "/GetRecoveryData"
)

// BackupServiceClient is the client API for the backup service.
type BackupServiceClient interface {
	WriteReplica(ctx context.Context, in *WriteReplicaRequest, opts ...grpc.CallOption) (*WriteReplicaResponse, error)
	ListReplicas(ctx context.Context, in *ListReplicasRequest, opts ...grpc.CallOption) (*ListReplicasResponse, error)
	GetRecoveryData(ctx context.Context, in *GetRecoveryDataRequest, opts ...grpc.CallOption) (*GetRecoveryDataResponse, error)
}

type backupServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBackupServiceClient(cc grpc.ClientConnInterface) BackupServiceClient {
	return &backupServiceClient{cc: cc}
}

func (c *backupServiceClient) WriteReplica(ctx context.Context, in *WriteReplicaRequest, opts ...grpc.CallOption) (*WriteReplicaResponse, error) {
	out := new(WriteReplicaResponse)
	if err := c.cc.Invoke(ctx, WriteReplicaFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backupServiceClient) ListReplicas(ctx context.Context, in *ListReplicasRequest, opts ...grpc.CallOption) (*ListReplicasResponse, error) {
	out := new(ListReplicasResponse)
	if err := c.cc.Invoke(ctx, ListReplicasFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *backupServiceClient) GetRecoveryData(ctx context.Context, in *GetRecoveryDataRequest, opts ...grpc.CallOption) (*GetRecoveryDataResponse, error) {
	out := new(GetRecoveryDataResponse)
	if err := c.cc.Invoke(ctx, GetRecoveryDataFullMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// BackupServiceServer is the server API for the backup service.
type BackupServiceServer interface {
	WriteReplica(context.Context, *WriteReplicaRequest) (*WriteReplicaResponse, error)
	ListReplicas(context.Context, *ListReplicasRequest) (*ListReplicasResponse, error)
	GetRecoveryData(context.Context, *GetRecoveryDataRequest) (*GetRecoveryDataResponse, error)
}

// UnimplementedBackupServiceServer can be embedded to have forward compatible implementations.
type UnimplementedBackupServiceServer struct{}

func (UnimplementedBackupServiceServer) WriteReplica(context.Context, *WriteReplicaRequest) (*WriteReplicaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WriteReplica not implemented")
}

func (UnimplementedBackupServiceServer) ListReplicas(context.Context, *ListReplicasRequest) (*ListReplicasResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListReplicas not implemented")
}

func (UnimplementedBackupServiceServer) GetRecoveryData(context.Context, *GetRecoveryDataRequest) (*GetRecoveryDataResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRecoveryData not implemented")
}

func RegisterBackupServiceServer(s grpc.ServiceRegistrar, srv BackupServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func writeReplicaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(WriteReplicaRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackupServiceServer).WriteReplica(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WriteReplicaFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BackupServiceServer).WriteReplica(ctx, req.(*WriteReplicaRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listReplicasHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListReplicasRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackupServiceServer).ListReplicas(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListReplicasFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BackupServiceServer).ListReplicas(ctx, req.(*ListReplicasRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getRecoveryDataHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetRecoveryDataRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BackupServiceServer).GetRecoveryData(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetRecoveryDataFullMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BackupServiceServer).GetRecoveryData(ctx, req.(*GetRecoveryDataRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the grpc.ServiceDesc for the backup service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackupServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "WriteReplica", Handler: writeReplicaHandler},
		{MethodName: "ListReplicas", Handler: listReplicasHandler},
		{MethodName: "GetRecoveryData", Handler: getRecoveryDataHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "backup/v1/backup.json",
}
