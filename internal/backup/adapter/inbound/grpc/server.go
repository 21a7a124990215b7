package grpc_handler

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-ramstore/internal/backup/domain"
	"github.com/anthanhphan/go-ramstore/internal/backup/port"
	"github.com/anthanhphan/go-ramstore/pkg/rpc/backupv1"
	"github.com/anthanhphan/gosdk/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server implements the gRPC BackupService.
type Server struct {
	backupv1.UnimplementedBackupServiceServer
	service port.BackupService
}

// NewServer creates a new gRPC server.
func NewServer(service port.BackupService) *Server {
	return &Server{
		service: service,
	}
}

// WriteReplica stores a replica sent by a master.
func (s *Server) WriteReplica(ctx context.Context, req *backupv1.WriteReplicaRequest) (*backupv1.WriteReplicaResponse, error) {
	length, err := s.service.WriteReplica(ctx, domain.Replica{
		Master:    req.Master,
		SegmentID: req.SegmentID,
		Role:      domain.Role(req.Role),
		Open:      req.Open,
		Records:   req.Records,
		Digest:    req.Digest,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &backupv1.WriteReplicaResponse{Length: length}, nil
}

// ListReplicas reports the replicas held for the requested master.
func (s *Server) ListReplicas(ctx context.Context, req *backupv1.ListReplicasRequest) (*backupv1.ListReplicasResponse, error) {
	replicas, err := s.service.ListReplicas(ctx, req.Master, req.Tablets)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &backupv1.ListReplicasResponse{Replicas: make([]backupv1.ReplicaInfo, 0, len(replicas))}
	for _, r := range replicas {
		resp.Replicas = append(resp.Replicas, backupv1.ReplicaInfo{
			SegmentID: r.SegmentID,
			Role:      string(r.Role),
			Open:      r.Open,
			Length:    r.Length(),
			Digest:    r.Digest,
		})
	}
	return resp, nil
}

// GetRecoveryData returns one partition of a replica.
func (s *Server) GetRecoveryData(ctx context.Context, req *backupv1.GetRecoveryDataRequest) (*backupv1.GetRecoveryDataResponse, error) {
	key := domain.ReplicaKey{Master: req.Master, SegmentID: req.SegmentID}
	records, err := s.service.GetRecoveryData(ctx, key, req.PartitionID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &backupv1.GetRecoveryDataResponse{Records: records}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrReplicaNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidRole):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.Errorw("Backup request failed", "error", err.Error())
		return status.Error(codes.Internal, err.Error())
	}
}
