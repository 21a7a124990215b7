package backup_client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/rpc/backupv1"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
)

type Config struct {
	FailureThreshold int
	OpenTimeout      time.Duration
	// DefaultTimeout applies to calls whose context has no deadline.
	DefaultTimeout time.Duration
}

// ClientAdapter implements port.BackupClient over gRPC with one circuit
// breaker per backup address.
type ClientAdapter struct {
	cfg      Config
	dial     func(addr string) (grpc.ClientConnInterface, io.Closer, error)
	mu       sync.RWMutex
	conns    map[string]grpc.ClientConnInterface
	closers  map[string]io.Closer
	breakers map[string]*resilience.CircuitBreaker
}

// NewClientAdapter creates a new backup client.
func NewClientAdapter(cfg Config) *ClientAdapter {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 5 * time.Second
	}
	return &ClientAdapter{
		cfg:      cfg,
		dial:     dialInsecure,
		conns:    make(map[string]grpc.ClientConnInterface),
		closers:  make(map[string]io.Closer),
		breakers: make(map[string]*resilience.CircuitBreaker),
	}
}

// Ensure ClientAdapter implements port.BackupClient
var _ port.BackupClient = (*ClientAdapter)(nil)

func dialInsecure(addr string) (grpc.ClientConnInterface, io.Closer, error) {
	// For now, use insecure credentials.
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn, nil
}

func (c *ClientAdapter) getConn(addr string) (grpc.ClientConnInterface, error) {
	c.mu.RLock()
	conn, ok := c.conns[addr]
	c.mu.RUnlock()
	if ok {
		return conn, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double check
	if conn, ok := c.conns[addr]; ok {
		return conn, nil
	}

	newConn, closer, err := c.dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c.conns[addr] = newConn
	c.closers[addr] = closer
	return newConn, nil
}

// ListReplicas asks the backup at addr which replicas of crashed's log it holds.
func (c *ClientAdapter) ListReplicas(ctx context.Context, addr string, crashed cluster.NodeIdentity, tablets []shard.Tablet) ([]domain.ReplicaInfo, error) {
	callCtx, cancel := c.withDefaultTimeout(ctx)
	defer cancel()

	var replicas []domain.ReplicaInfo
	err := c.withBreaker(callCtx, addr, "ListReplicas", func(execCtx context.Context, client backupv1.BackupServiceClient) error {
		resp, err := client.ListReplicas(execCtx, &backupv1.ListReplicasRequest{Master: crashed, Tablets: tablets})
		if err != nil {
			return err
		}

		replicas = make([]domain.ReplicaInfo, 0, len(resp.Replicas))
		for _, r := range resp.Replicas {
			role := domain.RoleSecondary
			if r.Role == backupv1.RolePrimary {
				role = domain.RolePrimary
			}
			replicas = append(replicas, domain.ReplicaInfo{
				SegmentID: r.SegmentID,
				Role:      role,
				Open:      r.Open,
				Length:    r.Length,
				Digest:    r.Digest,
			})
		}
		return nil
	})
	return replicas, err
}

// GetRecoveryData fetches the records of one segment that fall in one partition.
func (c *ClientAdapter) GetRecoveryData(ctx context.Context, addr string, crashed cluster.NodeIdentity, segmentID, partitionID uint64) ([]shard.Record, error) {
	callCtx, cancel := c.withDefaultTimeout(ctx)
	defer cancel()

	var records []shard.Record
	err := c.withBreaker(callCtx, addr, "GetRecoveryData", func(execCtx context.Context, client backupv1.BackupServiceClient) error {
		resp, err := client.GetRecoveryData(execCtx, &backupv1.GetRecoveryDataRequest{
			Master:      crashed,
			SegmentID:   segmentID,
			PartitionID: partitionID,
		})
		if err != nil {
			return err
		}
		records = resp.Records
		return nil
	})
	return records, err
}

func (c *ClientAdapter) withBreaker(ctx context.Context, addr, op string, fn func(context.Context, backupv1.BackupServiceClient) error) error {
	breaker := c.getBreaker(addr)
	err := breaker.Execute(ctx, func(execCtx context.Context) error {
		conn, err := c.getConn(addr)
		if err != nil {
			return normalizeRPCErr(execCtx, err)
		}
		client := backupv1.NewBackupServiceClient(conn)
		return normalizeRPCErr(execCtx, fn(execCtx, client))
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		logger.Warnw("Backup RPC short-circuited", "op", op, "target", addr, "error", err.Error())
		return err
	}
	if !isPeerFailure(err) {
		return err
	}
	logger.Warnw("Backup RPC failed", "op", op, "target", addr, "error", err.Error())
	c.dropConn(addr)
	return err
}

func (c *ClientAdapter) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.DefaultTimeout)
}

func (c *ClientAdapter) getBreaker(addr string) *resilience.CircuitBreaker {
	c.mu.RLock()
	cb, ok := c.breakers[addr]
	c.mu.RUnlock()
	if ok {
		return cb
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok = c.breakers[addr]; ok {
		return cb
	}
	cb = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:              addr,
		FailureThreshold:  c.cfg.FailureThreshold,
		SuccessThreshold:  2,
		OpenTimeout:       c.cfg.OpenTimeout,
		HalfOpenMaxFlight: 1,
		IsFailure:         isPeerFailure,
	})
	c.breakers[addr] = cb
	return cb
}

func (c *ClientAdapter) dropConn(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if closer, ok := c.closers[addr]; ok && closer != nil {
		_ = closer.Close()
	}
	delete(c.conns, addr)
	delete(c.closers, addr)
}

// Close closes all connections.
func (c *ClientAdapter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for addr, closer := range c.closers {
		if closer != nil {
			_ = closer.Close()
		}
		delete(c.closers, addr)
		delete(c.conns, addr)
	}
	return nil
}

// isPeerFailure reports whether err says the backup itself is unhealthy.
func isPeerFailure(err error) bool {
	return err != nil &&
		!errors.Is(err, domain.ErrNotReady) &&
		!errors.Is(err, domain.ErrReplicaNotFound) &&
		!errors.Is(err, context.Canceled)
}

func normalizeRPCErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
		return context.Canceled
	}
	if errors.Is(err, io.EOF) && ctx != nil && errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	switch st, _ := status.FromError(err); st.Code() {
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", domain.ErrNotReady, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", domain.ErrReplicaNotFound, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", context.DeadlineExceeded, st.Message())
	}
	return err
}
