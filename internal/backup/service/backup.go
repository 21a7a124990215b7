package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/anthanhphan/go-ramstore/internal/backup/domain"
	"github.com/anthanhphan/go-ramstore/internal/backup/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
)

// partitionState tracks the split of one replica by a set of tablets.
type partitionState struct {
	tablets     []shard.Tablet
	done        bool
	byPartition map[uint64][]shard.Record
}

// BackupServiceImpl stores replicas and partitions them for recovery.
type BackupServiceImpl struct {
	repo port.ReplicaRepository
	pool *resilience.WorkerPool

	// ctx bounds queued partitioning; it ends only on Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	states map[domain.ReplicaKey]*partitionState
	// tablets is the last tablet set each master's replicas were listed with.
	tablets map[cluster.NodeIdentity][]shard.Tablet
}

// Ensure BackupServiceImpl implements port.BackupService.
var _ port.BackupService = (*BackupServiceImpl)(nil)

// NewBackupService creates the service. Partitioning runs on pool.
func NewBackupService(repo port.ReplicaRepository, pool *resilience.WorkerPool) *BackupServiceImpl {
	ctx, cancel := context.WithCancel(context.Background())
	return &BackupServiceImpl{
		repo:    repo,
		pool:    pool,
		ctx:     ctx,
		cancel:  cancel,
		states:  make(map[domain.ReplicaKey]*partitionState),
		tablets: make(map[cluster.NodeIdentity][]shard.Tablet),
	}
}

// WriteReplica stores r and drops any partitioning done for an older copy.
func (s *BackupServiceImpl) WriteReplica(ctx context.Context, r domain.Replica) (uint64, error) {
	if !r.Role.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidRole, r.Role)
	}
	if err := s.repo.Put(ctx, r); err != nil {
		return 0, err
	}

	s.mu.Lock()
	delete(s.states, r.Key())
	s.mu.Unlock()

	return r.Length(), nil
}

// ListReplicas reports master's replicas and queues partitioning of each one by
// tablets. It does not wait for the queue.
func (s *BackupServiceImpl) ListReplicas(ctx context.Context, master cluster.NodeIdentity, tablets []shard.Tablet) ([]domain.Replica, error) {
	replicas, err := s.repo.List(ctx, master)
	if err != nil {
		return nil, fmt.Errorf("list replicas of %s: %w", master, err)
	}

	if len(tablets) > 0 {
		s.mu.Lock()
		s.tablets[master] = slices.Clone(tablets)
		s.mu.Unlock()
		for _, r := range replicas {
			s.schedulePartition(r, tablets)
		}
	}

	logger.Infow("Listed replicas for recovery", "master", master.String(), "replicas", len(replicas), "tablets", len(tablets))
	return replicas, nil
}

func (s *BackupServiceImpl) schedulePartition(r domain.Replica, tablets []shard.Tablet) {
	if s.ctx.Err() != nil {
		return
	}
	key := r.Key()

	s.mu.Lock()
	if st, ok := s.states[key]; ok && slices.Equal(st.tablets, tablets) {
		s.mu.Unlock()
		return
	}
	st := &partitionState{tablets: slices.Clone(tablets)}
	s.states[key] = st
	s.mu.Unlock()

	job := func() {
		parts := shard.NewTabletMap(st.tablets).Split(r.Records)

		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer write or tablet set replaced this state.
		if s.states[key] != st {
			return
		}
		st.byPartition = parts
		st.done = true
		logger.Debugw("Replica partitioned", "replica", key.String(), "partitions", len(parts))
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.pool.Submit(s.ctx, job); err != nil {
			logger.Warnw("Failed to schedule replica partitioning", "replica", key.String(), "error", err.Error())
			s.mu.Lock()
			if s.states[key] == st {
				delete(s.states, key)
			}
			s.mu.Unlock()
		}
	}()
}

// GetRecoveryData returns the records of the replica that fall in partitionID.
// A replica with no partitioning in flight is queued again using the last
// tablet set its master was listed with.
func (s *BackupServiceImpl) GetRecoveryData(ctx context.Context, key domain.ReplicaKey, partitionID uint64) ([]shard.Record, error) {
	r, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	st, ok := s.states[key]
	if ok && st.done {
		records := append([]shard.Record{}, st.byPartition[partitionID]...)
		s.mu.Unlock()
		return records, nil
	}
	tablets, known := s.tablets[key.Master]
	s.mu.Unlock()

	if !ok && known {
		s.schedulePartition(r, tablets)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotReady, key)
}

// Close stops partitioning and waits for running jobs.
func (s *BackupServiceImpl) Close() {
	s.cancel()
	s.wg.Wait()
	s.pool.Close()
	s.pool.Wait()
}
