package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/stats"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
)

// retrievalTask fetches one segment's records for one partition. Replicas are
// tried in priority order; the first one is the chosen backup.
type retrievalTask struct {
	partitionID uint64
	segmentID   uint64
	replicas    []domain.SegmentReplica
}

// retrievalPlan lists tasks by partition ascending, then by segment in replica list order.
func retrievalPlan(assignments []domain.PartitionAssignment, list domain.ReplicaList) []retrievalTask {
	segments := list.SegmentIDs()
	tasks := make([]retrievalTask, 0, len(assignments)*len(segments))
	for _, a := range assignments {
		for _, seg := range segments {
			tasks = append(tasks, retrievalTask{
				partitionID: a.PartitionID,
				segmentID:   seg,
				replicas:    list.ReplicasFor(seg),
			})
		}
	}
	return tasks
}

// retrieve runs the plan on a pool sized to the number of distinct backups.
// The first failed task cancels the rest.
func (r *Recovery) retrieve(ctx context.Context) error {
	r.mu.RLock()
	tasks := retrievalPlan(r.assignments, r.replicas)
	workers := len(r.replicas.Backups())
	r.mu.RUnlock()

	if r.opts.MaxConcurrency > 0 {
		workers = r.opts.MaxConcurrency
	}
	if workers < 1 {
		workers = 1
	}

	group := resilience.NewTaskGroup(ctx, workers, len(tasks))
	for _, task := range tasks {
		if err := group.Go(func(ctx context.Context) error {
			return r.runTask(ctx, task)
		}); err != nil {
			break
		}
	}
	return group.Wait()
}

func (r *Recovery) runTask(ctx context.Context, task retrievalTask) error {
	attempts := 0
	var lastErr error

	for i, replica := range task.replicas {
		if i > 0 {
			stats.FailoverCounter.Inc()
			logger.Warnw("Failing over to next replica",
				"recovery_id", r.id, "partition_id", task.partitionID, "segment_id", task.segmentID,
				"backup", replica.Addr, "previous_error", lastErr.Error())
		}

		records, n, err := resilience.RetryTransient(ctx, r.opts.Retry, isNotReady,
			func(ctx context.Context) ([]shard.Record, error) {
				callCtx, cancel := withTimeout(ctx, r.opts.RPCTimeout)
				defer cancel()
				records, err := r.backups.GetRecoveryData(callCtx, replica.Addr, r.crashed, task.segmentID, task.partitionID)
				stats.RetrievalCounter.WithLabelValues(retrievalResult(err)).Inc()
				return records, err
			})
		attempts += n
		if err == nil {
			r.addRecords(task.partitionID, records)
			logger.Debugw("Recovery data retrieved",
				"recovery_id", r.id, "partition_id", task.partitionID, "segment_id", task.segmentID,
				"backup", replica.Addr, "records", len(records), "attempts", n)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if errors.Is(err, resilience.ErrRetryTimeout) {
			lastErr = fmt.Errorf("%w: %v", domain.ErrRetrievalTimeout, err)
		} else {
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = domain.ErrReplicaNotFound
	}
	return &domain.RetrievalError{
		PartitionID: task.partitionID,
		SegmentID:   task.segmentID,
		Attempts:    attempts,
		Err:         lastErr,
	}
}

func (r *Recovery) addRecords(partitionID uint64, records []shard.Record) {
	stats.RecoveredRecordCounter.Add(float64(len(records)))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[partitionID] = append(r.records[partitionID], records...)
}

func isNotReady(err error) bool {
	return errors.Is(err, domain.ErrNotReady)
}

func retrievalResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isNotReady(err):
		return "not_ready"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
