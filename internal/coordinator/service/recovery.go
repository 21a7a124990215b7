package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
)

// RecoveryOptions tunes a single recovery.
type RecoveryOptions struct {
	ID   uint64
	Rand Rand

	// LocateTimeout bounds each ListReplicas call.
	LocateTimeout time.Duration
	// RPCTimeout bounds each GetRecoveryData call.
	RPCTimeout time.Duration
	// Retry bounds how long a not-ready replica is retried before failing over.
	Retry resilience.RetryPolicy
	// MaxConcurrency overrides the retrieval pool size when positive.
	MaxConcurrency int

	MissingSegmentPolicy domain.MissingSegmentPolicy
}

// Recovery rebuilds the state of one crashed master. Each instance owns an
// immutable directory snapshot.
type Recovery struct {
	id        uint64
	crashed   cluster.NodeIdentity
	tablets   []shard.Tablet
	directory cluster.Directory
	backups   port.BackupClient
	opts      RecoveryOptions

	mu                   sync.RWMutex
	phase                domain.RecoveryPhase
	replicas             domain.ReplicaList
	candidates           []domain.DigestCandidate
	head                 *domain.LogHead
	missing              []uint64
	assignments          []domain.PartitionAssignment
	tabletsUnderRecovery int
	records              map[uint64][]shard.Record
	err                  error
	startedAt            time.Time
	finishedAt           time.Time
	cancel               context.CancelFunc
}

// NewRecovery locates the replicas of crashed's log and verifies the log head.
// On a verification failure it returns the aborted recovery together with the
// fatal error so the caller can still inspect it.
func NewRecovery(ctx context.Context, crashed cluster.NodeIdentity, tablets []shard.Tablet, directory cluster.Directory, backups port.BackupClient, opts RecoveryOptions) (*Recovery, error) {
	if opts.Rand == nil {
		opts.Rand = NewRand(0)
	}
	if opts.MissingSegmentPolicy == "" {
		opts.MissingSegmentPolicy = domain.MissingSegmentAdvisory
	}

	owned := make([]shard.Tablet, len(tablets))
	copy(owned, tablets)

	r := &Recovery{
		id:        opts.ID,
		crashed:   crashed,
		tablets:   owned,
		directory: directory,
		backups:   backups,
		opts:      opts,
		phase:     domain.PhaseConstructed,
		records:   make(map[uint64][]shard.Record),
		startedAt: time.Now(),
	}

	locator := newReplicaLocator(backups, opts.Rand, opts.LocateTimeout)
	replicas, candidates := locator.locate(ctx, crashed, directory, owned)
	if err := ctx.Err(); err != nil {
		// Backups went unanswered because the caller gave up, not because the log is gone.
		err = fmt.Errorf("locate replicas of %s: %w", crashed, err)
		r.mu.Lock()
		r.finishLocked(err)
		r.mu.Unlock()
		return r, err
	}
	r.mu.Lock()
	r.replicas = replicas
	r.candidates = candidates
	r.phase = domain.PhaseReplicaListBuilt
	r.mu.Unlock()

	head, missing, err := newLogVerifier(opts.MissingSegmentPolicy).verify(crashed, candidates, replicas)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing = missing
	if err != nil {
		if head.Segments != nil {
			r.head = &head
		}
		r.finishLocked(err)
		return r, err
	}
	r.head = &head
	r.phase = domain.PhaseLogVerified
	return r, nil
}

// Start plans partitions and retrieves every (partition, segment) pair. It
// blocks until retrieval finishes, fails, or the recovery is abandoned.
func (r *Recovery) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.phase != domain.PhaseLogVerified {
		phase := r.phase
		r.mu.Unlock()
		return fmt.Errorf("start recovery %d in phase %s: %w", r.id, phase, domain.ErrInvalidPhase)
	}

	assignments, err := planPartitions(r.tablets, r.directory, r.crashed)
	if err != nil {
		logger.Errorw("Recovery planning failed", "recovery_id", r.id, "crashed", r.crashed.String(), "error", err.Error())
		r.finishLocked(err)
		r.mu.Unlock()
		return err
	}

	r.assignments = assignments
	r.phase = domain.PhasePlanned
	r.tabletsUnderRecovery = 0
	for _, t := range r.tablets {
		if t.State == shard.TabletRecovering {
			r.tabletsUnderRecovery++
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.cancel = cancel
	r.phase = domain.PhaseRetrieving
	r.mu.Unlock()

	logger.Infow(fmt.Sprintf("Starting recovery for %d partitions", len(assignments)),
		"recovery_id", r.id, "crashed", r.crashed.String(), "segments", len(r.replicas.SegmentIDs()))

	err = r.retrieve(runCtx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel = nil
	if r.phase.Terminal() {
		// Abandoned while retrieving.
		return r.err
	}
	if err != nil {
		r.finishLocked(err)
		logger.Errorw("Recovery aborted", "recovery_id", r.id, "crashed", r.crashed.String(), "error", err.Error())
		return err
	}
	r.phase = domain.PhaseCompleted
	r.finishedAt = time.Now()
	logger.Infow("Recovery completed", "recovery_id", r.id, "crashed", r.crashed.String(),
		"duration", r.finishedAt.Sub(r.startedAt).String())
	return nil
}

// Abandon cancels in-flight retrieval and aborts the recovery. It is a no-op
// once the recovery has finished.
func (r *Recovery) Abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase.Terminal() {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.finishLocked(fmt.Errorf("recovery %d abandoned: %w", r.id, context.Canceled))
	logger.Warnw("Recovery abandoned", "recovery_id", r.id, "crashed", r.crashed.String())
}

func (r *Recovery) finishLocked(err error) {
	r.phase = domain.PhaseAborted
	r.err = err
	r.finishedAt = time.Now()
}

func (r *Recovery) ID() uint64 {
	return r.id
}

func (r *Recovery) Crashed() cluster.NodeIdentity {
	return r.crashed
}

func (r *Recovery) Phase() domain.RecoveryPhase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// TabletsUnderRecovery is the number of tablets in the recovering state when Start planned.
func (r *Recovery) TabletsUnderRecovery() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tabletsUnderRecovery
}

func (r *Recovery) ReplicaList() domain.ReplicaList {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(domain.ReplicaList, len(r.replicas))
	copy(out, r.replicas)
	return out
}

func (r *Recovery) DigestCandidates() []domain.DigestCandidate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.DigestCandidate, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Head returns the verified log head, if any.
func (r *Recovery) Head() (domain.LogHead, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.head == nil {
		return domain.LogHead{}, false
	}
	return *r.head, true
}

func (r *Recovery) MissingSegments() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]uint64(nil), r.missing...)
}

func (r *Recovery) Assignments() []domain.PartitionAssignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.PartitionAssignment(nil), r.assignments...)
}

// PartitionRecords returns the records retrieved so far for partitionID.
func (r *Recovery) PartitionRecords(partitionID uint64) []shard.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]shard.Record(nil), r.records[partitionID]...)
}

// Err returns the failure that aborted the recovery.
func (r *Recovery) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *Recovery) Status() domain.RecoveryStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := domain.RecoveryStatus{
		ID:                   r.id,
		Crashed:              r.crashed,
		Phase:                r.phase,
		Tablets:              append([]shard.Tablet(nil), r.tablets...),
		TabletsUnderRecovery: r.tabletsUnderRecovery,
		ReplicaList:          append(domain.ReplicaList(nil), r.replicas...),
		MissingSegments:      append([]uint64(nil), r.missing...),
		Assignments:          append([]domain.PartitionAssignment(nil), r.assignments...),
		StartedAt:            r.startedAt,
	}
	if r.head != nil {
		head := *r.head
		st.Head = &head
	}
	if len(r.records) > 0 {
		st.PartitionRecords = make(map[uint64]int, len(r.records))
		for pid, recs := range r.records {
			st.PartitionRecords[pid] = len(recs)
		}
	}
	if r.err != nil {
		st.Error = r.err.Error()
		st.Fatal = domain.IsFatal(r.err)
	}
	if !r.finishedAt.IsZero() {
		finished := r.finishedAt
		st.FinishedAt = &finished
	}
	return st
}

func sortStatuses(list []domain.RecoveryStatus) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
