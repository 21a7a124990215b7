package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/stats"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
)

var errNoTablets = errors.New("node owns no tablets")

// ManagerConfig holds the recovery knobs shared by every recovery.
type ManagerConfig struct {
	LocateTimeout        time.Duration
	RPCTimeout           time.Duration
	RetrievalTimeout     time.Duration
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	MaxConcurrency       int
	MissingSegmentPolicy domain.MissingSegmentPolicy
	AutoRecover          bool
	// CatalogTimeout bounds tablet catalog updates made after a recovery ends.
	CatalogTimeout time.Duration
}

// RecoveryManagerImpl runs recoveries for crashed masters.
type RecoveryManagerImpl struct {
	cfg       ManagerConfig
	directory port.NodeDirectory
	backups   port.BackupClient
	catalog   port.TabletCatalog
	idGen     port.IDGenerator
	rand      Rand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	recoveries map[uint64]*Recovery
	active     map[cluster.NodeIdentity]uint64
}

// Ensure RecoveryManagerImpl implements port.RecoveryService.
var _ port.RecoveryService = (*RecoveryManagerImpl)(nil)

// NewRecoveryManager creates a manager. rnd orders replicas for every recovery it starts.
func NewRecoveryManager(cfg ManagerConfig, directory port.NodeDirectory, backups port.BackupClient, catalog port.TabletCatalog, idGen port.IDGenerator, rnd Rand) *RecoveryManagerImpl {
	if rnd == nil {
		rnd = NewRand(0)
	}
	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RecoveryManagerImpl{
		cfg:        cfg,
		directory:  directory,
		backups:    backups,
		catalog:    catalog,
		idGen:      idGen,
		rand:       rnd,
		ctx:        ctx,
		cancel:     cancel,
		recoveries: make(map[uint64]*Recovery),
		active:     make(map[cluster.NodeIdentity]uint64),
	}
}

// StartRecovery marks crashed's tablets recovering, builds the recovery and
// runs it in the background. Fatal construction failures are returned directly.
func (m *RecoveryManagerImpl) StartRecovery(ctx context.Context, crashed cluster.NodeIdentity) (uint64, error) {
	return m.start(ctx, crashed, false)
}

func (m *RecoveryManagerImpl) start(ctx context.Context, crashed cluster.NodeIdentity, skipEmpty bool) (uint64, error) {
	if err := m.ctx.Err(); err != nil {
		return 0, fmt.Errorf("recovery manager closed: %w", err)
	}

	m.mu.Lock()
	if id, ok := m.active[crashed]; ok {
		m.mu.Unlock()
		return id, fmt.Errorf("recover %s: %w", crashed, domain.ErrRecoveryInProgress)
	}
	// Reserve the slot while the recovery is being built.
	m.active[crashed] = 0
	m.mu.Unlock()

	id, err := m.startRecovery(ctx, crashed, skipEmpty)
	if err != nil {
		m.mu.Lock()
		if m.active[crashed] == 0 {
			delete(m.active, crashed)
		}
		m.mu.Unlock()
	}
	return id, err
}

func (m *RecoveryManagerImpl) startRecovery(ctx context.Context, crashed cluster.NodeIdentity, skipEmpty bool) (uint64, error) {
	tablets, err := m.catalog.TabletsFor(ctx, crashed)
	if err != nil {
		return 0, fmt.Errorf("load tablets of %s: %w", crashed, err)
	}
	if skipEmpty && len(tablets) == 0 {
		return 0, errNoTablets
	}

	id, err := m.idGen.Next()
	if err != nil {
		return 0, fmt.Errorf("allocate recovery id: %w", err)
	}
	if err := m.catalog.UpdateState(ctx, crashed, shard.TabletRecovering); err != nil {
		return 0, fmt.Errorf("mark tablets of %s recovering: %w", crashed, err)
	}
	for i := range tablets {
		tablets[i].State = shard.TabletRecovering
	}

	directory := cluster.NewDirectory(m.directory.ListNodes())
	logger.Infow("Recovery requested", "recovery_id", id, "crashed", crashed.String(),
		"tablets", len(tablets), "nodes", directory.Len())

	stats.RecoveryActiveGauge.Inc()
	recovery, err := NewRecovery(m.ctx, crashed, tablets, directory, m.backups, m.recoveryOptions(id))
	m.mu.Lock()
	m.recoveries[id] = recovery
	m.mu.Unlock()
	if err != nil {
		m.finish(recovery, err)
		return id, fmt.Errorf("recover %s: %w", crashed, err)
	}

	m.mu.Lock()
	m.active[crashed] = id
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := recovery.Start(m.ctx)
		m.finish(recovery, err)
	}()

	return id, nil
}

func (m *RecoveryManagerImpl) recoveryOptions(id uint64) RecoveryOptions {
	return RecoveryOptions{
		ID:            id,
		Rand:          m.rand,
		LocateTimeout: m.cfg.LocateTimeout,
		RPCTimeout:    m.cfg.RPCTimeout,
		Retry: resilience.RetryPolicy{
			InitialInterval: m.cfg.RetryInitialInterval,
			MaxInterval:     m.cfg.RetryMaxInterval,
			Timeout:         m.cfg.RetrievalTimeout,
		},
		MaxConcurrency:       m.cfg.MaxConcurrency,
		MissingSegmentPolicy: m.cfg.MissingSegmentPolicy,
	}
}

// finish releases the crashed node slot and settles tablet state. Tablets of a
// completed recovery become recovered; a non-fatal abort puts them back to
// normal so the recovery can be retried. Fatal aborts leave them recovering.
func (m *RecoveryManagerImpl) finish(recovery *Recovery, err error) {
	stats.RecoveryActiveGauge.Dec()

	crashed := recovery.Crashed()
	m.mu.Lock()
	if id, ok := m.active[crashed]; ok && (id == recovery.ID() || id == 0) {
		delete(m.active, crashed)
	}
	m.mu.Unlock()

	status := recovery.Status()
	fatal := domain.IsFatal(err)
	stats.RecoveryCounter.WithLabelValues(string(status.Phase), strconv.FormatBool(fatal)).Inc()
	if status.FinishedAt != nil {
		stats.RecoveryHistogram.WithLabelValues(string(status.Phase)).Observe(status.FinishedAt.Sub(status.StartedAt).Seconds())
	}

	var state shard.TabletState
	switch {
	case err == nil:
		state = shard.TabletRecovered
	case fatal:
		logger.Errorw("Recovery failed fatally, tablets stay recovering until retried",
			"recovery_id", recovery.ID(), "crashed", crashed.String(), "error", err.Error())
		return
	default:
		state = shard.TabletNormal
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.CatalogTimeout)
	defer cancel()
	if uerr := m.catalog.UpdateState(ctx, crashed, state); uerr != nil {
		logger.Errorw("Failed to update tablet state after recovery",
			"recovery_id", recovery.ID(), "crashed", crashed.String(), "state", string(state), "error", uerr.Error())
	}
}

// GetRecovery returns the status of recovery id.
func (m *RecoveryManagerImpl) GetRecovery(id uint64) (domain.RecoveryStatus, error) {
	m.mu.RLock()
	recovery, ok := m.recoveries[id]
	m.mu.RUnlock()
	if !ok {
		return domain.RecoveryStatus{}, fmt.Errorf("recovery %d: %w", id, domain.ErrRecoveryNotFound)
	}
	return recovery.Status(), nil
}

// ListRecoveries returns every known recovery ordered by id.
func (m *RecoveryManagerImpl) ListRecoveries() []domain.RecoveryStatus {
	m.mu.RLock()
	list := make([]domain.RecoveryStatus, 0, len(m.recoveries))
	for _, r := range m.recoveries {
		list = append(list, r.Status())
	}
	m.mu.RUnlock()
	sortStatuses(list)
	return list
}

// HandleNodeFailure starts a recovery when a master-capable node leaves the cluster.
func (m *RecoveryManagerImpl) HandleNodeFailure(node cluster.Node) {
	if !m.cfg.AutoRecover || !node.Capabilities.Has(cluster.CapabilityMaster) {
		return
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.CatalogTimeout)
	defer cancel()

	id, err := m.start(ctx, node.Identity, true)
	if errors.Is(err, errNoTablets) {
		logger.Infow("Departed master owned no tablets, nothing to recover", "crashed", node.Identity.String())
		return
	}
	if err != nil {
		logger.Errorw("Automatic recovery failed to start", "crashed", node.Identity.String(), "recovery_id", id, "error", err.Error())
		return
	}
	logger.Infow("Automatic recovery started", "crashed", node.Identity.String(), "recovery_id", id)
}

// PutTablets records the tablets owned by node.
func (m *RecoveryManagerImpl) PutTablets(ctx context.Context, node cluster.NodeIdentity, tablets []shard.Tablet) error {
	for i := range tablets {
		if tablets[i].State == "" {
			tablets[i].State = shard.TabletNormal
		}
		if !tablets[i].State.Valid() {
			return fmt.Errorf("tablet %d: unknown state %q: %w", i, tablets[i].State, domain.ErrInvalidTablet)
		}
		if tablets[i].StartKeyHash > tablets[i].EndKeyHash {
			return fmt.Errorf("tablet %d: start key hash above end key hash: %w", i, domain.ErrInvalidTablet)
		}
	}
	return m.catalog.PutTablets(ctx, node, tablets)
}

// ListNodes returns the current directory.
func (m *RecoveryManagerImpl) ListNodes() []cluster.Node {
	return m.directory.ListNodes()
}

// Close abandons every running recovery and waits for them to stop.
func (m *RecoveryManagerImpl) Close() {
	m.cancel()
	m.mu.RLock()
	for _, r := range m.recoveries {
		r.Abandon()
	}
	m.mu.RUnlock()
	m.wg.Wait()
}
