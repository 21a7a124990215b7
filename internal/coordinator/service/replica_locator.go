package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
	"golang.org/x/sync/errgroup"
)

// Rand orders replicas of equal priority. Intn returns a value in [0, n).
type Rand interface {
	Intn(n int) int
}

// lockedRand lets one seeded source be shared by concurrent recoveries.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe source. A zero seed uses the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))} // #nosec G404
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// replicaLocator asks every backup which replicas of the crashed log it holds.
type replicaLocator struct {
	backups port.BackupClient
	rand    Rand
	timeout time.Duration
}

func newReplicaLocator(backups port.BackupClient, rnd Rand, timeout time.Duration) *replicaLocator {
	return &replicaLocator{
		backups: backups,
		rand:    rnd,
		timeout: timeout,
	}
}

// locate builds the replica list and collects digest candidates. Backups that
// fail to answer are left out.
func (l *replicaLocator) locate(ctx context.Context, crashed cluster.NodeIdentity, dir cluster.Directory, tablets []shard.Tablet) (domain.ReplicaList, []domain.DigestCandidate) {
	var hosts []cluster.Node
	for _, n := range dir.WithCapability(cluster.CapabilityBackup) {
		if n.Identity == crashed {
			continue
		}
		hosts = append(hosts, n)
	}

	answers := make([][]domain.ReplicaInfo, len(hosts))
	g, gctx := errgroup.WithContext(ctx)
	for i, host := range hosts {
		g.Go(func() error {
			callCtx, cancel := withTimeout(gctx, l.timeout)
			defer cancel()

			infos, err := l.backups.ListReplicas(callCtx, host.Addr, crashed, tablets)
			if err != nil {
				logger.Warnw("Backup did not answer replica listing, skipping",
					"crashed", crashed.String(), "backup", host.Identity.String(), "addr", host.Addr, "error", err.Error())
				return nil
			}
			answers[i] = infos
			return nil
		})
	}
	_ = g.Wait()

	var primaries, secondaries domain.ReplicaList
	var candidates []domain.DigestCandidate
	for i, host := range hosts {
		for _, info := range answers[i] {
			replica := domain.SegmentReplica{
				SegmentID: info.SegmentID,
				Backup:    host.Identity,
				Addr:      host.Addr,
				Role:      domain.RoleSecondary,
			}
			// The open segment is the only copy of the log tail.
			if info.Role == domain.RolePrimary || info.Open {
				replica.Role = domain.RolePrimary
				primaries = append(primaries, replica)
			} else {
				secondaries = append(secondaries, replica)
			}

			if len(info.Digest) > 0 {
				candidates = append(candidates, domain.DigestCandidate{
					SegmentID: info.SegmentID,
					Length:    info.Length,
					Digest:    info.Digest,
				})
			}
		}
	}

	l.shuffle(primaries)
	l.shuffle(secondaries)

	list := make(domain.ReplicaList, 0, len(primaries)+len(secondaries))
	list = append(list, primaries...)
	list = append(list, secondaries...)

	logger.Infow("Replica list built", "crashed", crashed.String(), "backups", len(hosts),
		"primaries", len(primaries), "secondaries", len(secondaries), "digests", len(candidates))
	return list, candidates
}

// shuffle is a Fisher-Yates pass driven by the injected source.
func (l *replicaLocator) shuffle(list domain.ReplicaList) {
	for i := len(list) - 1; i > 0; i-- {
		j := l.rand.Intn(i + 1)
		list[i], list[j] = list[j], list[i]
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
