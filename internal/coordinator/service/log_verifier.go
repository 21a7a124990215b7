package service

import (
	"fmt"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/stats"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/logdigest"
	"github.com/anthanhphan/gosdk/logger"
)

type logVerifier struct {
	policy domain.MissingSegmentPolicy
}

func newLogVerifier(policy domain.MissingSegmentPolicy) *logVerifier {
	return &logVerifier{policy: policy}
}

// verify picks the log head and reports declared segments with no located replica.
func (v *logVerifier) verify(crashed cluster.NodeIdentity, candidates []domain.DigestCandidate, list domain.ReplicaList) (domain.LogHead, []uint64, error) {
	if len(candidates) == 0 {
		logger.Errorw("No log digest found among replicas", "crashed", crashed.String())
		return domain.LogHead{}, nil, domain.Fatal("verify log", domain.ErrNoLogHead)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.SegmentID > best.SegmentID || (c.SegmentID == best.SegmentID && c.Length > best.Length) {
			best = c
		}
	}
	logger.Infow(fmt.Sprintf("Segment %d of length %d bytes is the head of the log", best.SegmentID, best.Length),
		"crashed", crashed.String())

	segments, err := logdigest.Decode(best.Digest)
	if err != nil {
		return domain.LogHead{}, nil, domain.Fatal("verify log", fmt.Errorf("head segment %d: %w", best.SegmentID, err))
	}
	head := domain.LogHead{SegmentID: best.SegmentID, Length: best.Length, Segments: segments}

	var missing []uint64
	for _, id := range segments {
		if !list.Contains(id) {
			logger.Warnw(fmt.Sprintf("Segment %d is missing!", id), "crashed", crashed.String())
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return head, nil, nil
	}

	stats.MissingSegmentCounter.Add(float64(len(missing)))
	logger.Errorw(fmt.Sprintf("%d segments in the digest, but not obtained from backups!", len(missing)),
		"crashed", crashed.String(), "policy", string(v.policy))
	if v.policy == domain.MissingSegmentFatal {
		return head, missing, domain.Fatal("verify log",
			fmt.Errorf("%w: %d of %d segments missing", domain.ErrIncompleteLog, len(missing), len(segments)))
	}
	return head, missing, nil
}
