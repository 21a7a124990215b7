package service

import (
	"fmt"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
)

// planPartitions binds every partition of tablets, ascending, to a distinct
// surviving master in directory order. It has no side effects.
func planPartitions(tablets []shard.Tablet, dir cluster.Directory, crashed cluster.NodeIdentity) ([]domain.PartitionAssignment, error) {
	partitions := shard.Partitions(tablets)

	var masters []cluster.Node
	for _, n := range dir.WithCapability(cluster.CapabilityMaster) {
		if n.Identity == crashed {
			continue
		}
		masters = append(masters, n)
	}

	if len(partitions) > len(masters) {
		return nil, domain.Fatal("plan partitions", fmt.Errorf("%w: %d partitions, %d masters",
			domain.ErrInsufficientMasters, len(partitions), len(masters)))
	}

	assignments := make([]domain.PartitionAssignment, len(partitions))
	for i, pid := range partitions {
		assignments[i] = domain.PartitionAssignment{PartitionID: pid, Master: masters[i]}
	}
	return assignments, nil
}
