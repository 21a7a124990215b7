package port

import "github.com/anthanhphan/go-ramstore/pkg/cluster"

//go:generate mockgen -destination=../service/mocks/directory_mock.go -package=mocks -source=directory.go

// NodeDirectory lists the currently known cluster nodes.
type NodeDirectory interface {
	// ListNodes returns live nodes in a stable order.
	ListNodes() []cluster.Node
}
