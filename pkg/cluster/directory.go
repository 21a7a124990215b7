package cluster

// Directory is an immutable snapshot of the nodes known to the cluster.
// Order is preserved from construction and is significant: master assignment
// walks it front to back.
type Directory struct {
	nodes []Node
}

// NewDirectory copies nodes into a new snapshot.
func NewDirectory(nodes []Node) Directory {
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return Directory{nodes: cp}
}

// Nodes returns a copy of every node in directory order.
func (d Directory) Nodes() []Node {
	cp := make([]Node, len(d.nodes))
	copy(cp, d.nodes)
	return cp
}

// Len returns the number of nodes in the snapshot.
func (d Directory) Len() int {
	return len(d.nodes)
}

// WithCapability returns the nodes offering c, in directory order.
func (d Directory) WithCapability(c Capability) []Node {
	out := make([]Node, 0, len(d.nodes))
	for _, n := range d.nodes {
		if n.Capabilities.Has(c) {
			out = append(out, n)
		}
	}
	return out
}

// Lookup finds a node by identity.
func (d Directory) Lookup(id NodeIdentity) (Node, bool) {
	for _, n := range d.nodes {
		if n.Identity == id {
			return n, true
		}
	}
	return Node{}, false
}
