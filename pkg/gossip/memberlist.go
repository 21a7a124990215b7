package gossip

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/hashicorp/memberlist"
)

// Config describes the local member.
type Config struct {
	Name         string
	BindAddr     string
	BindPort     int
	ServerPort   int
	Identity     cluster.NodeIdentity
	Capabilities cluster.Capability
}

// GossipAdapter keeps the cluster node directory up to date using memberlist.
type GossipAdapter struct {
	list *memberlist.Memberlist
	conf *memberlist.Config
	cfg  Config

	mu      sync.RWMutex
	onLeave func(cluster.Node)
}

var _ memberlist.Delegate = (*GossipAdapter)(nil)
var _ memberlist.EventDelegate = (*GossipAdapter)(nil)

type nodeMeta struct {
	ServerID     uint64 `json:"server_id"`
	Generation   uint32 `json:"generation"`
	Capabilities uint32 `json:"capabilities"`
	ServerPort   int    `json:"server_port"`
}

// NewGossipAdapter creates the local member and starts listening for gossip.
func NewGossipAdapter(cfg Config) (*GossipAdapter, error) {
	config := memberlist.DefaultLANConfig()
	config.Name = cfg.Name
	config.BindAddr = cfg.BindAddr
	config.BindPort = cfg.BindPort
	config.AdvertisePort = cfg.BindPort
	config.LogOutput = io.Discard

	adapter := &GossipAdapter{
		conf: config,
		cfg:  cfg,
	}

	config.Events = adapter
	config.Delegate = adapter

	list, err := memberlist.Create(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create memberlist: %w", err)
	}
	adapter.list = list

	return adapter, nil
}

// SetLeaveHandler registers fn to be called when a member leaves or is declared dead.
func (g *GossipAdapter) SetLeaveHandler(fn func(cluster.Node)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onLeave = fn
}

// Join joins the cluster using seed nodes.
func (g *GossipAdapter) Join(seeds []string) error {
	if len(seeds) > 0 {
		_, err := g.list.Join(seeds)
		if err != nil {
			return fmt.Errorf("failed to join cluster: %w", err)
		}
	}
	return nil
}

// Leave leaves the cluster.
func (g *GossipAdapter) Leave() error {
	if err := g.list.Leave(time.Second * 5); err != nil {
		return err
	}
	return g.list.Shutdown()
}

// NodeMeta returns the local node metadata.
func (g *GossipAdapter) NodeMeta(limit int) []byte {
	data, err := json.Marshal(nodeMeta{
		ServerID:     g.cfg.Identity.ID,
		Generation:   g.cfg.Identity.Generation,
		Capabilities: uint32(g.cfg.Capabilities),
		ServerPort:   g.cfg.ServerPort,
	})
	if err != nil {
		logger.Warnw("failed to marshal gossip node meta", "error", err.Error())
		return nil
	}
	if limit > 0 && len(data) > limit {
		logger.Warnw("gossip node meta exceeds limit", "size", len(data), "limit", limit)
		return nil
	}
	return data
}

// NotifyMsg, GetBroadcasts, LocalState, MergeRemoteState are not used here but required by Delegate
func (g *GossipAdapter) NotifyMsg([]byte)                           {}
func (g *GossipAdapter) GetBroadcasts(overhead, limit int) [][]byte { return nil }
func (g *GossipAdapter) LocalState(join bool) []byte                { return nil }
func (g *GossipAdapter) MergeRemoteState(buf []byte, join bool)     {}

// ListNodes returns live members that advertise a server identity, ordered by identity.
func (g *GossipAdapter) ListNodes() []cluster.Node {
	members := g.list.Members()
	nodes := make([]cluster.Node, 0, len(members))
	for _, m := range members {
		n, ok := toNode(m)
		if !ok {
			continue
		}
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}

// LocalNode returns the local node info.
func (g *GossipAdapter) LocalNode() cluster.Node {
	return cluster.Node{
		Identity:     g.cfg.Identity,
		Addr:         net.JoinHostPort(g.serverHost(), strconv.Itoa(g.cfg.ServerPort)),
		Capabilities: g.cfg.Capabilities,
	}
}

// NotifyJoin is invoked when a node joins.
func (g *GossipAdapter) NotifyJoin(node *memberlist.Node) {
	n, ok := toNode(node)
	if !ok {
		logger.Debugw("Member joined without server identity", "name", node.Name)
		return
	}
	logger.Infow("Node joined", "server", n.Identity.String(), "addr", n.Addr, "capabilities", n.Capabilities.String())
}

// NotifyLeave is invoked when a node leaves or is declared dead.
func (g *GossipAdapter) NotifyLeave(node *memberlist.Node) {
	n, ok := toNode(node)
	if !ok {
		logger.Infow("Node left", "name", node.Name)
		return
	}
	logger.Infow("Node left", "server", n.Identity.String(), "addr", n.Addr)

	g.mu.RLock()
	handler := g.onLeave
	g.mu.RUnlock()
	if handler != nil {
		handler(n)
	}
}

// NotifyUpdate is invoked when a node is updated.
func (g *GossipAdapter) NotifyUpdate(node *memberlist.Node) {
	if n, ok := toNode(node); ok {
		logger.Debugw("Node updated", "server", n.Identity.String(), "capabilities", n.Capabilities.String())
	}
}

func toNode(m *memberlist.Node) (cluster.Node, bool) {
	meta, ok := decodeMeta(m.Meta)
	if !ok || meta.ServerID == 0 {
		return cluster.Node{}, false
	}
	addr := m.Addr.String()
	if meta.ServerPort > 0 {
		addr = net.JoinHostPort(addr, strconv.Itoa(meta.ServerPort))
	} else {
		addr = net.JoinHostPort(addr, strconv.Itoa(int(m.Port)))
	}
	return cluster.Node{
		Identity:     cluster.NodeIdentity{ID: meta.ServerID, Generation: meta.Generation},
		Addr:         addr,
		Capabilities: cluster.Capability(meta.Capabilities),
	}, true
}

func decodeMeta(meta []byte) (nodeMeta, bool) {
	if len(meta) == 0 {
		return nodeMeta{}, false
	}
	var m nodeMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		logger.Warnw("failed to decode node metadata", "error", err.Error())
		return nodeMeta{}, false
	}
	return m, true
}

func sortNodes(nodes []cluster.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Identity, nodes[j].Identity
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Generation < b.Generation
	})
}

func (g *GossipAdapter) serverHost() string {
	addr := g.cfg.BindAddr
	if addr == "" {
		return addr
	}
	if ip := net.ParseIP(addr); ip == nil || !ip.IsUnspecified() {
		return addr
	}

	if g.list == nil || g.list.LocalNode() == nil {
		return addr
	}

	adv := g.list.LocalNode().Addr.String()
	if adv == "" {
		return addr
	}
	if ip := net.ParseIP(adv); ip != nil && ip.IsUnspecified() {
		return addr
	}
	return adv
}
