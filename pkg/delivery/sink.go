package delivery

import (
	"errors"
	"strings"
	"sync"
)

// ErrSinkFull is returned when every node is at capacity and no new node
// can be opened.
var ErrSinkFull = errors.New("virtual style sink is full")

// SinkOptions bound a VirtualSink.
type SinkOptions struct {
	ClassesPerNode int  `yaml:"classes_per_node" validate:"gte=1"`
	MaxNodes       int  `yaml:"max_nodes" validate:"gte=1"`
	MergeNodes     bool `yaml:"merge_nodes"`
}

// DefaultSinkOptions returns 10 nodes of 100 entries with merging on.
func DefaultSinkOptions() SinkOptions {
	return SinkOptions{ClassesPerNode: 100, MaxNodes: 10, MergeNodes: true}
}

// Node is a snapshot of one sink node.
type Node struct {
	Index   int      `json:"index"`
	Entries []string `json:"entries"`
}

// CSS joins the node entries, one per line.
func (n Node) CSS() string {
	return strings.Join(n.Entries, "\n")
}

type sinkNode struct {
	entries []string
}

// VirtualSink spreads injected CSS over a bounded list of nodes, each
// holding at most ClassesPerNode entries.
type VirtualSink struct {
	opts SinkOptions

	mu    sync.Mutex
	nodes []*sinkNode
	owner map[string]*sinkNode
}

// NewVirtualSink creates an empty sink. Zero limits take their defaults.
func NewVirtualSink(opts SinkOptions) *VirtualSink {
	def := DefaultSinkOptions()
	if opts.ClassesPerNode <= 0 {
		opts.ClassesPerNode = def.ClassesPerNode
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = def.MaxNodes
	}
	return &VirtualSink{opts: opts, owner: make(map[string]*sinkNode)}
}

// Inject appends css to the current node, opening a new node when it is
// full. Injecting css that is already present is a no-op.
func (s *VirtualSink) Inject(css string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owner[css]; ok {
		return nil
	}

	node := s.target()
	if node == nil {
		return ErrSinkFull
	}
	node.entries = append(node.entries, css)
	s.owner[css] = node
	return nil
}

// Remove deletes css from its node and reports whether it was present.
// Empty nodes are dropped; with MergeNodes undersized trailing nodes are
// folded together.
func (s *VirtualSink) Remove(css string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.owner[css]
	if !ok {
		return false
	}
	delete(s.owner, css)
	for i, e := range node.entries {
		if e == css {
			node.entries = append(node.entries[:i], node.entries[i+1:]...)
			break
		}
	}

	if len(node.entries) == 0 {
		for i, n := range s.nodes {
			if n == node {
				s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
				break
			}
		}
	}
	if s.opts.MergeNodes {
		s.merge()
	}
	return true
}

// NodeCount returns the number of open nodes.
func (s *VirtualSink) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// Len returns the number of entries across all nodes.
func (s *VirtualSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.owner)
}

// Nodes returns a snapshot of every node in order.
func (s *VirtualSink) Nodes() []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = Node{Index: i, Entries: append([]string(nil), n.entries...)}
	}
	return out
}

// CSS returns every entry in node order, one per line.
func (s *VirtualSink) CSS() string {
	var b strings.Builder
	for _, n := range s.Nodes() {
		for _, e := range n.Entries {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(e)
		}
	}
	return b.String()
}

// Clear removes every node.
func (s *VirtualSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
	s.owner = make(map[string]*sinkNode)
}

// target returns the node the next entry goes to, or nil when full.
func (s *VirtualSink) target() *sinkNode {
	if n := len(s.nodes); n > 0 && len(s.nodes[n-1].entries) < s.opts.ClassesPerNode {
		return s.nodes[n-1]
	}
	if s.opts.MergeNodes {
		s.merge()
		if n := len(s.nodes); n > 0 && len(s.nodes[n-1].entries) < s.opts.ClassesPerNode {
			return s.nodes[n-1]
		}
	}
	if len(s.nodes) < s.opts.MaxNodes {
		node := &sinkNode{}
		s.nodes = append(s.nodes, node)
		return node
	}
	if s.opts.MergeNodes {
		for _, n := range s.nodes {
			if len(n.entries) < s.opts.ClassesPerNode {
				return n
			}
		}
	}
	return nil
}

// merge folds each trailing node into its predecessor while the two fit
// in one node.
func (s *VirtualSink) merge() {
	for len(s.nodes) >= 2 {
		last := s.nodes[len(s.nodes)-1]
		prev := s.nodes[len(s.nodes)-2]
		if len(prev.entries)+len(last.entries) > s.opts.ClassesPerNode {
			return
		}
		prev.entries = append(prev.entries, last.entries...)
		for _, e := range last.entries {
			s.owner[e] = prev
		}
		s.nodes = s.nodes[:len(s.nodes)-1]
	}
}
