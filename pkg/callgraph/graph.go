package callgraph

import (
	"maps"
	"regexp"
	"slices"
)

// Node is a full method signature, e.g. "<a.b.Book: int pages()>".
type Node = string

// Edge is a call from one method to another. Label is empty when the
// declaration carried no label.
type Edge struct {
	From  Node
	To    Node
	Label string
}

// Key returns the edge's coverage key. See [EdgeKey].
func (e Edge) Key() string {
	return EdgeKey(e.From, e.To)
}

// NodeSet is a set of nodes.
type NodeSet map[Node]struct{}

// NewNodeSet returns a set holding the given nodes.
func NewNodeSet(nodes ...Node) NodeSet {
	s := make(NodeSet, len(nodes))
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

// Add inserts n. Adding an existing node is a no-op.
func (s NodeSet) Add(n Node) { s[n] = struct{}{} }

// Has reports whether n is in the set.
func (s NodeSet) Has(n Node) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the nodes in ascending order.
func (s NodeSet) Sorted() []Node {
	return slices.Sorted(maps.Keys(s))
}

var edgeKeyRe = regexp.MustCompile(`^"<.*>"\s*->\s*"<.*>"$`)

// EdgeKey returns the canonical edge-coverage key "<src>"->"<dst>" with both
// endpoints quoted. Labels are not part of the key, so parallel edges share
// one coverage entry.
func EdgeKey(src, dst Node) string {
	return `"` + src + `"->"` + dst + `"`
}

// IsValidEdgeKey reports whether key has the shape produced by [EdgeKey].
func IsValidEdgeKey(key string) bool {
	return edgeKeyRe.MatchString(key)
}

// Graph is a call graph with optional coverage and ranking annotations.
// Every edge endpoint is expected to be in the node set; [Parse] guarantees
// this by construction.
type Graph struct {
	nodes        NodeSet
	edges        []Edge
	nodeCoverage map[Node]float64
	edgeCoverage map[string]float64
	ranking      map[Node]float64
}

// Option configures a [Graph].
type Option func(*Graph)

// WithNodeCoverage sets the node coverage scores, keyed by raw signature.
func WithNodeCoverage(m map[Node]float64) Option {
	return func(g *Graph) { g.nodeCoverage = m }
}

// WithEdgeCoverage sets the edge coverage scores, keyed by [EdgeKey].
func WithEdgeCoverage(m map[string]float64) Option {
	return func(g *Graph) { g.edgeCoverage = m }
}

// WithRanking sets the ranking scores, keyed by raw signature.
func WithRanking(m map[Node]float64) Option {
	return func(g *Graph) { g.ranking = m }
}

// New builds a graph. Unset mappings default to empty.
func New(nodes NodeSet, edges []Edge, opts ...Option) *Graph {
	if nodes == nil {
		nodes = NodeSet{}
	}
	g := &Graph{nodes: nodes, edges: edges}
	for _, opt := range opts {
		opt(g)
	}
	if g.nodeCoverage == nil {
		g.nodeCoverage = map[Node]float64{}
	}
	if g.edgeCoverage == nil {
		g.edgeCoverage = map[string]float64{}
	}
	if g.ranking == nil {
		g.ranking = map[Node]float64{}
	}
	return g
}

// Nodes returns all nodes in ascending order.
func (g *Graph) Nodes() []Node { return g.nodes.Sorted() }

// Edges returns the edges in encounter order.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, counting duplicates.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NodeCoverage returns the node coverage mapping.
func (g *Graph) NodeCoverage() map[Node]float64 { return g.nodeCoverage }

// EdgeCoverage returns the edge coverage mapping.
func (g *Graph) EdgeCoverage() map[string]float64 { return g.edgeCoverage }

// Ranking returns the score for n and whether one exists.
func (g *Graph) Ranking(n Node) (float64, bool) {
	score, ok := g.ranking[n]
	return score, ok
}

// Covered reports whether n has a strictly positive coverage score.
func (g *Graph) Covered(n Node) bool {
	return g.nodeCoverage[n] > 0
}
