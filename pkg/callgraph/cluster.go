package callgraph

import (
	"maps"
	"strconv"
	"regexp"
	"slices"
)

// Cluster groups the nodes declared by one class.
type Cluster struct {
	// Class is the short class name shared by all nodes.
	Class string
	// Nodes are the raw signatures, sorted.
	Nodes []Node

	id string
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// ID returns the subgraph identifier for the cluster. Graphviz only draws
// subgraphs whose name starts with "cluster" as boxes, and rejects
// punctuation such as '$' in identifiers. Clusters returned by
// [Graph.SortedClusters] carry IDs that are unique within the graph.
func (c Cluster) ID() string {
	if c.id != "" {
		return c.id
	}
	return baseClusterID(c.Class)
}

func baseClusterID(class string) string {
	return "cluster_" + unsafeIDChars.ReplaceAllString(class, "_")
}

// Clusters groups every node by the class name of its simplified label.
// The values are raw signatures, so overloads with colliding labels stay
// distinct.
func (g *Graph) Clusters() map[string][]Node {
	clusters := make(map[string][]Node)
	for n := range g.nodes {
		cls := ClassName(n)
		clusters[cls] = append(clusters[cls], n)
	}
	return clusters
}

// SortedClusters returns the clusters ordered by class name, with nodes
// ordered by raw signature. Classes whose sanitized IDs collide, such as
// "Outer$In" and "Outer_In", get a numeric suffix in class order.
func (g *Graph) SortedClusters() []Cluster {
	clusters := g.Clusters()
	classes := slices.Sorted(maps.Keys(clusters))

	used := make(map[string]bool, len(classes))
	for _, cls := range classes {
		used[baseClusterID(cls)] = true
	}
	claimed := make(map[string]bool, len(classes))

	out := make([]Cluster, 0, len(classes))
	for _, cls := range classes {
		nodes := clusters[cls]
		slices.Sort(nodes)
		id := baseClusterID(cls)
		if claimed[id] {
			base := id
			for i := 2; used[id]; i++ {
				id = base + "_" + strconv.Itoa(i)
			}
			used[id] = true
		}
		claimed[id] = true
		out = append(out, Cluster{Class: cls, Nodes: nodes, id: id})
	}
	return out
}

// IsFullyCovered reports whether every node has a strictly positive node
// coverage score. Missing scores count as uncovered.
func (g *Graph) IsFullyCovered(nodes []Node) bool {
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if !g.Covered(n) {
			return false
		}
	}
	return true
}
