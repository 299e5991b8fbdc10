package graph

import (
	"encoding/json"
	"errors"
)

// ErrEmptyGraph 输入无法产生任何节点
var ErrEmptyGraph = errors.New("conversion to graph failed: no nodes")

// NodeIndex 节点在 arena 中的下标。删除节点后其后的下标会前移。
type NodeIndex int

// Edge 有向边，端点为节点下标
type Edge[E any] struct {
	From   NodeIndex `json:"from"`
	To     NodeIndex `json:"to"`
	Weight E         `json:"weight"`
}

// Graph 有向图：节点存放在 arena 中，边单独成表，允许环。
// 节点与边都保持插入顺序。
type Graph[N any, E any] struct {
	nodes []N
	edges []Edge[E]
}

// New 创建空图
func New[N any, E any]() *Graph[N, E] {
	return &Graph[N, E]{}
}

// AddNode 添加节点
func (g *Graph[N, E]) AddNode(node N) NodeIndex {
	g.nodes = append(g.nodes, node)
	return NodeIndex(len(g.nodes) - 1)
}

// AddEdge 添加边，平行边不去重
func (g *Graph[N, E]) AddEdge(from, to NodeIndex, weight E) {
	g.edges = append(g.edges, Edge[E]{From: from, To: to, Weight: weight})
}

func (g *Graph[N, E]) Node(i NodeIndex) N { return g.nodes[i] }

func (g *Graph[N, E]) NodeCount() int { return len(g.nodes) }

func (g *Graph[N, E]) EdgeCount() int { return len(g.edges) }

// Nodes 节点副本，按插入顺序
func (g *Graph[N, E]) Nodes() []N {
	out := make([]N, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges 边副本，按插入顺序
func (g *Graph[N, E]) Edges() []Edge[E] {
	out := make([]Edge[E], len(g.edges))
	copy(out, g.edges)
	return out
}

// EdgesFrom 以 i 为起点的边，按插入顺序
func (g *Graph[N, E]) EdgesFrom(i NodeIndex) []Edge[E] {
	var out []Edge[E]
	for _, e := range g.edges {
		if e.From == i {
			out = append(out, e)
		}
	}
	return out
}

// Degree 入度 + 出度，自环计一次
func (g *Graph[N, E]) Degree(i NodeIndex) int {
	n := 0
	for _, e := range g.edges {
		if e.From == i || e.To == i {
			n++
		}
	}
	return n
}

// Find 返回第一个满足条件的节点
func (g *Graph[N, E]) Find(match func(N) bool) (NodeIndex, bool) {
	for i, n := range g.nodes {
		if match(n) {
			return NodeIndex(i), true
		}
	}
	return -1, false
}

// RemoveNode 删除节点及其关联边，保持其余节点顺序；
// 下标大于 i 的节点和边端点全部减一。
func (g *Graph[N, E]) RemoveNode(i NodeIndex) {
	if i < 0 || int(i) >= len(g.nodes) {
		return
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.From == i || e.To == i {
			continue
		}
		if e.From > i {
			e.From--
		}
		if e.To > i {
			e.To--
		}
		kept = append(kept, e)
	}
	g.edges = kept
}

// RemoveWhere 反复查找并删除匹配的节点。每次删除后重新查找，
// 不缓存可能已经失效的下标。返回删除数量。
func (g *Graph[N, E]) RemoveWhere(match func(N) bool) int {
	removed := 0
	for {
		i, ok := g.Find(match)
		if !ok {
			return removed
		}
		g.RemoveNode(i)
		removed++
	}
}

// Clone 浅拷贝节点与边
func (g *Graph[N, E]) Clone() *Graph[N, E] {
	return &Graph[N, E]{nodes: g.Nodes(), edges: g.Edges()}
}

// MarshalJSON 导出为 {"nodes": [...], "edges": [...]}
func (g *Graph[N, E]) MarshalJSON() ([]byte, error) {
	nodes := g.nodes
	if nodes == nil {
		nodes = []N{}
	}
	edges := g.edges
	if edges == nil {
		edges = []Edge[E]{}
	}
	return json.Marshal(struct {
		Nodes []N       `json:"nodes"`
		Edges []Edge[E] `json:"edges"`
	}{nodes, edges})
}

// ToJSON 导出为缩进 JSON
func (g *Graph[N, E]) ToJSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}
