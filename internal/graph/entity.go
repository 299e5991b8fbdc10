package graph

import "prophet/internal/model"

// Cardinality 实体关系基数
type Cardinality int

const (
	One Cardinality = iota
	Many
)

// String 关系线上的基数标记："1" 或 "*"
func (c Cardinality) String() string {
	if c == Many {
		return "*"
	}
	return "1"
}

func (c Cardinality) MarshalText() ([]byte, error) {
	if c == Many {
		return []byte("many"), nil
	}
	return []byte("one"), nil
}

// EntityGraph 实体关系图：字段类型指向另一实体名时产生一条边
type EntityGraph struct {
	*Graph[model.Entity, Cardinality]
}

// BuildEntityGraph 由实体列表构建实体图。
//
// 每个输入实体一个节点，同名实体不去重。字段类型找不到对应实体时视为
// 基本类型，不产生边。没有任何节点时返回 ErrEmptyGraph。
func BuildEntityGraph(entities []model.Entity) (*EntityGraph, error) {
	g := New[model.Entity, Cardinality]()
	for _, e := range entities {
		g.AddNode(e)
	}
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}

	for i, e := range entities {
		from := NodeIndex(i)
		for _, f := range e.Fields {
			to, ok := g.Find(func(n model.Entity) bool { return n.Name == f.Type })
			if !ok {
				continue
			}
			weight := One
			if f.IsCollection {
				weight = Many
			}
			g.AddEdge(from, to, weight)
		}
	}

	return &EntityGraph{Graph: g}, nil
}

// FilterEntities 返回删除了给定实体（按值比较）及其关联边的新图。
// 删除集合中不存在于图里的实体会被忽略。
func (g *EntityGraph) FilterEntities(remove []model.Entity) *EntityGraph {
	out := &EntityGraph{Graph: g.Graph.Clone()}
	if len(remove) == 0 {
		return out
	}
	set := model.NewEntitySet(remove...)
	out.RemoveWhere(set.Contains)
	return out
}

// Retain 只保留满足条件的节点
func (g *EntityGraph) Retain(keep func(model.Entity) bool) *EntityGraph {
	var remove []model.Entity
	for _, n := range g.Nodes() {
		if !keep(n) {
			remove = append(remove, n)
		}
	}
	return g.FilterEntities(remove)
}
