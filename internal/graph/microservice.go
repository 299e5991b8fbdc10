package graph

import "prophet/internal/model"

// UnresolvedCall 源或目标服务不在图中的调用，构图时被跳过
type UnresolvedCall struct {
	Source string
	Target string
	Call   model.Call
}

// MicroserviceGraph 服务调用图
type MicroserviceGraph struct {
	*Graph[model.Microservice, model.Call]
	Unresolved []UnresolvedCall
}

// BuildMicroserviceGraph 由服务列表构建调用图。
//
// 服务名唯一，同名服务只保留第一个节点，后续同名服务的调用挂到该节点上。
// 目标服务找不到的调用被跳过并记录在 Unresolved 中。
func BuildMicroserviceGraph(services []model.Microservice) (*MicroserviceGraph, error) {
	g := New[model.Microservice, model.Call]()
	index := make(map[string]NodeIndex, len(services))
	for _, ms := range services {
		if _, ok := index[ms.Name]; ok {
			continue
		}
		index[ms.Name] = g.AddNode(ms)
	}
	if g.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}

	mg := &MicroserviceGraph{Graph: g}
	for _, ms := range services {
		from := index[ms.Name]
		for _, c := range ms.Calls {
			to, ok := index[c.Target]
			if !ok {
				mg.Unresolved = append(mg.Unresolved, UnresolvedCall{Source: ms.Name, Target: c.Target, Call: c.Call})
				continue
			}
			g.AddEdge(from, to, c.Call)
		}
	}
	return mg, nil
}

// Orphans 既不调用也不被调用的服务，按节点顺序
func (g *MicroserviceGraph) Orphans() []model.Microservice {
	var out []model.Microservice
	for i := 0; i < g.NodeCount(); i++ {
		if g.Degree(NodeIndex(i)) == 0 {
			out = append(out, g.Node(NodeIndex(i)))
		}
	}
	return out
}
