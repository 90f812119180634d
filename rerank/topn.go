package rerank

import (
	"context"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后只展示前 N 个候选。
// 只用于展示（如 CLI 的 --top），rank.Result 中的完整排序结果不受影响。
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rerank.StableSortNode{},
//	        &rerank.TopNNode{N: 3},
//	    },
//	}
type TopNNode struct {
	// N 要保留的候选数量；N <= 0 或 N >= len(items) 时返回全部
	N int
}

func (n *TopNNode) Name() string        { return "rerank.topn" }
func (n *TopNNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RankContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
