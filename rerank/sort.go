package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/pipeline"
)

// StableSortNode 按 Utility 降序稳定排序：效用相同的候选保持输入中的相对顺序。
//
// 返回新的切片，输入切片的顺序不受影响；元素指针与输入共享。
type StableSortNode struct{}

func (n *StableSortNode) Name() string        { return "rerank.stable_sort" }
func (n *StableSortNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *StableSortNode) Process(
	_ context.Context,
	_ *core.RankContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	out := make([]*core.Candidate, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Utility > out[j].Utility
	})
	return out, nil
}
