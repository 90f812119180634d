package pipeline

import (
	"context"

	"github.com/rushteam/evrank/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindRank   Kind = "rank"   // 排序阶段：对候选打分
	KindReRank Kind = "rerank" // 重排阶段：在打分结果上排序/调整
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RankContext,
		items []*core.Candidate,
	) ([]*core.Candidate, error)
}
