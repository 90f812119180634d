// Package evrank 按用户训练好的线性偏好模型给电动车打分与排序。
//
// 设计要点：
//   - 系数解析（model.CoefficientStore）：key 不存在时回退到默认系数；值损坏时报错而不是静默回退
//   - 特征缩放（feature.Scaler）：固定顺序、固定除数，缺失/null 视为 0
//   - 效用打分（model.LinearModel）：缩放向量与系数的点积，核心层不做取整
//   - 排序（rank.Ranker）：批量只解析一次系数，严格大于才更新 best，稳定降序
//
// 展示层（webui、mcpserver）只做输入解析与输出格式化。
package evrank

import (
	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/pipeline"
	"github.com/rushteam/evrank/rank"
)

// 轻量 facade：便于直接 import "evrank" 使用核心抽象。
type (
	Candidate = core.Candidate
	Pipeline  = pipeline.Pipeline
	Node      = pipeline.Node
	Kind      = pipeline.Kind
	Ranker    = rank.Ranker
	Result    = rank.Result
)

const (
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)
