package rank

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/feature"
	"github.com/rushteam/evrank/logging"
	"github.com/rushteam/evrank/metrics"
	"github.com/rushteam/evrank/model"
	"github.com/rushteam/evrank/pipeline"
	"github.com/rushteam/evrank/rerank"
)

// Score 是单个候选的打分结果。
type Score struct {
	UserID       string
	Candidate    *core.Candidate
	Coefficients model.Coefficients
	Source       model.Source
}

// Result 是一批候选的排序结果。
//   - Scored：按输入顺序排列的打分结果
//   - Ranked：按 Utility 降序稳定排序的同一批候选
//   - Best：第一个达到最大效用的候选（与 Scored/Ranked 中的元素为同一指针）
type Result struct {
	UserID       string
	Coefficients model.Coefficients
	Source       model.Source
	Scored       []*core.Candidate
	Ranked       []*core.Candidate
	Best         *core.Candidate
}

// Ranker 组合 CoefficientStore、Scaler 与 UtilityModel，提供单个打分与批量排序。
//
// Ranker 不持有请求级状态，可被并发调用；每次调用都会重新解析系数并新建结果。
// 打分会写入传入候选的 Utility 与 Labels。
type Ranker struct {
	coefficients *model.CoefficientStore
	scaler       *feature.Scaler
	model        model.UtilityModel
	logger       *log.Logger
	metrics      *metrics.Metrics
}

// Option Ranker 配置选项
type Option func(*Ranker)

// WithModel 替换默认的 LinearModel
func WithModel(m model.UtilityModel) Option {
	return func(r *Ranker) {
		r.model = m
	}
}

// WithLogger 设置 logger
func WithLogger(l *log.Logger) Option {
	return func(r *Ranker) {
		r.logger = logging.OrDiscard(l)
	}
}

// WithMetrics 设置监控指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Ranker) {
		r.metrics = m
	}
}

func NewRanker(coefficients *model.CoefficientStore, opts ...Option) *Ranker {
	r := &Ranker{
		coefficients: coefficients,
		scaler:       feature.NewScaler(),
		model:        model.NewLinearModel(),
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ScoreOne 解析系数、缩放特征并计算单个候选的效用。
func (r *Ranker) ScoreOne(ctx context.Context, userID string, candidate *core.Candidate) (*Score, error) {
	if candidate == nil {
		return nil, r.fail(metrics.OpScoreOne, core.MalformedCandidateInput(nil))
	}
	coeffs, source, err := r.coefficients.Resolve(ctx, userID)
	if err != nil {
		return nil, r.fail(metrics.OpScoreOne, err)
	}

	rctx := r.newContext(userID, source)
	if _, err := r.scoring(coeffs, source).Run(ctx, rctx, []*core.Candidate{candidate}); err != nil {
		return nil, r.fail(metrics.OpScoreOne, err)
	}

	r.metrics.ObserveScore(metrics.OpScoreOne, 1)
	r.logger.Debug("scored candidate", "user_id", userID, "source", source, "utility", candidate.Utility)
	return &Score{
		UserID:       userID,
		Candidate:    candidate,
		Coefficients: coeffs,
		Source:       source,
	}, nil
}

// RankMany 对一批候选打分并排序。
//
// 系数只解析一次，全部候选使用同一组系数。Best 只在效用严格大于当前最优时才更新，
// 因此并列最大值时取输入中最靠前的候选。空列表返回 ErrEmptyCandidateList，且不会查询存储。
func (r *Ranker) RankMany(ctx context.Context, userID string, candidates []*core.Candidate) (*Result, error) {
	if len(candidates) == 0 {
		return nil, r.fail(metrics.OpRankMany, core.ErrEmptyCandidateList)
	}
	for _, c := range candidates {
		if c == nil {
			return nil, r.fail(metrics.OpRankMany, core.MalformedCandidateInput(nil))
		}
	}

	coeffs, source, err := r.coefficients.Resolve(ctx, userID)
	if err != nil {
		return nil, r.fail(metrics.OpRankMany, err)
	}

	rctx := r.newContext(userID, source)
	scored, err := r.scoring(coeffs, source).Run(ctx, rctx, candidates)
	if err != nil {
		return nil, r.fail(metrics.OpRankMany, err)
	}

	var best *core.Candidate
	bestUtility := math.Inf(-1)
	for _, c := range scored {
		if best == nil || c.Utility > bestUtility {
			best = c
			bestUtility = c.Utility
		}
	}

	sorting := &pipeline.Pipeline{Nodes: []pipeline.Node{&rerank.StableSortNode{}}}
	ranked, err := sorting.Run(ctx, rctx, scored)
	if err != nil {
		return nil, r.fail(metrics.OpRankMany, err)
	}

	r.metrics.ObserveScore(metrics.OpRankMany, len(candidates))
	r.logger.Debug("ranked candidates",
		"user_id", userID, "source", source, "count", len(scored), "best", best.Name(), "utility", best.Utility)
	return &Result{
		UserID:       userID,
		Coefficients: coeffs,
		Source:       source,
		Scored:       scored,
		Ranked:       ranked,
		Best:         best,
	}, nil
}

func (r *Ranker) scoring(coeffs model.Coefficients, source model.Source) *pipeline.Pipeline {
	return &pipeline.Pipeline{Nodes: []pipeline.Node{
		&UtilityNode{
			Scaler:       r.scaler,
			Model:        r.model,
			Coefficients: coeffs,
			Source:       source,
		},
	}}
}

func (r *Ranker) newContext(userID string, source model.Source) *core.RankContext {
	rctx := core.NewRankContext(userID)
	rctx.PutLabel(model.LabelCoeffSource, core.Label{Value: string(source), Source: "model"})
	return rctx
}

func (r *Ranker) fail(operation string, err error) error {
	code := "UNKNOWN"
	if domainErr := core.GetDomainError(err); domainErr != nil {
		code = domainErr.Code
	}
	r.metrics.ObserveScoreError(operation, code)
	return err
}
