package rank

import (
	"context"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/feature"
	"github.com/rushteam/evrank/model"
	"github.com/rushteam/evrank/pipeline"
)

// UtilityNode 对候选逐个打分，保持输入顺序不变（排序交给 rerank.StableSortNode）。
//   - 写入 item.Utility
//   - 写入 labels：coeff_source（default / resolved）、rank_model
//
// Coefficients 在构造时确定，同一批候选共享同一组系数。
type UtilityNode struct {
	Scaler       *feature.Scaler
	Model        model.UtilityModel
	Coefficients model.Coefficients
	Source       model.Source
}

func (n *UtilityNode) Name() string        { return "rank.utility" }
func (n *UtilityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *UtilityNode) Process(
	_ context.Context,
	_ *core.RankContext,
	items []*core.Candidate,
) ([]*core.Candidate, error) {
	for _, it := range items {
		if it == nil {
			return nil, core.MalformedCandidateInput(nil)
		}
		v, err := n.Scaler.Scale(it.Fields)
		if err != nil {
			return nil, err
		}
		utility, err := n.Model.Score(v, n.Coefficients)
		if err != nil {
			return nil, err
		}
		it.Utility = utility
		it.PutLabel(model.LabelCoeffSource, core.Label{Value: string(n.Source), Source: "model"})
		it.PutLabel("rank_model", core.Label{Value: n.Model.Name(), Source: "rank"})
	}
	return items, nil
}
