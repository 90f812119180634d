package model

import (
	"github.com/rushteam/evrank/feature"
)

// LinearModel 实现了线性效用模型：
//
//	utility = sum(scaled_i * coeff_i)，i 按 feature.Keys 的固定顺序
//
// 与逻辑回归不同，这里既没有偏置项也没有 Sigmoid 变换，输出即为原始效用值。
// 系数在打分前一次性校验（eager），缺失时返回 MissingCoefficient，且不会产出部分结果。
type LinearModel struct{}

func NewLinearModel() *LinearModel { return &LinearModel{} }

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Score(v feature.Vector, coeffs Coefficients) (float64, error) {
	if err := coeffs.Validate(); err != nil {
		return 0, err
	}
	var utility float64
	for i, key := range feature.Keys {
		utility += v[i] * coeffs[key]
	}
	return utility, nil
}

var _ UtilityModel = (*LinearModel)(nil)
