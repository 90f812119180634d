package model

import "github.com/rushteam/evrank/feature"

// UtilityModel 是打分阶段的最小抽象：输入缩放后的特征向量与系数，输出一个可比较的效用分数。
// 默认实现为 LinearModel（点积）；实现方不得在内部做四舍五入，取整属于展示层。
type UtilityModel interface {
	Name() string
	Score(v feature.Vector, coeffs Coefficients) (float64, error)
}
