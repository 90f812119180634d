package model

import (
	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/feature"
)

// Coefficients 是用户的系数向量：特征 key -> 权重。
//
// 从存储中解析出的系数按原样返回，不在解析阶段校验；
// 是否包含全部六个特征 key 由 Validate 在打分前检查。多余的 key 会被忽略。
type Coefficients map[string]float64

// Source 标记本次使用的系数来源。
type Source string

const (
	SourceDefault  Source = "default"  // 用户不存在或未保存系数，使用内置默认值
	SourceResolved Source = "resolved" // 使用存储中训练好的用户系数
)

// LabelCoeffSource 是候选与请求上下文上记录系数来源的 Label key。
const LabelCoeffSource = "coeff_source"

var defaultCoefficients = [len(feature.Keys)]float64{
	-0.5, // price
	0.8,  // range
	-0.3, // efficiency
	-0.5, // acceleration
	0.6,  // fast_charge
	0.4,  // seat_count
}

// DefaultCoefficients 返回默认系数向量的副本，调用方修改返回值不会影响后续调用。
func DefaultCoefficients() Coefficients {
	c := make(Coefficients, len(feature.Keys))
	for i, key := range feature.Keys {
		c[key] = defaultCoefficients[i]
	}
	return c
}

// Validate 按固定顺序检查全部特征 key，返回第一个缺失 key 的 MissingCoefficient。
func (c Coefficients) Validate() error {
	for _, key := range feature.Keys {
		if _, ok := c[key]; !ok {
			return core.MissingCoefficient(key)
		}
	}
	return nil
}

// Clone 返回浅拷贝。
func (c Coefficients) Clone() Coefficients {
	if c == nil {
		return nil
	}
	out := make(Coefficients, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
