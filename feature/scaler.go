package feature

import (
	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/pkg/conv"
)

// Keys 是特征 key 的固定顺序，系数向量与缩放后的特征向量都按此顺序对齐。
var Keys = [6]string{"price", "range", "efficiency", "acceleration", "fast_charge", "seat_count"}

// Vector 是缩放后的特征向量，顺序与 Keys 一致。
type Vector [len(Keys)]float64

// divisors 与训练数据的缩放保持一致：
//
//	price/1000, range/100, efficiency/10, acceleration 不缩放, fast_charge/100, seat_count 不缩放
var divisors = Vector{1000, 100, 10, 1, 100, 1}

// Divisor 返回 key 对应的缩放除数；未知 key 返回 (0, false)。
func Divisor(key string) (float64, bool) {
	for i, k := range Keys {
		if k == key {
			return divisors[i], true
		}
	}
	return 0, false
}

// Scaler 将原始候选记录转换为固定顺序的数值向量。
//
// 规则：
//   - key 缺失或值为 null：先取 0.0 再做除法（结果为 0）
//   - 数值类型、json.Number、bool、数字字符串均可转换
//   - 无法转换或结果非有限实数（NaN/Inf）：返回 InvalidFeatureValue(key)
//
// Scaler 无状态，可在并发请求间共享。
type Scaler struct{}

func NewScaler() *Scaler { return &Scaler{} }

func (s *Scaler) Name() string { return "fixed_divisor" }

// Scale 对一条原始记录做缩放，记录中的其它字段（如 name）被忽略。
func (s *Scaler) Scale(fields map[string]any) (Vector, error) {
	var v Vector
	for i, key := range Keys {
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}
		f, ok := conv.ParseFloat64(raw)
		if !ok || !conv.IsFinite(f) {
			return Vector{}, core.InvalidFeatureValue(key, raw)
		}
		v[i] = f / divisors[i]
	}
	return v, nil
}
