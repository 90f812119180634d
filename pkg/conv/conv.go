// Package conv 提供类型转换与数值展示工具，用于简化各模块中的重复逻辑。
package conv

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32、json.Number；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ParseFloat64 在 ToFloat64 的基础上额外接受数字字符串（去除首尾空白后解析）。
// 用于处理表单、JSON 中以字符串形式传入的数值。
func ParseFloat64(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return ToFloat64(v)
}

// IsFinite 报告 f 是否为有限实数（非 NaN、非 ±Inf）。
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Round 按 places 位小数四舍五入（远离零），仅用于展示层。
func Round(f float64, places int) float64 {
	if places < 0 || !IsFinite(f) {
		return f
	}
	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}

// RoundMap 对 map 中每个值调用 Round，返回新 map。
func RoundMap(m map[string]float64, places int) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = Round(v, places)
	}
	return out
}
