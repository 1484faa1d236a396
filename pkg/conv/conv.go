// Package conv 提供从 YAML/JSON 解析结果（map[string]any）中读取配置值的工具。
// YAML 解码出的数字可能是 int 也可能是 float64，这里统一兼容。
package conv

import "fmt"

// ToFloat64 将数值类型的 any 转为 float64；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
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
	case uint64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ToInt 将数值类型的 any 转为 int（浮点截断）。
func ToInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// SliceAnyToString 将 []any 转为 []string：字符串原样保留，数字按整数格式化，其它类型跳过。
func SliceAnyToString(v any) []string {
	switch raw := v.(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, e := range raw {
			if s, ok := e.(string); ok {
				out = append(out, s)
				continue
			}
			if f, ok := ToFloat64(e); ok {
				out = append(out, fmt.Sprintf("%.0f", f))
			}
		}
		return out
	default:
		return nil
	}
}

// ConfigGet 按 key 取 T，取不到或类型不符时返回 defaultVal。
func ConfigGet[T any](m map[string]any, key string, defaultVal T) T {
	if m == nil {
		return defaultVal
	}
	t, ok := m[key].(T)
	if !ok {
		return defaultVal
	}
	return t
}

// ConfigGetInt64 按 key 取整数，兼容 int / int64 / float64。
func ConfigGetInt64(m map[string]any, key string, defaultVal int64) int64 {
	if m == nil {
		return defaultVal
	}
	n, ok := ToInt(m[key])
	if !ok {
		return defaultVal
	}
	return int64(n)
}

// ConfigGetFloat64 按 key 取浮点数，兼容整数写法（例如 YAML 中的 `weight: 1`）。
func ConfigGetFloat64(m map[string]any, key string, defaultVal float64) float64 {
	if m == nil {
		return defaultVal
	}
	if _, isBool := m[key].(bool); isBool {
		return defaultVal
	}
	f, ok := ToFloat64(m[key])
	if !ok {
		return defaultVal
	}
	return f
}
