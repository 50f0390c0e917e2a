package model

import "strconv"

// CompareValues 按操作符比较两个值。
// 等值比较走 interface 相等（数值先统一成 float64），
// 大小比较先做数值宽化，非数值一律不满足。
func CompareValues(left interface{}, operator string, right interface{}) bool {
	switch operator {
	case "==":
		return equalValues(left, right)
	case "!=":
		return !equalValues(left, right)
	case ">", ">=", "<", "<=":
		lf, lok := toFloat64(left)
		rf, rok := toFloat64(right)
		if !lok || !rok {
			return false
		}
		switch operator {
		case ">":
			return lf > rf
		case ">=":
			return lf >= rf
		case "<":
			return lf < rf
		default:
			return lf <= rf
		}
	default:
		return false
	}
}

func equalValues(left, right interface{}) bool {
	if lf, lok := toFloat64(left); lok {
		if rf, rok := toFloat64(right); rok {
			return lf == rf
		}
		return false
	}
	return left == right
}

// toFloat64 将常见数值类型宽化为 float64。
// 数字字符串也尝试解析，方便 YAML 中以字符串书写的阈值。
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
