package store

import (
	"fmt"
	"sort"
	"strconv"
)

// value kinds, in sort order
const (
	kindNumber = iota
	kindBool
	kindString
	kindOther
)

func kindOf(v interface{}) int {
	switch v.(type) {
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return kindNumber
	case bool:
		return kindBool
	case string:
		return kindString
	}
	return kindOther
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// FormatValue renders an attribute value the way it is matched in a
// `field = 'value'` comparison.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	if kindOf(v) == kindNumber {
		return strconv.FormatFloat(toFloat(v), 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// ValueKey identifies a value for grouping. Values that render to the same
// text share a key, so 1, 1.0 and "1" group together as they match together.
func ValueKey(v interface{}) string {
	return FormatValue(v)
}

func valueType(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return "string"
	case bool:
		return "bool"
	case float32, float64:
		return "float"
	default:
		if kindOf(x) == kindNumber {
			return "int"
		}
	}
	return "other"
}

// CompareValues orders numbers numerically, then booleans, then strings
// lexically. It returns -1, 0 or 1.
func CompareValues(a, b interface{}) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}

	switch ka {
	case kindNumber:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case kindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	}

	sa, sb := FormatValue(a), FormatValue(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// SortValues sorts values ascending with CompareValues.
func SortValues(values []interface{}) {
	sort.SliceStable(values, func(i, j int) bool {
		return CompareValues(values[i], values[j]) < 0
	})
}
