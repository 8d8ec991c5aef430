package schema

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lindenhill/gqljit/ast"
)

func coerceInt(v interface{}) (interface{}, bool) {
	switch v := v.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int8:
		return int(v), true
	case uint8:
		return int(v), true
	case int16:
		return int(v), true
	case uint16:
		return int(v), true
	case int32:
		return int(v), true
	case uint32:
		if v <= math.MaxInt32 {
			return int(v), true
		}
	case int64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int(v), true
		}
	case uint64:
		if v <= math.MaxInt32 {
			return int(v), true
		}
	case int:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return int(v), true
		}
	case uint:
		if v <= math.MaxInt32 {
			return int(v), true
		}
	case float32:
		return coerceInt(float64(v))
	case float64:
		if n := math.Trunc(v); n == v && n >= math.MinInt32 && n <= math.MaxInt32 {
			return int(n), true
		}
	}
	return nil, false
}

// IntType implements the Int type as defined by the GraphQL spec: a signed 32-bit integer.
var IntType = &ScalarType{
	Name: "Int",
	ParseLiteral: func(v ast.Value) (interface{}, bool) {
		if iv, ok := v.(*ast.IntValue); ok {
			if n, err := strconv.ParseInt(iv.Value, 10, 32); err == nil {
				return int(n), true
			}
		}
		return nil, false
	},
	ParseValue: coerceInt,
	Serialize: func(v interface{}) (interface{}, error) {
		if n, ok := coerceInt(v); ok {
			return n, nil
		}
		return nil, fmt.Errorf("cannot represent value as Int: %v", v)
	},
}

func coerceFloat(v interface{}) (interface{}, bool) {
	switch v := v.(type) {
	case bool:
		if v {
			return 1.0, true
		}
		return 0.0, true
	case int8:
		return float64(v), true
	case uint8:
		return float64(v), true
	case int16:
		return float64(v), true
	case uint16:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int:
		return float64(v), true
	case uint:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// FloatType implements the Float type as defined by the GraphQL spec.
var FloatType = &ScalarType{
	Name: "Float",
	ParseLiteral: func(v ast.Value) (interface{}, bool) {
		switch v := v.(type) {
		case *ast.IntValue:
			if n, err := strconv.ParseFloat(v.Value, 64); err == nil {
				return n, true
			}
		case *ast.FloatValue:
			if n, err := strconv.ParseFloat(v.Value, 64); err == nil {
				return n, true
			}
		}
		return nil, false
	},
	ParseValue: coerceFloat,
	Serialize: func(v interface{}) (interface{}, error) {
		if n, ok := coerceFloat(v); ok {
			return n, nil
		}
		return nil, fmt.Errorf("cannot represent value as Float: %v", v)
	},
}

func coerceString(v interface{}) (interface{}, bool) {
	s, ok := v.(string)
	return s, ok
}

// StringType implements the String type as defined by the GraphQL spec.
var StringType = &ScalarType{
	Name: "String",
	ParseLiteral: func(v ast.Value) (interface{}, bool) {
		if sv, ok := v.(*ast.StringValue); ok {
			return sv.Value, true
		}
		return nil, false
	},
	ParseValue: coerceString,
	Serialize: func(v interface{}) (interface{}, error) {
		if s, ok := coerceString(v); ok {
			return s, nil
		}
		return nil, fmt.Errorf("cannot represent value as String: %v", v)
	},
}

func coerceBoolean(v interface{}) (interface{}, bool) {
	b, ok := v.(bool)
	return b, ok
}

// BooleanType implements the Boolean type as defined by the GraphQL spec.
var BooleanType = &ScalarType{
	Name: "Boolean",
	ParseLiteral: func(v ast.Value) (interface{}, bool) {
		if bv, ok := v.(*ast.BooleanValue); ok {
			return bv.Value, true
		}
		return nil, false
	},
	ParseValue: coerceBoolean,
	Serialize: func(v interface{}) (interface{}, error) {
		if b, ok := coerceBoolean(v); ok {
			return b, nil
		}
		return nil, fmt.Errorf("cannot represent value as Boolean: %v", v)
	},
}

func coerceIDResult(v interface{}) (interface{}, bool) {
	switch v := v.(type) {
	case int8, uint8, int16, uint16, int32, uint32, int64, uint, int:
		return fmt.Sprintf("%d", v), true
	case uint64:
		if v <= math.MaxInt64 {
			return strconv.FormatInt(int64(v), 10), true
		}
	case string:
		return v, true
	}
	return nil, false
}

// IDType implements the ID type as defined by the GraphQL spec. It accepts a string or integer on
// input, but always serializes to a string.
var IDType = &ScalarType{
	Name: "ID",
	ParseLiteral: func(v ast.Value) (interface{}, bool) {
		switch v := v.(type) {
		case *ast.IntValue:
			if n, err := strconv.ParseInt(v.Value, 10, 0); err == nil {
				return int(n), true
			}
		case *ast.StringValue:
			return v.Value, true
		}
		return nil, false
	},
	ParseValue: func(v interface{}) (interface{}, bool) {
		switch v := v.(type) {
		case int:
			return v, true
		case float64:
			if n := int(math.Trunc(v)); float64(n) == v {
				return n, true
			}
		case string:
			return v, true
		}
		return nil, false
	},
	Serialize: func(v interface{}) (interface{}, error) {
		if s, ok := coerceIDResult(v); ok {
			return s, nil
		}
		return nil, fmt.Errorf("cannot represent value as ID: %v", v)
	},
}

// BuiltInTypes holds every scalar defined directly by the GraphQL spec, keyed by name.
var BuiltInTypes = map[string]*ScalarType{
	"Int":     IntType,
	"Float":   FloatType,
	"String":  StringType,
	"Boolean": BooleanType,
	"ID":      IDType,
}
