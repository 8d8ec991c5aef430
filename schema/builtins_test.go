package schema

import (
	"testing"

	"github.com/lindenhill/gqljit/ast"
	"github.com/stretchr/testify/assert"
)

func TestCoerceInt(t *testing.T) {
	for _, tc := range []struct {
		Value    interface{}
		Expected int
	}{
		{Value: true, Expected: 1},
		{Value: false, Expected: 0},
		{Value: int8(1), Expected: 1},
		{Value: uint8(1), Expected: 1},
		{Value: int16(1), Expected: 1},
		{Value: uint16(1), Expected: 1},
		{Value: int32(1), Expected: 1},
		{Value: uint32(1), Expected: 1},
		{Value: int64(1), Expected: 1},
		{Value: uint64(1), Expected: 1},
		{Value: int(1), Expected: 1},
		{Value: uint(1), Expected: 1},
		{Value: float32(1.0), Expected: 1},
		{Value: float64(1.0), Expected: 1},
	} {
		v, ok := coerceInt(tc.Value)
		assert.True(t, ok)
		assert.Equal(t, tc.Expected, v)
	}

	_, ok := coerceInt("foo")
	assert.False(t, ok)
}

func TestCoerceFloat(t *testing.T) {
	for _, tc := range []struct {
		Value    interface{}
		Expected float64
	}{
		{Value: true, Expected: 1},
		{Value: false, Expected: 0},
		{Value: int8(1), Expected: 1},
		{Value: uint8(1), Expected: 1},
		{Value: int16(1), Expected: 1},
		{Value: uint16(1), Expected: 1},
		{Value: int32(1), Expected: 1},
		{Value: uint32(1), Expected: 1},
		{Value: int64(1), Expected: 1},
		{Value: uint64(1), Expected: 1},
		{Value: int(1), Expected: 1},
		{Value: uint(1), Expected: 1},
		{Value: float32(1.0), Expected: 1},
		{Value: float64(1.0), Expected: 1},
	} {
		v, ok := coerceFloat(tc.Value)
		assert.True(t, ok)
		assert.Equal(t, tc.Expected, v)
	}

	_, ok := coerceFloat("foo")
	assert.False(t, ok)
}

func TestFloatType(t *testing.T) {
	v, ok := FloatType.ParseLiteral(&ast.IntValue{Value: "1"})
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	v, ok = FloatType.ParseLiteral(&ast.FloatValue{Value: "1.0"})
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestIDType(t *testing.T) {
	v, ok := IDType.ParseLiteral(&ast.IntValue{Value: "1"})
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = IDType.ParseLiteral(&ast.StringValue{Value: "1"})
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	for _, tc := range []struct {
		Value    interface{}
		Expected interface{}
	}{
		{Value: 1, Expected: 1},
		{Value: 1.0, Expected: 1},
		{Value: "1", Expected: "1"},
	} {
		v, ok := IDType.ParseValue(tc.Value)
		assert.True(t, ok)
		assert.Equal(t, tc.Expected, v)
	}

	_, ok = IDType.ParseValue([]int{})
	assert.False(t, ok)

	for _, tc := range []struct {
		Value    interface{}
		Expected string
	}{
		{Value: int8(1), Expected: "1"},
		{Value: uint8(1), Expected: "1"},
		{Value: int16(1), Expected: "1"},
		{Value: uint16(1), Expected: "1"},
		{Value: int32(1), Expected: "1"},
		{Value: uint32(1), Expected: "1"},
		{Value: int64(1), Expected: "1"},
		{Value: uint64(1), Expected: "1"},
		{Value: int(1), Expected: "1"},
		{Value: uint(1), Expected: "1"},
		{Value: "1", Expected: "1"},
	} {
		v, err := IDType.Serialize(tc.Value)
		assert.NoError(t, err)
		assert.Equal(t, tc.Expected, v)
	}

	_, err := IDType.Serialize([]int{})
	assert.Error(t, err)
}
