package conv

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{name: "float64", in: 6.1, want: 6.1, wantOK: true},
		{name: "int", in: 5, want: 5, wantOK: true},
		{name: "int64", in: int64(45000), want: 45000, wantOK: true},
		{name: "float32", in: float32(0.5), want: 0.5, wantOK: true},
		{name: "json.Number", in: json.Number("170"), want: 170, wantOK: true},
		{name: "bad json.Number", in: json.Number("abc"), wantOK: false},
		{name: "bool true", in: true, want: 1, wantOK: true},
		{name: "bool false", in: false, want: 0, wantOK: true},
		{name: "numeric string", in: " 1e3 ", want: 1000, wantOK: true},
		{name: "non-numeric string", in: "fast", wantOK: false},
		{name: "empty string", in: "", wantOK: false},
		{name: "nil", in: nil, wantOK: false},
		{name: "slice", in: []float64{1}, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFloat64(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestToFloat64_RejectsStrings(t *testing.T) {
	_, ok := ToFloat64("42")
	assert.False(t, ok)
}

func TestRound(t *testing.T) {
	assert.Equal(t, -23.03, Round(-23.030000000000005, 4))
	assert.Equal(t, 0.1235, Round(0.12345678, 4))
	assert.Equal(t, -0.1235, Round(-0.12345678, 4))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, 1.23456, Round(1.23456, -1))
	assert.True(t, math.IsNaN(Round(math.NaN(), 4)))
	assert.True(t, math.IsInf(Round(math.Inf(1), 4), 1))
}

func TestRoundMap(t *testing.T) {
	assert.Equal(t,
		map[string]float64{"price": -0.1235, "range": 0.8},
		RoundMap(map[string]float64{"price": -0.123456, "range": 0.8}, 4))
	assert.Nil(t, RoundMap(nil, 4))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(0))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(-1)))
}
