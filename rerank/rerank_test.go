package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/evrank/core"
)

func candidates(utilities ...float64) []*core.Candidate {
	out := make([]*core.Candidate, 0, len(utilities))
	for i, u := range utilities {
		c := core.NewCandidate(map[string]any{"idx": i})
		c.Utility = u
		out = append(out, c)
	}
	return out
}

func indices(cs []*core.Candidate) []int {
	out := make([]int, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Fields["idx"].(int))
	}
	return out
}

func TestStableSortNode(t *testing.T) {
	tests := []struct {
		name      string
		utilities []float64
		want      []int
	}{
		{name: "descending", utilities: []float64{1, 3, 2}, want: []int{1, 2, 0}},
		{name: "ties keep input order", utilities: []float64{2, 5, 2, 5, 2}, want: []int{1, 3, 0, 2, 4}},
		{name: "all equal", utilities: []float64{-1, -1, -1}, want: []int{0, 1, 2}},
		{name: "single", utilities: []float64{-23.03}, want: []int{0}},
		{name: "negative values", utilities: []float64{-25.49, -23.03, -23.54}, want: []int{1, 2, 0}},
	}

	n := &StableSortNode{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := candidates(tt.utilities...)
			out, err := n.Process(context.Background(), core.NewRankContext("u"), in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, indices(out))
			// 输入切片顺序不变
			for i, c := range in {
				assert.Equal(t, i, c.Fields["idx"])
			}
		})
	}
}

func TestTopNNode(t *testing.T) {
	in := candidates(3, 2, 1)
	tests := []struct {
		n    int
		want int
	}{
		{n: 0, want: 3},
		{n: -1, want: 3},
		{n: 2, want: 2},
		{n: 3, want: 3},
		{n: 10, want: 3},
	}
	for _, tt := range tests {
		out, err := (&TopNNode{N: tt.n}).Process(context.Background(), nil, in)
		require.NoError(t, err)
		assert.Len(t, out, tt.want, "N=%d", tt.n)
	}
}
