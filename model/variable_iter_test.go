package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarIter(t *testing.T) {
	assert := assert.New(t)

	v1 := testVar("V1", 2, []float64{0.5, 0.5})
	v2 := testVar("V2", 3, []float64{0.2, 0.3, 0.5})
	v3 := testVar("V3", 2, []float64{0.5, 0.5})

	vi, e := NewVariableIter([]*Variable{v1, v2, v3})
	assert.NoError(e)

	expected := [][]int{
		{0, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{0, 1, 1},
		{0, 2, 0},
		{0, 2, 1},
		{1, 0, 0},
		{1, 0, 1},
		{1, 1, 0},
		{1, 1, 1},
		{1, 2, 0},
		{1, 2, 1},
	}

	vals := make([]int, 3)
	curr := 0
	for {
		assert.NoError(vi.Val(vals))
		assert.Equal(expected[curr], vals)
		if !vi.Next() {
			break
		}
		curr++
	}

	assert.Equal(len(expected)-1, curr)
	assert.Equal([]int{0, 0, 0}, vi.lastVal)
}

func TestVarIterFixed(t *testing.T) {
	assert := assert.New(t)

	v1 := testVar("V1", 2, []float64{0.5, 0.5})
	v2 := testVar("V2", 3, []float64{0.2, 0.3, 0.5})
	v2.FixedVal = 2

	vi, e := NewVariableIter([]*Variable{v1, v2})
	assert.NoError(e)

	vals := make([]int, 2)
	seen := [][]int{}
	for {
		assert.NoError(vi.Val(vals))
		seen = append(seen, append([]int{}, vals...))
		if !vi.Next() {
			break
		}
	}

	assert.Equal([][]int{{0, 2}, {1, 2}}, seen)
}

func TestVarIterCorners(t *testing.T) {
	assert := assert.New(t)

	// Creation error
	_, e := NewVariableIter([]*Variable{})
	assert.Error(e)
	_, e = NewVariableIter(nil)
	assert.Error(e)

	v := testVar("V", 2, []float64{0.5, 0.5})
	vi, e := NewVariableIter([]*Variable{v})
	assert.NoError(e)

	// Value error
	vals := []int{}
	assert.Error(vi.Val(vals))

	// Working single var loop with oversized slice
	vals = []int{0, 0}
	assert.NoError(vi.Val(vals))
	assert.Equal([]int{0, 0}, vals)
	assert.True(vi.Next())
	assert.NoError(vi.Val(vals))
	assert.Equal([]int{1, 0}, vals)
	assert.False(vi.Next())
}
