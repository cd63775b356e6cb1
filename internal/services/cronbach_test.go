package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCronbachAlphaIdenticalItems(t *testing.T) {
	// every respondent rates all items the same way
	matrix := [][]float64{
		{5, 5, 5},
		{4, 4, 4},
		{2, 2, 2},
		{1, 1, 1},
	}
	assert.InDelta(t, 1.0, CronbachAlpha(matrix), 1e-9)
}

func TestCronbachAlphaClamped(t *testing.T) {
	matrix := [][]float64{
		{1, 5, 3},
		{2, 4, 4},
		{4, 2, 5},
		{5, 1, 1},
	}
	got := CronbachAlpha(matrix)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestCronbachAlphaDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, CronbachAlpha(nil))
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{{4, 4}}))
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{{4}, {2}}))
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{{3, 3}, {3, 3}}))
	assert.Equal(t, 0.0, CronbachAlpha([][]float64{{1, 2}, {3}}))
}
