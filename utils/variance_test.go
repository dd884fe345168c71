package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateVariance(t *testing.T) {
	assert.Equal(t, 0.0, CalculateVariance([]float64{5}, 5))
	assert.InDelta(t, 4.0, CalculateVariance([]int{2, 4, 4, 4, 5, 5, 7, 9}, 5), 1e-9)
}

func TestCalculateNormalizedVariance(t *testing.T) {
	assert.InDelta(t, 0.16, CalculateNormalizedVariance([]int{2, 4, 4, 4, 5, 5, 7, 9}, 5), 1e-9)
	assert.Equal(t, 0.0, CalculateNormalizedVariance([]float64{0, 0}, 0))
	assert.Equal(t, 0.0, CalculateNormalizedVariance([]float64{10, 10, 10}, 10))
}
