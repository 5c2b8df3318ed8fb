package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

func TestKruskalWallisIdenticalGroups(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i + 1)
	}
	groups := map[string][]float64{
		"a": append([]float64(nil), values...),
		"b": append([]float64(nil), values...),
		"c": append([]float64(nil), values...),
	}
	result, err := KruskalWallis(groups)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DF)
	assert.InDelta(t, 0.0, result.H, 1e-6)
	assert.Greater(t, result.PValue, 0.99)
}

func TestKruskalWallisSeparatedGroups(t *testing.T) {
	groups := map[string][]float64{}
	centers := map[string]float64{"fast": 1, "medium": 5, "slow": 50}
	for name, center := range centers {
		for i := 0; i < 20; i++ {
			groups[name] = append(groups[name], center+float64(i)*0.01)
		}
	}
	result, err := KruskalWallis(groups)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DF)
	assert.Greater(t, result.H, 10.0)
	assert.Less(t, result.PValue, 0.01)
}

func TestKruskalWallisAllValuesEqual(t *testing.T) {
	groups := map[string][]float64{
		"a": {3, 3, 3, 3, 3},
		"b": {3, 3, 3, 3, 3},
	}
	result, err := KruskalWallis(groups)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.PValue)
}

func TestKruskalWallisInsufficientSample(t *testing.T) {
	_, err := KruskalWallis(map[string][]float64{"only": {1, 2, 3, 4, 5, 6}})
	assert.ErrorIs(t, err, ErrInsufficientSample)

	_, err = KruskalWallis(map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {1, 2, 3}, // below MinGroupSize
	})
	assert.ErrorIs(t, err, ErrInsufficientSample)
}

func TestBoroughTest(t *testing.T) {
	var rows []models.ServiceRequest
	for i := 0; i < 20; i++ {
		rows = append(rows, requestRow("Brooklyn", "Phone", "Noise", 1+float64(i)*0.1))
		rows = append(rows, requestRow("Queens", "Phone", "Noise", 20+float64(i)*0.1))
	}
	result, err := BoroughTest(rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DF)
	assert.Less(t, result.PValue, 0.01)
}
