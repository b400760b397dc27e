package boost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/boost"
)

func TestMatrix_Append(t *testing.T) {
	m := boost.NewMatrix([]string{"amount", "oauth_valid"})

	require.NoError(t, m.Append([]float64{10.5, 1}))
	require.NoError(t, m.Append([]float64{99.0, 0}))

	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, 99.0, m.At(1, 0))
	assert.Equal(t, []float64{10.5, 1}, m.Row(0))
}

func TestMatrix_Append_WidthMismatch(t *testing.T) {
	m := boost.NewMatrix([]string{"amount"})

	err := m.Append([]float64{1, 2})

	assert.Error(t, err)
	assert.Zero(t, m.Rows())
}

func TestMatrix_Column(t *testing.T) {
	m := boost.NewMatrix([]string{"a", "b"})
	require.NoError(t, m.Append([]float64{1, 10}))
	require.NoError(t, m.Append([]float64{2, 20}))
	require.NoError(t, m.Append([]float64{3, 30}))

	assert.Equal(t, []float64{10, 20, 30}, m.Column(1))
	assert.Equal(t, 6.0, m.ColumnSum(0))
	assert.Equal(t, []string{"a", "b"}, m.Names())
}
