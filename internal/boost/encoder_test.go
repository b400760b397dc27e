package boost_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/boost"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
)

func fittedEncoder(t *testing.T) *boost.Encoder {
	t.Helper()
	enc := boost.NewEncoder()
	require.NoError(t, enc.Fit([]string{"Northeast", "Midwest", "South", "West"}))
	return enc
}

func TestEncoder_Fit(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		wantErr    bool
	}{
		{name: "four regions", categories: []string{"Northeast", "Midwest", "South", "West"}},
		{name: "single category", categories: []string{"only"}},
		{name: "empty vocabulary", categories: nil, wantErr: true},
		{name: "duplicate category", categories: []string{"a", "b", "a"}, wantErr: true},
		{name: "empty category name", categories: []string{"a", ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := boost.NewEncoder()
			err := enc.Fit(tt.categories)

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeEncoding))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, len(tt.categories)-1, enc.Width())
			assert.Equal(t, tt.categories, enc.Categories())
		})
	}
}

func TestEncoder_Transform(t *testing.T) {
	enc := fittedEncoder(t)

	tests := []struct {
		name     string
		category string
		expected []float64
	}{
		{name: "reference level encodes as zeros", category: "Northeast", expected: []float64{0, 0, 0}},
		{name: "second category", category: "Midwest", expected: []float64{1, 0, 0}},
		{name: "third category", category: "South", expected: []float64{0, 1, 0}},
		{name: "last category", category: "West", expected: []float64{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, err := enc.Transform(tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, vec)
		})
	}
}

func TestEncoder_Transform_UnknownCategory(t *testing.T) {
	enc := fittedEncoder(t)

	vec, err := enc.Transform("Atlantis")

	assert.Nil(t, vec)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, boost.ErrUnknownCategory))
	assert.True(t, errors.IsType(err, errors.ErrorTypeEncoding))
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestEncoder_Transform_NotFitted(t *testing.T) {
	enc := boost.NewEncoder()

	_, err := enc.Transform("Northeast")

	assert.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeEncoding))
}

func TestEncoder_Transform_Pure(t *testing.T) {
	enc := fittedEncoder(t)

	first, err := enc.Transform("South")
	require.NoError(t, err)
	second, err := enc.Transform("South")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, &first[0], &second[0], "transform must allocate fresh vectors")
}

func TestEncoder_FeatureNames(t *testing.T) {
	enc := fittedEncoder(t)

	names := enc.FeatureNames("region")

	assert.Equal(t, []string{"region_Midwest", "region_South", "region_West"}, names)
}
