package synth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/synth"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *synth.Params)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(p *synth.Params) {},
		},
		{
			name:    "zero count",
			mutate:  func(p *synth.Params) { p.Count = 0 },
			wantErr: true,
		},
		{
			name:    "negative count",
			mutate:  func(p *synth.Params) { p.Count = -5 },
			wantErr: true,
		},
		{
			name:    "count above cap",
			mutate:  func(p *synth.Params) { p.Count = 2_000_000 },
			wantErr: true,
		},
		{
			name:    "zero seed",
			mutate:  func(p *synth.Params) { p.Seed = 0 },
			wantErr: true,
		},
		{
			name:    "negative seed",
			mutate:  func(p *synth.Params) { p.Seed = -2025 },
			wantErr: true,
		},
		{
			name:    "zero fraction",
			mutate:  func(p *synth.Params) { p.FraudFraction = 0 },
			wantErr: true,
		},
		{
			name:    "fraction of one",
			mutate:  func(p *synth.Params) { p.FraudFraction = 1 },
			wantErr: true,
		},
		{
			name:    "negative fraction",
			mutate:  func(p *synth.Params) { p.FraudFraction = -0.1 },
			wantErr: true,
		},
		{
			name:    "empty regions",
			mutate:  func(p *synth.Params) { p.Regions = nil },
			wantErr: true,
		},
		{
			name:    "unsupported region",
			mutate:  func(p *synth.Params) { p.Regions = []transaction.Region{"Atlantis"} },
			wantErr: true,
		},
		{
			name:    "zero sigma",
			mutate:  func(p *synth.Params) { p.Normal.Sigma = 0 },
			wantErr: true,
		},
		{
			name:    "negative sigma",
			mutate:  func(p *synth.Params) { p.Outlier.Sigma = -0.5 },
			wantErr: true,
		},
		{
			name:    "oauth rate above one",
			mutate:  func(p *synth.Params) { p.OAuthValidRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative two-fa rate",
			mutate:  func(p *synth.Params) { p.FraudTwoFAPassRate = -0.2 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := synth.DefaultParams()
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeGeneration),
					"expected a generation error, got %v", err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestParams_FraudCount(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		fraction float64
		expected int
	}{
		{name: "thousand at ten percent", count: 1000, fraction: 0.10, expected: 100},
		{name: "rounds half up", count: 10, fraction: 0.25, expected: 3},
		{name: "rounds down below half", count: 100, fraction: 0.124, expected: 12},
		{name: "small dataset", count: 7, fraction: 0.5, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := synth.DefaultParams()
			params.Count = tt.count
			params.FraudFraction = tt.fraction

			assert.Equal(t, tt.expected, params.FraudCount())
		})
	}
}
