package transaction_test

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/values"
)

func TestNewTransaction(t *testing.T) {
	tests := []struct {
		name        string
		amount      values.Money
		region      transaction.Region
		oauthValid  bool
		twoFAPassed bool
		fraudLabel  bool
		wantErr     bool
		validate    func(t *testing.T, txn *transaction.Transaction)
	}{
		{
			name:        "creates legitimate transaction",
			amount:      values.MustNewMoneyFromFloat(120.50, values.USD),
			region:      transaction.RegionNortheast,
			oauthValid:  true,
			twoFAPassed: true,
			fraudLabel:  false,
			validate: func(t *testing.T, txn *transaction.Transaction) {
				assert.NotEqual(t, uuid.Nil, txn.ID)
				assert.Equal(t, transaction.RegionNortheast, txn.Region)
				assert.True(t, txn.OAuthValid)
				assert.True(t, txn.TwoFAPassed)
				assert.False(t, txn.FraudLabel)
				assert.False(t, txn.Scored())
				assert.Nil(t, txn.FraudProbability)
				assert.NotZero(t, txn.CreatedAt)
			},
		},
		{
			name:        "creates fraudulent transaction",
			amount:      values.MustNewMoneyFromFloat(4800.00, values.USD),
			region:      transaction.RegionWest,
			oauthValid:  false,
			twoFAPassed: false,
			fraudLabel:  true,
			validate: func(t *testing.T, txn *transaction.Transaction) {
				assert.True(t, txn.FraudLabel)
				assert.False(t, txn.OAuthValid)
				assert.InDelta(t, 4800.00, txn.AmountValue(), 0.001)
			},
		},
		{
			name:    "rejects negative amount",
			amount:  values.MustNewMoneyFromFloat(-10.00, values.USD),
			region:  transaction.RegionSouth,
			wantErr: true,
		},
		{
			name:    "rejects unknown region",
			amount:  values.MustNewMoneyFromFloat(10.00, values.USD),
			region:  transaction.Region("Atlantis"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := transaction.NewTransaction(tt.amount, tt.region, tt.oauthValid, tt.twoFAPassed, tt.fraudLabel)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, txn)
			tt.validate(t, txn)
		})
	}
}

func TestTransaction_ApplyScore(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		wantErr     bool
	}{
		{name: "zero probability", probability: 0.0},
		{name: "mid probability", probability: 0.42},
		{name: "certain fraud", probability: 1.0},
		{name: "rejects negative", probability: -0.1, wantErr: true},
		{name: "rejects above one", probability: 1.1, wantErr: true},
		{name: "rejects NaN", probability: math.NaN(), wantErr: true},
		{name: "rejects infinity", probability: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := transaction.NewTransaction(
				values.MustNewMoneyFromFloat(50.00, values.USD),
				transaction.RegionMidwest, true, true, false,
			)
			require.NoError(t, err)

			err = txn.ApplyScore(tt.probability)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, txn.Scored())
				return
			}

			require.NoError(t, err)
			require.True(t, txn.Scored())
			assert.Equal(t, tt.probability, txn.ProbabilityValue())
		})
	}
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected transaction.Region
		wantErr  bool
	}{
		{name: "exact match", input: "Northeast", expected: transaction.RegionNortheast},
		{name: "lowercase", input: "midwest", expected: transaction.RegionMidwest},
		{name: "uppercase", input: "SOUTH", expected: transaction.RegionSouth},
		{name: "surrounding whitespace", input: "  West  ", expected: transaction.RegionWest},
		{name: "unknown region", input: "Atlantis", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := transaction.ParseRegion(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, region)
			assert.True(t, region.Valid())
		})
	}
}

func TestDefaultRegions(t *testing.T) {
	regions := transaction.DefaultRegions()

	assert.Len(t, regions, 4)
	assert.Equal(t, transaction.RegionNortheast, regions[0])
	assert.Equal(t, transaction.RegionWest, regions[3])

	for _, r := range regions {
		assert.True(t, r.Valid())
	}
}
