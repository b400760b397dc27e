package fixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/values"
)

// TransactionBuilder builds test Transaction entities
type TransactionBuilder struct {
	t           *testing.T
	amount      values.Money
	region      transaction.Region
	oauthValid  bool
	twoFAPassed bool
	fraudLabel  bool
	probability *float64
}

// NewTransactionBuilder creates a new TransactionBuilder with defaults
func NewTransactionBuilder(t *testing.T) *TransactionBuilder {
	return &TransactionBuilder{
		t:           t,
		amount:      values.MustNewMoneyFromFloat(84.50, values.USD),
		region:      transaction.RegionNortheast,
		oauthValid:  true,
		twoFAPassed: true,
		fraudLabel:  false,
	}
}

// WithAmount sets the transaction amount in USD
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.amount = values.MustNewMoneyFromFloat(amount, values.USD)
	return b
}

// WithRegion sets the region
func (b *TransactionBuilder) WithRegion(region transaction.Region) *TransactionBuilder {
	b.region = region
	return b
}

// WithOAuthValid sets the oauth_valid flag
func (b *TransactionBuilder) WithOAuthValid(valid bool) *TransactionBuilder {
	b.oauthValid = valid
	return b
}

// WithTwoFAPassed sets the two_fa_passed flag
func (b *TransactionBuilder) WithTwoFAPassed(passed bool) *TransactionBuilder {
	b.twoFAPassed = passed
	return b
}

// WithFraudLabel sets the ground-truth label
func (b *TransactionBuilder) WithFraudLabel(fraud bool) *TransactionBuilder {
	b.fraudLabel = fraud
	return b
}

// WithProbability applies a fraud score after construction
func (b *TransactionBuilder) WithProbability(p float64) *TransactionBuilder {
	b.probability = &p
	return b
}

// Build creates the transaction, failing the test on invalid input
func (b *TransactionBuilder) Build() *transaction.Transaction {
	txn, err := transaction.NewTransaction(b.amount, b.region, b.oauthValid, b.twoFAPassed, b.fraudLabel)
	require.NoError(b.t, err)

	if b.probability != nil {
		require.NoError(b.t, txn.ApplyScore(*b.probability))
	}
	return txn
}

// BuildDataset creates a dataset with one default transaction per region
func BuildDataset(t *testing.T, regions ...transaction.Region) *transaction.Dataset {
	records := make([]*transaction.Transaction, 0, len(regions))
	for _, r := range regions {
		records = append(records, NewTransactionBuilder(t).WithRegion(r).Build())
	}
	return transaction.NewDataset(records)
}
