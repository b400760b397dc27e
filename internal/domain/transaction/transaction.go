package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/validation"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/values"
)

// Transaction is a single payment record. FraudLabel is the ground truth the
// classifier trains on; FraudProbability is the model's score, nil until the
// startup pipeline assigns it and immutable afterwards.
type Transaction struct {
	ID          uuid.UUID    `json:"id"`
	Amount      values.Money `json:"amount"`
	Region      Region       `json:"region"`
	OAuthValid  bool         `json:"oauth_valid"`
	TwoFAPassed bool         `json:"two_fa_passed"`
	FraudLabel  bool         `json:"fraud_label"`

	FraudProbability *float64 `json:"fraud_probability,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewTransaction(amount values.Money, region Region, oauthValid, twoFAPassed, fraudLabel bool) (*Transaction, error) {
	if err := validation.ValidateAmount(amount.ToFloat64(), "amount"); err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	if !region.Valid() {
		return nil, fmt.Errorf("unknown region: %s", region)
	}

	return &Transaction{
		ID:          uuid.New(),
		Amount:      amount,
		Region:      region,
		OAuthValid:  oauthValid,
		TwoFAPassed: twoFAPassed,
		FraudLabel:  fraudLabel,
		CreatedAt:   time.Now(),
	}, nil
}

// ApplyScore records the model's fraud probability for the transaction
func (t *Transaction) ApplyScore(probability float64) error {
	if err := validation.ValidateProbability(probability, "fraud probability"); err != nil {
		return fmt.Errorf("invalid score: %w", err)
	}

	t.FraudProbability = &probability
	return nil
}

// Scored reports whether the model has assigned a probability yet
func (t *Transaction) Scored() bool {
	return t.FraudProbability != nil
}

// ProbabilityValue returns the assigned fraud probability, or 0 when unscored
func (t *Transaction) ProbabilityValue() float64 {
	if t.FraudProbability == nil {
		return 0
	}
	return *t.FraudProbability
}

// AmountValue returns the amount as a float for feature extraction
func (t *Transaction) AmountValue() float64 {
	return t.Amount.ToFloat64()
}
