package synth

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/validation"
)

// AmountComponent is one log-normal component of the amount mixture. Mu and
// Sigma are on the log scale, so exp(Mu) is the component's median amount.
type AmountComponent struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma" validate:"gt=0"`
}

// Params controls dataset synthesis. The same params and seed always produce
// the same records.
type Params struct {
	Count         int     `json:"count"`
	Seed          int64   `json:"seed"`
	FraudFraction float64 `json:"fraud_fraction"`

	Regions []transaction.Region `json:"regions"`

	// Normal covers routine spend; Outlier is the heavy tail fraud draws from.
	Normal  AmountComponent `json:"normal"`
	Outlier AmountComponent `json:"outlier"`

	OAuthValidRate      float64 `json:"oauth_valid_rate" validate:"gte=0,lte=1"`
	TwoFAPassRate       float64 `json:"two_fa_pass_rate" validate:"gte=0,lte=1"`
	FraudOAuthValidRate float64 `json:"fraud_oauth_valid_rate" validate:"gte=0,lte=1"`
	FraudTwoFAPassRate  float64 `json:"fraud_two_fa_pass_rate" validate:"gte=0,lte=1"`
}

var paramsValidator = validator.New()

// DefaultParams returns the synthesis profile the dashboard ships with:
// a thousand transactions, a tenth of them fraudulent, with fraud skewed
// toward large amounts and failed authentication.
func DefaultParams() Params {
	return Params{
		Count:         1000,
		Seed:          2025,
		FraudFraction: 0.10,
		Regions:       transaction.DefaultRegions(),
		Normal:        AmountComponent{Mu: math.Log(80), Sigma: 0.6},
		Outlier:       AmountComponent{Mu: math.Log(2400), Sigma: 0.85},

		OAuthValidRate:      0.97,
		TwoFAPassRate:       0.92,
		FraudOAuthValidRate: 0.55,
		FraudTwoFAPassRate:  0.30,
	}
}

// Validate rejects parameter sets the generator cannot honor
func (p Params) Validate() error {
	if err := validation.ValidateCount(p.Count); err != nil {
		return errors.NewGenerationError("INVALID_COUNT", err.Error())
	}

	if err := validation.ValidateSeed(p.Seed); err != nil {
		return errors.NewGenerationError("INVALID_SEED", err.Error())
	}

	// Both classes must be representable, so the fraction is open at 0 and 1
	if p.FraudFraction <= 0 || p.FraudFraction >= 1 {
		return errors.NewGenerationError("INVALID_FRACTION",
			fmt.Sprintf("fraud fraction must be in (0, 1), got %g", p.FraudFraction))
	}

	if len(p.Regions) == 0 {
		return errors.NewGenerationError("EMPTY_REGIONS", "at least one region is required")
	}

	for _, r := range p.Regions {
		if !r.Valid() {
			return errors.NewGenerationError("UNKNOWN_REGION",
				fmt.Sprintf("region '%s' is not supported", r))
		}
	}

	if err := paramsValidator.Struct(p); err != nil {
		return errors.NewGenerationError("INVALID_PARAMS",
			"synthesis parameters failed validation").WithCause(err)
	}

	return nil
}

// FraudCount returns the exact number of fraud labels the generator assigns
func (p Params) FraudCount() int {
	return int(math.Round(float64(p.Count) * p.FraudFraction))
}
