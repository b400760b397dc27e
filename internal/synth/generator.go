package synth

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/values"
)

// Generator synthesizes labeled transaction datasets. It is stateless: all
// randomness comes from the seed in Params, so generation is reproducible.
type Generator struct {
	logger *zap.Logger
}

func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate produces exactly params.Count transactions with exactly
// params.FraudCount() fraud labels. Fraud rows draw their amount from the
// outlier component and flip their auth flags with the fraud rates; label
// positions come from a seeded shuffle, so labels are spread across the
// dataset rather than clustered.
func (g *Generator) Generate(ctx context.Context, params Params) (*transaction.Dataset, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := rand.NewPCG(uint64(params.Seed), uint64(params.Seed))
	rng := rand.New(src)

	normalAmount := distuv.LogNormal{Mu: params.Normal.Mu, Sigma: params.Normal.Sigma, Src: src}
	outlierAmount := distuv.LogNormal{Mu: params.Outlier.Mu, Sigma: params.Outlier.Sigma, Src: src}

	legitOAuth := distuv.Bernoulli{P: params.OAuthValidRate, Src: src}
	legitTwoFA := distuv.Bernoulli{P: params.TwoFAPassRate, Src: src}
	fraudOAuth := distuv.Bernoulli{P: params.FraudOAuthValidRate, Src: src}
	fraudTwoFA := distuv.Bernoulli{P: params.FraudTwoFAPassRate, Src: src}

	fraudCount := params.FraudCount()
	fraudAt := make([]bool, params.Count)
	for _, idx := range rng.Perm(params.Count)[:fraudCount] {
		fraudAt[idx] = true
	}

	records := make([]*transaction.Transaction, 0, params.Count)
	for i := 0; i < params.Count; i++ {
		isFraud := fraudAt[i]
		region := params.Regions[rng.IntN(len(params.Regions))]

		var raw float64
		var oauthValid, twoFAPassed bool
		if isFraud {
			raw = outlierAmount.Rand()
			oauthValid = fraudOAuth.Rand() == 1
			twoFAPassed = fraudTwoFA.Rand() == 1
		} else {
			raw = normalAmount.Rand()
			oauthValid = legitOAuth.Rand() == 1
			twoFAPassed = legitTwoFA.Rand() == 1
		}

		amount, err := values.NewMoneyFromFloat(raw, values.USD)
		if err != nil {
			return nil, errors.NewGenerationError("INVALID_AMOUNT",
				"synthesized amount is not representable").WithCause(err)
		}

		txn, err := transaction.NewTransaction(amount.RoundToNearestCent(), region, oauthValid, twoFAPassed, isFraud)
		if err != nil {
			return nil, errors.NewGenerationError("RECORD_REJECTED",
				"synthesized record failed validation").WithCause(err)
		}

		records = append(records, txn)
	}

	g.logger.Info("dataset synthesized",
		zap.Int("records", len(records)),
		zap.Int("fraud_labels", fraudCount),
		zap.Int64("seed", params.Seed),
		zap.Int("regions", len(params.Regions)),
	)

	return transaction.NewDataset(records), nil
}
