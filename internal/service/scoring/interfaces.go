package scoring

import (
	"context"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/synth"
)

// Service defines the startup pipeline interface
type Service interface {
	// Run synthesizes the dataset, trains the model, scores every record
	// and publishes the result
	Run(ctx context.Context) (*Result, error)
}

// Generator defines the synthetic data source interface
type Generator interface {
	// Generate produces a dataset from the given parameters
	Generate(ctx context.Context, params synth.Params) (*transaction.Dataset, error)
}

// Publisher defines the sink for the scored dataset
type Publisher interface {
	// Publish freezes the scored dataset and model metadata for readers
	Publish(dataset *transaction.Dataset, model store.ModelInfo) error
}
