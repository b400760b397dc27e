package boost

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/floats"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
)

// Config controls gradient-boosted training
type Config struct {
	Rounds         int     `json:"rounds" validate:"gt=0,lte=1000"`
	MaxDepth       int     `json:"max_depth" validate:"gte=1,lte=12"`
	LearningRate   float64 `json:"learning_rate" validate:"gt=0,lte=1"`
	MinSamplesLeaf int     `json:"min_samples_leaf" validate:"gte=1"`
}

var configValidator = validator.New()

// DefaultConfig returns the training profile the dashboard ships with: ten
// shallow trees, enough to separate the synthetic classes without memorizing
// individual rows.
func DefaultConfig() Config {
	return Config{
		Rounds:         10,
		MaxDepth:       3,
		LearningRate:   0.3,
		MinSamplesLeaf: 5,
	}
}

func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.NewTrainingError("INVALID_CONFIG",
			"training configuration failed validation").WithCause(err)
	}
	return nil
}

// Classifier is a gradient-boosted ensemble of regression trees on logistic
// loss. A prediction is sigmoid(base score + learning rate * summed leaf
// scores), so probabilities are always finite and within [0, 1].
type Classifier struct {
	cfg       Config
	baseScore float64
	trees     []*Tree
	losses    []float64
}

// Train fits an ensemble to binary labels. Training is deterministic given
// identical inputs: greedy exact splits with first-best tie breaking.
func Train(ctx context.Context, x *Matrix, y []float64, cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if x == nil || x.Rows() == 0 {
		return nil, errors.NewTrainingError("EMPTY_TRAINING_SET", "training requires at least one row")
	}

	if x.Rows() != len(y) {
		return nil, errors.NewTrainingError("LENGTH_MISMATCH",
			fmt.Sprintf("feature rows (%d) and labels (%d) differ", x.Rows(), len(y)))
	}

	for _, v := range y {
		if v != 0 && v != 1 {
			return nil, errors.NewTrainingError("NON_BINARY_LABEL",
				fmt.Sprintf("labels must be 0 or 1, got %g", v))
		}
	}

	n := x.Rows()
	positives := floats.Sum(y)
	if positives == 0 || positives == float64(n) {
		return nil, errors.NewTrainingError("SINGLE_CLASS",
			"labels contain a single class; the classifier has nothing to learn")
	}

	// Start every row at the log-odds of the positive rate
	prior := positives / float64(n)
	base := math.Log(prior / (1 - prior))

	score := make([]float64, n)
	for i := range score {
		score[i] = base
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	prob := make([]float64, n)

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	c := &Classifier{cfg: cfg, baseScore: base}
	for round := 0; round < cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			p := sigmoid(score[i])
			grad[i] = y[i] - p
			hess[i] = p * (1 - p)
		}

		builder := &treeBuilder{x: x, grad: grad, hess: hess, cfg: cfg}
		tree := &Tree{root: builder.build(indices, 0)}
		c.trees = append(c.trees, tree)

		for i := 0; i < n; i++ {
			score[i] += cfg.LearningRate * tree.Predict(x.Row(i))
			prob[i] = sigmoid(score[i])
		}
		c.losses = append(c.losses, logLoss(y, prob))
	}

	return c, nil
}

// PredictProba scores one feature vector
func (c *Classifier) PredictProba(x []float64) float64 {
	score := c.baseScore
	for _, t := range c.trees {
		score += c.cfg.LearningRate * t.Predict(x)
	}
	return sigmoid(score)
}

// Trees returns the fitted ensemble in round order
func (c *Classifier) Trees() []*Tree {
	return c.trees
}

// BaseScore returns the log-odds prior the ensemble starts from
func (c *Classifier) BaseScore() float64 {
	return c.baseScore
}

// Config returns the configuration the ensemble was trained with
func (c *Classifier) Config() Config {
	return c.cfg
}

// TrainLosses returns the training log-loss recorded after each round
func (c *Classifier) TrainLosses() []float64 {
	out := make([]float64, len(c.losses))
	copy(out, c.losses)
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// logLoss is the mean negative log-likelihood, with probabilities clamped
// away from 0 and 1 before the log
func logLoss(y, p []float64) float64 {
	const eps = 1e-12

	var sum float64
	for i := range y {
		pi := math.Min(math.Max(p[i], eps), 1-eps)
		if y[i] == 1 {
			sum -= math.Log(pi)
		} else {
			sum -= math.Log(1 - pi)
		}
	}
	return sum / float64(len(y))
}
