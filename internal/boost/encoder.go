package boost

import (
	"fmt"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
)

// ErrUnknownCategory is returned by Transform when a value was not part of
// the fitted vocabulary. Encoding is strict: an unseen category means the
// pipeline is inconsistent, so the caller must fail rather than guess.
var ErrUnknownCategory = errors.NewEncodingError("UNKNOWN_CATEGORY",
	"category is not in the fitted vocabulary")

// Encoder one-hot encodes a single categorical feature. The first fitted
// category is the reference level and gets no column, which keeps the encoded
// columns linearly independent of the intercept.
type Encoder struct {
	categories []string
	index      map[string]int
}

func NewEncoder() *Encoder {
	return &Encoder{index: make(map[string]int)}
}

// Fit learns the vocabulary in the order given
func (e *Encoder) Fit(categories []string) error {
	if len(categories) == 0 {
		return errors.NewEncodingError("EMPTY_VOCABULARY", "at least one category is required")
	}

	index := make(map[string]int, len(categories))
	for i, c := range categories {
		if c == "" {
			return errors.NewEncodingError("EMPTY_CATEGORY", "category names cannot be empty")
		}
		if _, dup := index[c]; dup {
			return errors.NewEncodingError("DUPLICATE_CATEGORY",
				fmt.Sprintf("category '%s' appears more than once", c))
		}
		index[c] = i
	}

	e.categories = make([]string, len(categories))
	copy(e.categories, categories)
	e.index = index
	return nil
}

// Transform encodes one value into a vector of Width() columns. The reference
// category encodes as the zero vector. Transform never mutates the encoder,
// so identical input always yields identical output.
func (e *Encoder) Transform(category string) ([]float64, error) {
	if len(e.categories) == 0 {
		return nil, errors.NewEncodingError("NOT_FITTED", "encoder has not been fitted")
	}

	idx, ok := e.index[category]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, ErrUnknownCategory)
	}

	vec := make([]float64, e.Width())
	if idx > 0 {
		vec[idx-1] = 1
	}
	return vec, nil
}

// Width returns the number of encoded columns (vocabulary size minus the
// reference level)
func (e *Encoder) Width() int {
	if len(e.categories) == 0 {
		return 0
	}
	return len(e.categories) - 1
}

// Categories returns the fitted vocabulary in order, reference level first
func (e *Encoder) Categories() []string {
	out := make([]string, len(e.categories))
	copy(out, e.categories)
	return out
}

// FeatureNames returns column names for the encoded vector, prefixed like
// "region_South". The reference level is omitted.
func (e *Encoder) FeatureNames(prefix string) []string {
	if e.Width() == 0 {
		return nil
	}
	names := make([]string, 0, e.Width())
	for _, c := range e.categories[1:] {
		names = append(names, prefix+"_"+c)
	}
	return names
}
