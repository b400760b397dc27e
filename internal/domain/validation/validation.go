package validation

import (
	"fmt"
	"math"
)

// ValidateAmount validates monetary amounts
func ValidateAmount(amount float64, fieldName string) error {
	// Check for special floating point values
	if math.IsNaN(amount) {
		return fmt.Errorf("%s cannot be NaN", fieldName)
	}

	if math.IsInf(amount, 0) {
		return fmt.Errorf("%s cannot be infinite", fieldName)
	}

	if amount < 0 {
		return fmt.Errorf("%s cannot be negative", fieldName)
	}

	// Check for values that would overflow when used in calculations
	if amount > 1e15 {
		return fmt.Errorf("%s too large (max 1 quadrillion)", fieldName)
	}

	// Check for reasonable maximum for actual business logic
	if amount > 1e9 { // 1 billion
		return fmt.Errorf("%s too large for business use (max 1 billion)", fieldName)
	}

	return nil
}

// ValidateProbability validates that a value is a finite probability in [0, 1]
func ValidateProbability(p float64, fieldName string) error {
	if math.IsNaN(p) {
		return fmt.Errorf("%s cannot be NaN", fieldName)
	}

	if math.IsInf(p, 0) {
		return fmt.Errorf("%s cannot be infinite", fieldName)
	}

	if p < 0 || p > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", fieldName, p)
	}

	return nil
}

// ValidateCount validates a record count for dataset synthesis
func ValidateCount(count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	// Cap keeps a single in-memory dataset at a size the dashboard can serve
	if count > 1_000_000 {
		return fmt.Errorf("count too large (max 1,000,000), got %d", count)
	}

	return nil
}

// ValidateSeed validates a random seed
func ValidateSeed(seed int64) error {
	if seed <= 0 {
		return fmt.Errorf("seed must be positive, got %d", seed)
	}

	return nil
}

// ValidateFraction validates a class fraction in [0, 1]
func ValidateFraction(fraction float64, fieldName string) error {
	if math.IsNaN(fraction) {
		return fmt.Errorf("%s cannot be NaN", fieldName)
	}

	if fraction < 0 || fraction > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %g", fieldName, fraction)
	}

	return nil
}

// ValidateRate validates a Bernoulli success rate in [0, 1]
func ValidateRate(rate float64, fieldName string) error {
	return ValidateFraction(rate, fieldName)
}
