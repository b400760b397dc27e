package transaction

import (
	"fmt"
	"strings"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
)

// Region identifies the market a transaction originated from. The set is
// closed: the synthesizer assigns regions uniformly from it and the encoder
// builds its vocabulary over it.
type Region string

// Supported regions
const (
	RegionNortheast Region = "Northeast"
	RegionMidwest   Region = "Midwest"
	RegionSouth     Region = "South"
	RegionWest      Region = "West"
)

var supportedRegions = map[Region]bool{
	RegionNortheast: true,
	RegionMidwest:   true,
	RegionSouth:     true,
	RegionWest:      true,
}

// DefaultRegions returns the supported regions in canonical display order.
func DefaultRegions() []Region {
	return []Region{RegionNortheast, RegionMidwest, RegionSouth, RegionWest}
}

// ParseRegion normalizes and validates a region name
func ParseRegion(s string) (Region, error) {
	normalized := strings.TrimSpace(s)
	for _, r := range DefaultRegions() {
		if strings.EqualFold(normalized, string(r)) {
			return r, nil
		}
	}

	return "", errors.NewValidationError("UNKNOWN_REGION",
		fmt.Sprintf("region '%s' is not supported", s))
}

// Valid reports whether the region belongs to the supported set
func (r Region) Valid() bool {
	return supportedRegions[r]
}

func (r Region) String() string {
	return string(r)
}
