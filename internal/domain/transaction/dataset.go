package transaction

// Dataset is an ordered, in-memory collection of scored transactions. The
// startup pipeline builds exactly one and never mutates it afterwards, so
// readers can filter and aggregate without locking.
type Dataset struct {
	records []*Transaction
}

func NewDataset(records []*Transaction) *Dataset {
	return &Dataset{records: records}
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the full record slice in generation order. Callers must
// treat it as read-only.
func (d *Dataset) Records() []*Transaction {
	return d.records
}

// FilterByRegion returns the transactions from the given region, preserving
// their original order. A region with no transactions yields an empty slice.
func (d *Dataset) FilterByRegion(region Region) []*Transaction {
	filtered := make([]*Transaction, 0)
	for _, t := range d.records {
		if t.Region == region {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// FraudCount returns the number of records labeled fraudulent
func (d *Dataset) FraudCount() int {
	count := 0
	for _, t := range d.records {
		if t.FraudLabel {
			count++
		}
	}
	return count
}

// Regions returns the regions present in the dataset in canonical order
func (d *Dataset) Regions() []Region {
	present := make(map[Region]bool, len(supportedRegions))
	for _, t := range d.records {
		present[t.Region] = true
	}

	regions := make([]Region, 0, len(present))
	for _, r := range DefaultRegions() {
		if present[r] {
			regions = append(regions, r)
		}
	}
	return regions
}

// Summary describes the dataset for the overview endpoint
type Summary struct {
	TotalCount int            `json:"total_count"`
	FraudCount int            `json:"fraud_count"`
	FraudRate  float64        `json:"fraud_rate"`
	ByRegion   map[Region]int `json:"by_region"`
	MeanAmount float64        `json:"mean_amount"`
	MaxAmount  float64        `json:"max_amount"`
}

func (d *Dataset) Summary() Summary {
	s := Summary{
		TotalCount: len(d.records),
		ByRegion:   make(map[Region]int),
	}

	var sum float64
	for _, t := range d.records {
		if t.FraudLabel {
			s.FraudCount++
		}
		s.ByRegion[t.Region]++

		amount := t.AmountValue()
		sum += amount
		if amount > s.MaxAmount {
			s.MaxAmount = amount
		}
	}

	if s.TotalCount > 0 {
		s.FraudRate = float64(s.FraudCount) / float64(s.TotalCount)
		s.MeanAmount = sum / float64(s.TotalCount)
	}

	return s
}
