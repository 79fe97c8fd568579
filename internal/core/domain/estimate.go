package domain

import "time"

// ResultValue is one computed output read back after recalculation.
type ResultValue struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Address string    `json:"address"`
	Value   CellValue `json:"value"`
}

// Estimate is one completed calculation: the inputs written and the
// results read back within the same editing session.
type Estimate struct {
	ID        string         `json:"id"`
	Inputs    EstimateInputs `json:"inputs"`
	Results   []ResultValue  `json:"results"`
	Document  DocumentRef    `json:"document"`
	Backend   string         `json:"backend"`
	CreatedAt time.Time      `json:"created_at"`
}

// Result returns the result with key, and false when absent.
func (e *Estimate) Result(key string) (ResultValue, bool) {
	for _, r := range e.Results {
		if r.Key == key {
			return r, true
		}
	}
	return ResultValue{}, false
}
