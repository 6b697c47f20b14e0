package service

import (
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

// Criteria is the immutable input of one search run, built once from
// configuration and validated before the orchestrator ever sees it.
type Criteria struct {
	Origin      string
	Destination string
	StartDate   time.Time
	Flexibility int // +/- days around StartDate
	MinStay     int // days
	MaxStay     int // days
	MaxPrice    float64
	Currency    string
	Adults      int
	MaxResults  int
	NonStop     bool
}

func (c Criteria) Validate() error {
	if c.Origin == "" || c.Destination == "" {
		return fmt.Errorf("origin and destination are required")
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if c.Flexibility < 0 {
		return fmt.Errorf("flexibility must be >= 0, got %d", c.Flexibility)
	}
	if c.MinStay < 0 || c.MaxStay < 0 {
		return fmt.Errorf("stay bounds must be >= 0, got %d-%d", c.MinStay, c.MaxStay)
	}
	if c.MinStay > c.MaxStay {
		return fmt.Errorf("min stay %d exceeds max stay %d", c.MinStay, c.MaxStay)
	}
	if c.MaxPrice <= 0 {
		return fmt.Errorf("max price must be positive, got %v", c.MaxPrice)
	}
	if c.Adults < 1 {
		return fmt.Errorf("adults must be >= 1, got %d", c.Adults)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max results must be >= 1, got %d", c.MaxResults)
	}
	return nil
}

// PairCount is the number of API calls a run over these criteria will make.
func (c Criteria) PairCount() int {
	return (2*c.Flexibility + 1) * (c.MaxStay - c.MinStay + 1)
}
