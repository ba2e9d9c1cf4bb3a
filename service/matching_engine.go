package service

import "math"

// DefaultTolerance is the absolute price band (in price units, not percent)
// within which a requested price is considered matched against the live
// snapshot price.
const DefaultTolerance = 1.0

// MatchingEngine decides whether an order should fill given the live price.
type MatchingEngine struct {
	Tolerance float64
}

func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{Tolerance: DefaultTolerance}
}

// Matches reports whether the live snapshot price is within tolerance of the
// requested price.
func (e *MatchingEngine) Matches(requestedPrice, livePrice float64) bool {
	return math.Abs(livePrice-requestedPrice) <= e.Tolerance
}
