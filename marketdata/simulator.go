package marketdata

import (
	"math/rand"
	"time"

	"github.com/ashutosh-187/Paper-Trading-platform-backend/models"
	"github.com/ashutosh-187/Paper-Trading-platform-backend/utils"
)

// Simulator produces price/volume ticks for one instrument using Brownian
// motion: each step moves the price by 1% of itself times a standard normal
// draw, floored at 0.05.
type Simulator struct {
	InstrumentID   string
	InstrumentName string

	price float64
	rng   *rand.Rand
}

// NewSimulator seeds the simulator with a starting price in [10, 200).
func NewSimulator(instrumentID, instrumentName string, rng *rand.Rand) *Simulator {
	return &Simulator{
		InstrumentID:   instrumentID,
		InstrumentName: instrumentName,
		price:          10 + rng.Float64()*190,
		rng:            rng,
	}
}

// Tick advances the price one step and returns the resulting market update.
func (s *Simulator) Tick() models.Tick {
	z := s.rng.NormFloat64()
	s.price += s.price * 0.01 * z
	if s.price < 0.05 {
		s.price = 0.05
	}

	return models.Tick{
		InstrumentID:   s.InstrumentID,
		InstrumentName: s.InstrumentName,
		Price:          utils.Round2(s.price),
		Volume:         10 + s.rng.Int63n(4990),
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
	}
}
