// Package extract turns free-form classified-ad text into a structured,
// confidence-scored property record. Everything here is a pure function of
// its input plus the read-only gazetteer; it never blocks and never logs.
package extract

import (
	"time"

	"propiedades/internal/domain"
)

const (
	// absolute plausibility bounds regardless of operation
	minAbsolutePrice = 0
	maxAbsolutePrice = 100_000_000
)

type PriceBounds struct {
	Min        float64
	Max        float64
	OptimalMin float64
	OptimalMax float64
}

func (b PriceBounds) contains(v float64) bool { return v >= b.Min && v <= b.Max }
func (b PriceBounds) optimal(v float64) bool  { return v >= b.OptimalMin && v <= b.OptimalMax }

type Options struct {
	Sale PriceBounds
	Rent PriceBounds
	// MXN per unit of foreign currency; only used to range-check foreign prices.
	Rates map[domain.Currency]float64
	Now   func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Sale: PriceBounds{Min: 500_000, Max: 50_000_000, OptimalMin: 500_000, OptimalMax: 20_000_000},
		Rent: PriceBounds{Min: 1_000, Max: 100_000, OptimalMin: 3_000, OptimalMax: 50_000},
		Rates: map[domain.Currency]float64{
			domain.CurrencyMXN: 1,
			domain.CurrencyUSD: 17.5,
			domain.CurrencyEUR: 19,
		},
		Now: time.Now,
	}
}

func (o Options) bounds(op domain.OperationType) (PriceBounds, bool) {
	switch op {
	case domain.OperationSale:
		return o.Sale, true
	case domain.OperationRent:
		return o.Rent, true
	}
	return PriceBounds{}, false
}

func (o Options) toMXN(v float64, c domain.Currency) float64 {
	if r, ok := o.Rates[c]; ok && r > 0 {
		return v * r
	}
	return v
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
