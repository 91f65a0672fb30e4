package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"propiedades/internal/domain"
	"propiedades/internal/extract"
	"propiedades/internal/gazetteer"
	"propiedades/internal/shared"
)

// ExtractOptions maps configured price windows and exchange rates onto the
// pipeline's options.
func ExtractOptions(c shared.Config) extract.Options {
	o := extract.DefaultOptions()
	o.Sale = extract.PriceBounds(c.Sale)
	o.Rent = extract.PriceBounds(c.Rent)
	if c.USDRate > 0 {
		o.Rates[domain.CurrencyUSD] = c.USDRate
	}
	if c.EURRate > 0 {
		o.Rates[domain.CurrencyEUR] = c.EURRate
	}
	return o
}

// NewPipeline loads the gazetteer (GAZETTEER_PATH, else the embedded copy)
// and builds the extraction pipeline from configuration.
func NewPipeline(c shared.Config) (*extract.Pipeline, error) {
	var (
		g   *gazetteer.Gazetteer
		err error
	)
	if c.GazetteerPath != "" {
		g, err = gazetteer.LoadFile(c.GazetteerPath)
	} else {
		g, err = gazetteer.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}
	cities, hoods, marks := g.Counts()
	log.Info().
		Int("version", g.Version()).
		Int("cities", cities).
		Int("neighborhoods", hoods).
		Int("landmarks", marks).
		Msg("gazetteer loaded")
	return extract.NewPipeline(g, ExtractOptions(c)), nil
}
