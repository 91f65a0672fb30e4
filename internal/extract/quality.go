package extract

import (
	"math"

	"propiedades/internal/domain"
)

const (
	criticalWeight  = 2
	secondaryWeight = 1

	// built area may exceed the lot by this fraction before it counts as incoherent
	areaTolerance    = 0.05
	maxRoomsPerLevel = 5
)

// ScoreQuality rates an assembled record. It never fails; missing data only
// lowers the score.
func ScoreQuality(rec *domain.PropertyRecord) domain.QualityScore {
	c := rec.Characteristics
	q := domain.QualityScore{
		Completeness: completeness(rec),
		Coherence:    coherence(c),
		DataRichness: richness(rec),
	}
	q.Total = round2((q.Completeness + q.Coherence + q.DataRichness) / 3)
	return q
}

func completeness(rec *domain.PropertyRecord) float64 {
	c := rec.Characteristics
	fields := []struct {
		present bool
		weight  int
	}{
		{c.PropertyType != "" && c.PropertyType != domain.PropertyOther, criticalWeight},
		{c.OperationType != "" && c.OperationType != domain.OperationUnknown, criticalWeight},
		{rec.Price.Value != nil && rec.Price.IsValid, criticalWeight},
		{c.LotAreaM2 != nil || c.BuiltAreaM2 != nil, criticalWeight},
		{rec.Location.City != nil || rec.Location.Neighborhood != nil, criticalWeight},
		{c.BuiltAreaM2 != nil, secondaryWeight},
		{c.Bedrooms != nil, secondaryWeight},
		{c.Bathrooms != nil, secondaryWeight},
		{c.ParkingSpots != nil, secondaryWeight},
		{c.Levels != nil, secondaryWeight},
	}
	got, total := 0, 0
	for _, f := range fields {
		total += f.weight
		if f.present {
			got += f.weight
		}
	}
	return round2(100 * float64(got) / float64(total))
}

func coherence(c domain.Characteristics) float64 {
	score := 100.0
	if c.BuiltAreaM2 != nil && c.LotAreaM2 != nil && *c.BuiltAreaM2 > *c.LotAreaM2*(1+areaTolerance) {
		score -= 30
	}
	if c.Levels != nil && *c.Levels > 0 && c.BuiltAreaM2 == nil {
		score -= 20
	}
	if c.Bedrooms != nil && c.Levels != nil && *c.Bedrooms > *c.Levels*maxRoomsPerLevel {
		score -= 20
	}
	return math.Max(score, 0)
}

func richness(rec *domain.PropertyRecord) float64 {
	score := 100.0
	if rec.Location.Neighborhood == nil {
		score -= 20
	}
	if len(rec.Location.References) == 0 {
		score -= 10
	}
	if CountAmenities(rec.Amenities) == 0 {
		score -= 20
	}
	if rec.Characteristics.Condition == "" || rec.Characteristics.Condition == domain.ConditionUnspecified {
		score -= 10
	}
	return math.Max(score, 0)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
