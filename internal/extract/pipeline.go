package extract

import (
	"fmt"
	"strings"

	"propiedades/internal/domain"
	"propiedades/internal/gazetteer"
)

// StageGate names the stage that produced a RejectionReport.
const StageGate = "validity_gate"

// Pipeline assembles records. It holds only read-only state and may be shared
// by any number of goroutines.
type Pipeline struct {
	g    *gazetteer.Gazetteer
	opts Options
}

func NewPipeline(g *gazetteer.Gazetteer, opts Options) *Pipeline {
	return &Pipeline{g: g, opts: opts}
}

// Process turns one raw listing into either a record (accepted or rejected)
// or, when the validity gate refuses it, a rejection report.
func (p *Pipeline) Process(in domain.RawListing) domain.Outcome {
	now := p.opts.now().UTC()

	gate := EvaluateGate(in.Title, in.Description)
	if !gate.Accepted {
		return domain.Outcome{Rejection: &domain.RejectionReport{
			ID:      in.ID,
			Stage:   StageGate,
			Reasons: gate.Reasons,
			Title:   in.Title,
			SeenAt:  now,
		}}
	}

	var diag []string
	text := strings.TrimSpace(in.Title + "\n" + in.Description)

	rawPrice := strings.TrimSpace(in.RawPrice)
	provisional := NormalizePrice(rawPrice, domain.OperationUnknown, p.opts)
	if provisional.Value == nil {
		if found := priceFromText(text); found != "" {
			if rawPrice != "" {
				diag = append(diag, fmt.Sprintf("price: raw value %q unparseable, using %q from description", rawPrice, found))
			} else {
				diag = append(diag, fmt.Sprintf("price: taken from description (%q)", found))
			}
			rawPrice = found
			provisional = NormalizePrice(rawPrice, domain.OperationUnknown, p.opts)
		}
	}

	op, evidence := ClassifyOperation(text+"\n"+in.RawPrice, provisional.Value)
	if evidence == "price" {
		diag = append(diag, "operation_type: inferred from price magnitude")
	}
	price := NormalizePrice(rawPrice, op, p.opts)
	price.MaintenanceIncluded, price.MaintenanceFee = extractMaintenance(text)

	pt, subtype := ClassifyPropertyType(text)
	loc := ResolveLocation(p.g, text, in.LocationHint, in.CityHint)
	ch := ExtractCharacteristics(text, pt, now)
	ch.OperationType = op
	ch.Subtype = subtype

	rec := &domain.PropertyRecord{
		ID:                  in.ID,
		SourceURL:           in.SourceURL,
		Title:               in.Title,
		RawDescription:      in.Description,
		ExtractionTimestamp: now,
		Price:               price,
		Location:            loc,
		Characteristics:     ch,
		Amenities:           ExtractAmenities(text),
		Legal:               ExtractLegalStatus(text),
		Seller:              ExtractSeller(in.Seller, text),
		Metadata:            domain.RecordMetadata{Gate: gate.Categories},
	}

	diag = append(diag, missingAttributes(ch)...)
	rec.ValidationErrors = validate(rec)
	rec.Metadata.Errors = append(diag, rec.ValidationErrors...)
	if rec.Metadata.Errors == nil {
		rec.Metadata.Errors = []string{}
	}
	rec.Quality = ScoreQuality(rec)

	rec.Status = domain.StatusAccepted
	if len(rec.ValidationErrors) > 0 {
		rec.Status = domain.StatusRejected
	}
	return domain.Outcome{Record: rec}
}

// validate checks the required fields and collects every failure.
func validate(rec *domain.PropertyRecord) []string {
	errs := []string{}
	c := rec.Characteristics
	if c.PropertyType == domain.PropertyOther {
		errs = append(errs, "property_type: could not be determined")
	}
	if c.OperationType == domain.OperationUnknown {
		errs = append(errs, "operation_type: could not be determined")
	}
	switch {
	case rec.Price.Value == nil:
		errs = append(errs, "price: no numeric value found")
	case !rec.Price.IsValid:
		reason := "out of range"
		if rec.Price.Message != nil {
			reason = *rec.Price.Message
		}
		errs = append(errs, "price: "+reason)
	}
	if rec.Location.City == nil && rec.Location.Neighborhood == nil {
		errs = append(errs, "location: neither city nor neighborhood found")
	}
	return errs
}

func missingAttributes(c domain.Characteristics) []string {
	var out []string
	if c.LotAreaM2 == nil && c.BuiltAreaM2 == nil {
		out = append(out, "area: no lot or built area found")
	}
	if c.PropertyType != domain.PropertyLand {
		if c.Bedrooms == nil && (c.PropertyType == domain.PropertyHouse || c.PropertyType == domain.PropertyHouseInCondo || c.PropertyType == domain.PropertyApartment) {
			out = append(out, "bedrooms: not found")
		}
		if c.Bathrooms == nil {
			out = append(out, "bathrooms: not found")
		}
	}
	return out
}
