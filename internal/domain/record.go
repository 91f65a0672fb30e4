package domain

import "time"

type ExtractedPrice struct {
	Text                string   `json:"text"`
	Value               *float64 `json:"value"`
	Currency            Currency `json:"currency"`
	IsValid             bool     `json:"is_valid"`
	Confidence          float64  `json:"confidence"`
	Message             *string  `json:"message,omitempty"`
	Formatted           string   `json:"formatted,omitempty"`
	MaintenanceIncluded bool     `json:"maintenance_included"`
	MaintenanceFee      *float64 `json:"maintenance_fee,omitempty"`
}

type Coordinates struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type Location struct {
	City         *string     `json:"city"`
	State        *string     `json:"state,omitempty"`
	Neighborhood *string     `json:"neighborhood"`
	Street       *string     `json:"street"`
	References   []string    `json:"references"`
	Coordinates  Coordinates `json:"coordinates"`
}

type Characteristics struct {
	PropertyType  PropertyType  `json:"property_type"`
	Subtype       string        `json:"subtype,omitempty"`
	OperationType OperationType `json:"operation_type"`
	LotAreaM2     *float64      `json:"lot_area_m2"`
	BuiltAreaM2   *float64      `json:"built_area_m2"`
	Bedrooms      *int          `json:"bedrooms"`
	Bathrooms     *float64      `json:"bathrooms"`
	Levels        *int          `json:"levels"`
	IsSingleLevel bool          `json:"is_single_level"`
	GrowthOption  bool          `json:"growth_option"`
	ParkingSpots  *int          `json:"parking_spots"`
	AgeYears      *int          `json:"age_years"`
	Condition     Condition     `json:"condition"`
}

type Amenities struct {
	Pool           bool     `json:"pool"`
	Garden         bool     `json:"garden"`
	Security       bool     `json:"security"`
	Terrace        bool     `json:"terrace"`
	Study          bool     `json:"study"`
	RoofGarden     bool     `json:"roof_garden"`
	Patio          bool     `json:"patio"`
	Storage        bool     `json:"storage"`
	ServiceRoom    bool     `json:"service_room"`
	Laundry        bool     `json:"laundry"`
	Gym            bool     `json:"gym"`
	Palapa         bool     `json:"palapa"`
	Grill          bool     `json:"grill"`
	Playground     bool     `json:"playground"`
	Clubhouse      bool     `json:"clubhouse"`
	SolarHeater    bool     `json:"solar_heater"`
	Cistern        bool     `json:"cistern"`
	Elevator       bool     `json:"elevator"`
	Furnished      bool     `json:"furnished"`
	AirConditioned bool     `json:"air_conditioning"`
	Other          []string `json:"other"`
}

type LegalStatus struct {
	HasTitleDeed     bool            `json:"has_title_deed"`
	RightsAssignment bool            `json:"rights_assignment"`
	Ejido            bool            `json:"ejido"`
	PaymentMethods   []PaymentMethod `json:"payment_methods"`
}

type SellerInfo struct {
	Name       string     `json:"name"`
	Kind       SellerKind `json:"kind"`
	ProfileURL string     `json:"profile_url"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
}

type QualityScore struct {
	Completeness float64 `json:"completeness"`
	Coherence    float64 `json:"coherence"`
	DataRichness float64 `json:"data_richness"`
	Total        float64 `json:"total"`
}

type RecordMetadata struct {
	Errors []string `json:"errores"`
	Gate   []string `json:"indicadores,omitempty"`
}

type PropertyRecord struct {
	ID                  string          `json:"id"`
	SourceURL           string          `json:"source_url"`
	Title               string          `json:"title"`
	RawDescription      string          `json:"raw_description"`
	ExtractionTimestamp time.Time       `json:"extraction_timestamp"`
	Status              RecordStatus    `json:"status"`
	Price               ExtractedPrice  `json:"price"`
	Location            Location        `json:"location"`
	Characteristics     Characteristics `json:"characteristics"`
	Amenities           Amenities       `json:"amenities"`
	Legal               LegalStatus     `json:"legal"`
	Seller              SellerInfo      `json:"seller"`
	Quality             QualityScore    `json:"quality_score"`
	ValidationErrors    []string        `json:"validation_errors"`
	Metadata            RecordMetadata  `json:"metadata"`
}

// Valid reports whether the record passed required-field validation.
func (r PropertyRecord) Valid() bool {
	return r.Status == StatusAccepted && len(r.ValidationErrors) == 0
}

// RejectionReport is produced when the validity gate decides the item is not
// a property listing. No record exists for it.
type RejectionReport struct {
	ID      string    `json:"id"`
	Stage   string    `json:"stage"`
	Reasons []string  `json:"reasons"`
	Title   string    `json:"title,omitempty"`
	SeenAt  time.Time `json:"seen_at"`
}

// Outcome is exactly one of Record or Rejection.
type Outcome struct {
	Record    *PropertyRecord  `json:"record,omitempty"`
	Rejection *RejectionReport `json:"rejection,omitempty"`
}
