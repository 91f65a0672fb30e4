package extract

import (
	"propiedades/internal/domain"
	"propiedades/internal/shared"
)

type amenityRule struct {
	tag      string
	synonyms []string
	flag     func(a *domain.Amenities) *bool
}

var amenityRules = []amenityRule{
	{"pool", []string{"alberca", "piscina", "chapoteadero", "pool"}, func(a *domain.Amenities) *bool { return &a.Pool }},
	{"garden", []string{"jardin", "jardines", "area verde", "areas verdes"}, func(a *domain.Amenities) *bool { return &a.Garden }},
	{"security", []string{"seguridad", "vigilancia", "caseta", "acceso controlado", "circuito cerrado", "camaras de seguridad", "seguridad 24"}, func(a *domain.Amenities) *bool { return &a.Security }},
	{"terrace", []string{"terraza", "balcon"}, func(a *domain.Amenities) *bool { return &a.Terrace }},
	{"study", []string{"estudio", "biblioteca", "home office"}, func(a *domain.Amenities) *bool { return &a.Study }},
	{"roof_garden", []string{"roof garden", "roofgarden", "roof top", "rooftop", "terraza en azotea"}, func(a *domain.Amenities) *bool { return &a.RoofGarden }},
	{"patio", []string{"patio", "patio de servicio"}, func(a *domain.Amenities) *bool { return &a.Patio }},
	{"storage", []string{"bodega", "cuarto de almacenamiento", "almacen"}, func(a *domain.Amenities) *bool { return &a.Storage }},
	{"service_room", []string{"cuarto de servicio", "cuarto de servicio con bano"}, func(a *domain.Amenities) *bool { return &a.ServiceRoom }},
	{"laundry", []string{"area de lavado", "cuarto de lavado", "lavanderia", "centro de lavado"}, func(a *domain.Amenities) *bool { return &a.Laundry }},
	{"gym", []string{"gimnasio", "gym"}, func(a *domain.Amenities) *bool { return &a.Gym }},
	{"palapa", []string{"palapa"}, func(a *domain.Amenities) *bool { return &a.Palapa }},
	{"grill", []string{"asador", "asadores", "area de asadores"}, func(a *domain.Amenities) *bool { return &a.Grill }},
	{"playground", []string{"juegos infantiles", "area de juegos", "area infantil"}, func(a *domain.Amenities) *bool { return &a.Playground }},
	{"clubhouse", []string{"casa club", "salon de eventos", "salon de usos multiples", "club house"}, func(a *domain.Amenities) *bool { return &a.Clubhouse }},
	{"solar_heater", []string{"calentador solar", "paneles solares", "celdas solares"}, func(a *domain.Amenities) *bool { return &a.SolarHeater }},
	{"cistern", []string{"cisterna", "aljibe"}, func(a *domain.Amenities) *bool { return &a.Cistern }},
	{"elevator", []string{"elevador", "ascensor"}, func(a *domain.Amenities) *bool { return &a.Elevator }},
	{"furnished", []string{"amueblado", "amueblada", "amueblados", "semi amueblado", "semiamueblado"}, func(a *domain.Amenities) *bool { return &a.Furnished }},
	{"air_conditioning", []string{"aire acondicionado", "minisplit", "minisplits", "clima"}, func(a *domain.Amenities) *bool { return &a.AirConditioned }},
}

// recognised amenities with no dedicated flag; reported verbatim in Other
var uncataloguedAmenities = []string{
	"chimenea", "jacuzzi", "sauna", "vapor", "cancha de tenis", "cancha de padel", "cancha",
	"pergola", "fuente", "huerto", "vista panoramica", "porton electrico", "hidroneumatico",
	"cocina integral", "closets", "vestidor", "calefaccion", "cuarto de juegos", "bar",
	"cava", "sala de tv", "family room", "jardin de ninos",
}

// ExtractAmenities sets every amenity flag with at least one synonym in text.
// Flags are independent of each other.
func ExtractAmenities(text string) domain.Amenities {
	folded := shared.Squash(shared.Fold(text))
	var a domain.Amenities
	for _, r := range amenityRules {
		if _, ok := shared.FirstWord(folded, r.synonyms); ok {
			*r.flag(&a) = true
		}
	}
	a.Other = []string{}
	for _, phrase := range uncataloguedAmenities {
		if shared.ContainsWord(folded, phrase) && !containsSubphrase(a.Other, phrase) {
			a.Other = append(a.Other, phrase)
		}
	}
	return a
}

// CountAmenities returns the number of amenities found, flagged or not.
func CountAmenities(a domain.Amenities) int {
	n := len(a.Other)
	for _, r := range amenityRules {
		if *r.flag(&a) {
			n++
		}
	}
	return n
}

// "cancha" is dropped when "cancha de tenis" was already reported
func containsSubphrase(have []string, phrase string) bool {
	for _, h := range have {
		if shared.ContainsWord(h, phrase) {
			return true
		}
	}
	return false
}

var (
	titleDeedSynonyms = []string{"escrituras", "escritura", "escriturada", "escriturado", "titulo de propiedad", "escritura publica", "papeles en regla"}
	assignmentSyns    = []string{"cesion de derechos", "cesion", "traspaso de derechos"}
	ejidoSynonyms     = []string{"ejido", "ejidal", "ejidales", "comunal"}

	paymentRules = []struct {
		method   domain.PaymentMethod
		synonyms []string
	}{
		{domain.PaymentCash, []string{"contado", "efectivo", "solo contado"}},
		{domain.PaymentCredit, []string{"credito", "creditos", "credito bancario", "credito hipotecario", "hipotecario", "financiamiento", "cofinavit"}},
		{domain.PaymentInfonavit, []string{"infonavit", "cofinavit"}},
		{domain.PaymentFovissste, []string{"fovissste", "fovisste"}},
	}
)

// ExtractLegalStatus reads legal documents and accepted payment methods.
// Payment methods accumulate; more than one may apply.
func ExtractLegalStatus(text string) domain.LegalStatus {
	folded := shared.Squash(shared.Fold(text))
	ls := domain.LegalStatus{PaymentMethods: []domain.PaymentMethod{}}
	_, ls.HasTitleDeed = shared.FirstWord(folded, titleDeedSynonyms)
	_, ls.RightsAssignment = shared.FirstWord(folded, assignmentSyns)
	_, ls.Ejido = shared.FirstWord(folded, ejidoSynonyms)
	for _, r := range paymentRules {
		if _, ok := shared.FirstWord(folded, r.synonyms); ok {
			ls.PaymentMethods = append(ls.PaymentMethods, r.method)
		}
	}
	return ls
}
