package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"propiedades/internal/shared"
)

// GateDecision explains why an item was or was not taken as a property listing.
type GateDecision struct {
	Accepted    bool     `json:"accepted"`
	Reasons     []string `json:"reasons"`
	Categories  []string `json:"categories"`
	Score       int      `json:"score"`
	Measurement bool     `json:"measurement"`
	Veto        string   `json:"veto,omitempty"`
}

type indicator struct {
	category string
	weight   int
	phrases  []string
}

var indicators = []indicator{
	{"property_type", 2, []string{
		"casa", "casas", "departamento", "depto", "depa", "terreno", "lote", "local comercial",
		"oficina", "bodega", "inmueble", "propiedad", "residencia", "penthouse", "loft",
		"duplex", "consultorio", "nave industrial", "predio", "vivienda",
	}},
	{"rooms", 1, []string{"recamara", "recamaras", "habitacion", "habitaciones", "dormitorio", "dormitorios", "cuartos", "estancia", "sala comedor", "cocina"}},
	{"baths", 1, []string{"bano", "banos", "medio bano", "wc", "sanitario", "sanitarios"}},
	{"areas", 2, []string{"m2", "mts2", "metros cuadrados", "superficie", "construccion", "terreno de", "frente", "fondo"}},
	{"operation", 1, []string{"venta", "vendo", "se vende", "renta", "rento", "se renta", "alquiler", "traspaso", "preventa"}},
	{"legal", 1, []string{"escrituras", "escritura", "infonavit", "fovissste", "credito bancario", "cesion de derechos", "titulo de propiedad"}},
	{"spaces", 1, []string{"estacionamiento", "cochera", "garage", "jardin", "alberca", "terraza", "roof garden", "patio", "cuarto de servicio", "area de lavado", "cisterna", "fraccionamiento", "privada", "condominio", "colonia"}},
}

const minCategories = 2

var measurementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s*(?:m2|mts2|mt2|metros\s+cuadrados)\b`),
	regexp.MustCompile(`\bfrente\s*(?:de\s+)?\d+(?:\.\d+)?\s*(?:m|mts|metros)?\s*(?:x|por|y)\s*(?:fondo\s*(?:de\s+)?)?\d+`),
	regexp.MustCompile(`\b\d+(?:\.\d+)?\s*(?:m|mts|metros)?\s*x\s*\d+(?:\.\d+)?\s*(?:m|mts|metros)\b`),
	regexp.MustCompile(`\b(?:terreno|construccion|superficie)\s*(?:de|:)?\s*\d+\s*(?:m|mts|metros)\b`),
}

var (
	vetoWords = []string{
		// vehicles
		"auto", "automovil", "carro", "coche", "camioneta", "moto", "motocicleta", "camion", "trailer", "bicicleta", "llantas",
		// electronics
		"celular", "smartphone", "iphone", "samsung galaxy", "tablet", "ipad", "laptop", "computadora", "television", "pantalla",
		"consola", "playstation", "xbox", "nintendo", "audifonos",
		// clothing and consumer goods
		"ropa", "zapatos", "playera", "pantalon", "vestido", "reloj", "juguetes", "cosmeticos", "perfume", "perfumes", "maquillaje", "herramientas",
	}
	// vetoed only when the title is little more than the item itself
	standaloneFurniture = []string{
		"sillon", "sofa", "sala", "mesa", "silla", "sillas", "cama", "colchon", "comedor", "ropero", "closet",
		"refrigerador", "lavadora", "secadora", "estufa", "microondas", "licuadora",
	}
	propertyCategoryWords = []string{
		"casa", "departamento", "depto", "depa", "terreno", "lote", "local", "oficina", "bodega",
		"inmueble", "propiedad", "recamara", "recamaras", "habitacion", "habitaciones", "dormitorio",
		"bano", "banos", "m2", "metros cuadrados",
	}

	genericTitles = map[string]struct{}{
		"": {}, "marketplace": {}, "chats": {}, "notificaciones": {}, "marketplace - venta": {},
		"marketplace - renta": {}, "facebook": {}, "inicio": {},
	}
	unreadBadge = regexp.MustCompile(`^\(\d+\+?\)\s*`)

	firstLineWords = []string{
		"casa", "departamento", "depto", "terreno", "local", "propiedad", "venta", "renta",
		"habitaciones", "recamaras", "recamara", "habitacion", "banos", "inmueble", "bienes raices",
		"cuarto", "monoambiente", "loft", "bungalow",
	}
)

// EvaluateGate decides whether a scraped item is a real-estate listing at all.
func EvaluateGate(title, description string) GateDecision {
	ft := shared.Squash(shared.Fold(title))
	fd := shared.Squash(shared.Fold(description))
	d := GateDecision{Reasons: []string{}, Categories: []string{}}

	text := strings.TrimSpace(ft + "\n" + fd)
	if isGenericTitle(ft) {
		line := firstLine(fd)
		if w, ok := shared.FirstWord(line, firstLineWords); ok {
			d.Accepted = true
			d.Reasons = append(d.Reasons, fmt.Sprintf("generic title, first line mentions %q", w))
			d.Categories, d.Score = indicatorCategories(fd)
			return d
		}
		// the placeholder title carries no evidence either way
		text = fd
	}

	d.Categories, d.Score = indicatorCategories(text)
	_, hasPropertyWord := shared.FirstWord(text, propertyCategoryWords)

	if w, ok := vetoWord(ft, text); ok {
		d.Veto = w
		if !hasPropertyWord {
			d.Reasons = append(d.Reasons, fmt.Sprintf("non-property item %q with no property keyword", w))
			return d
		}
		d.Reasons = append(d.Reasons, fmt.Sprintf("veto %q overridden by property keyword", w))
	}

	for _, re := range measurementPatterns {
		if re.MatchString(text) {
			d.Measurement = true
			break
		}
	}
	if d.Measurement {
		d.Accepted = true
		d.Reasons = append(d.Reasons, "measurement pattern present")
		return d
	}
	if len(d.Categories) >= minCategories {
		d.Accepted = true
		d.Reasons = append(d.Reasons, fmt.Sprintf("%d indicator categories: %s", len(d.Categories), strings.Join(d.Categories, ", ")))
		return d
	}
	d.Reasons = append(d.Reasons, fmt.Sprintf("insufficient evidence: %d indicator categories (need %d)", len(d.Categories), minCategories))
	return d
}

func indicatorCategories(text string) ([]string, int) {
	cats := []string{}
	score := 0
	for _, ind := range indicators {
		if _, ok := shared.FirstWord(text, ind.phrases); ok {
			cats = append(cats, ind.category)
			score += ind.weight
		}
	}
	sort.Strings(cats)
	return cats, score
}

func vetoWord(title, text string) (string, bool) {
	if w, ok := shared.FirstWord(text, vetoWords); ok {
		return w, true
	}
	tokens := strings.Fields(strings.Trim(title, " .,!¡?¿-"))
	if len(tokens) > 0 && len(tokens) <= 3 {
		for _, f := range standaloneFurniture {
			if tokens[0] == f {
				return f, true
			}
		}
	}
	return "", false
}

func isGenericTitle(foldedTitle string) bool {
	t := unreadBadge.ReplaceAllString(foldedTitle, "")
	_, ok := genericTitles[strings.TrimSpace(t)]
	return ok
}

func firstLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}
