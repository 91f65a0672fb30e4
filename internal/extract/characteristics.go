package extract

import (
	"regexp"
	"strings"
	"time"

	"propiedades/internal/domain"
	"propiedades/internal/shared"
)

const (
	areaUnit  = `(?:m2|mts2|mt2|mts|mt|m|metros\s+cuadrados|metros)`
	areaNum   = `(\d+(?:[.,]\d+)*)`
	dimNum    = `(\d+(?:\.\d+)?)`
	roomWords = `(?:recamaras?|habitaciones?|dormitorios?|alcobas?)`
	carWords  = `(?:autos?|carros?|coches?|vehiculos?)`
	smallWord = `(un|una|dos|tres|cuatro|cinco|seis|siete|ocho)`
)

// Sanity ranges; a capture outside its range counts as no match.
var (
	bedroomRange   = [2]float64{1, 10}
	bathRange      = [2]float64{1, 10}
	halfBathRange  = [2]float64{1, 4}
	lotAreaRange   = [2]float64{20, 10_000}
	builtAreaRange = [2]float64{20, 5_000}
	levelRange     = [2]float64{1, 5}
	parkingRange   = [2]float64{1, 10}
	ageRange       = [2]float64{0, 100}
)

var bedroomPatterns = []pattern{
	pat(roomWords+`\s*[:=]\s*(\d{1,2})\b`, count(1)),
	pat(`\b(\d{1,2})\s*`+roomWords+`\b`, count(1)),
	pat(`\b(\d{1,2})\s*(?:rec|recs|hab|habs|dorm|dorms)\b`, count(1)),
	pat(`\b`+smallWord+`\s+`+roomWords+`\b`, count(1)),
	pat(`\b(\d{1,2})\s*cuartos\b`, count(1)),
}

var bathPatterns = []pattern{
	pat(`banos?(?:\s+completos?)?\s*[:=]\s*(\d{1,2}(?:\.5)?)\b`, num(1)),
	// "1 1/2 banos": the whole part only, the half is counted separately
	pat(`\b(\d)\s+1/2\s*banos?\b`, count(1)),
	pat(`(?:^|[^\d/.,])(\d{1,2}(?:\.5)?)\s*banos?\b`, num(1)),
	pat(`\b(\d{1,2})\s*(?:wc|sanitarios?)\b`, count(1)),
	pat(`\b(un|una|dos|tres|cuatro|cinco)\s+banos?\b`, count(1)),
	pat(`\bbano\s+completo\b`, fixed(1)),
}

var halfBathPatterns = []pattern{
	pat(`\b(\d)\s*medios?\s+banos?\b`, count(1)),
	pat(`\bmedios?\s+banos?\b`, fixed(1)),
	pat(`\bbanos?\s+y\s+medio\b`, fixed(1)),
	pat(`\b1/2\s*banos?\b`, fixed(1)),
}

var lotAreaPatterns = []pattern{
	pat(`(?:superficie\s+(?:de|del)\s+terreno|sup\.?\s+(?:de\s+)?terreno|terrenos?|lotes?)\s*(?:de|:|=)?\s*`+areaNum+`\s*`+areaUnit+`\b`, num(1)),
	pat(`\b`+areaNum+`\s*`+areaUnit+`\s*(?:de\s+)?(?:terreno|lote|superficie)\b`, num(1)),
	pat(`(?:terreno|lote)\s*(?:de\s+)?`+dimNum+`\s*(?:m|mts|metros)?\s*(?:x|por)\s*`+dimNum, product(1, 2)),
	pat(`\bfrente\s*(?:de\s+)?`+dimNum+`\s*(?:m|mts|metros)?\s*(?:x|por|y)\s*(?:fondo\s*(?:de\s+)?)?`+dimNum, product(1, 2)),
	pat(`\b`+dimNum+`\s*(?:m|mts|metros)?\s*x\s*`+dimNum+`\s*(?:m|mts|metros)\b`, product(1, 2)),
}

var builtAreaPatterns = []pattern{
	pat(`(?:superficie\s+construida|sup\.?\s+construida|area\s+construida|construccion|construidos?|const\.?)\s*(?:de|:|=)?\s*`+areaNum+`\s*`+areaUnit+`\b`, num(1)),
	pat(`\b`+areaNum+`\s*`+areaUnit+`\s*(?:de\s+)?(?:construccion|construidos?|const\b)`, num(1)),
}

// unlabelled "120 m2": lot area for land, built area for everything else
var bareAreaPattern = []pattern{
	pat(`\b`+areaNum+`\s*(?:m2|mts2|mt2|metros\s+cuadrados)\b`, num(1)),
}

var levelPatterns = []pattern{
	pat(`(?:niveles|plantas|pisos)\s*[:=]\s*(\d)\b`, count(1)),
	pat(`\b(\d)\s*(?:niveles|plantas|pisos)\b`, count(1)),
	pat(`\b(un|una|dos|tres|cuatro)\s+(?:niveles?|plantas?|pisos?)\b`, count(1)),
}

var parkingPatterns = []pattern{
	pat(`(?:estacionamiento|cochera|garage|garaje)\s*(?:techad[oa]s?\s*)?(?:para|de|:|=)?\s*(\d{1,2})\s*`+carWords+`?\b`, count(1)),
	pat(`\b(\d{1,2})\s*(?:cajones?|lugares?|espacios?)\s+(?:de\s+)?(?:estacionamiento|cochera|auto|autos)\b`, count(1)),
	pat(`\b(\d{1,2})\s*(?:estacionamientos?|cajones?|cocheras?)\b`, count(1)),
	pat(`\b(\d{1,2})\s*`+carWords+`\b`, count(1)),
	pat(`\b(?:para|de)\s+`+smallWord+`\s+`+carWords+`\b`, count(1)),
}

var agePatterns = []pattern{
	pat(`\b(\d{1,3})\s*anos?\s+de\s+(?:antiguedad|construida|construido|construccion|edad)\b`, count(1)),
	pat(`\bantiguedad\s*(?:de|:|=)?\s*(\d{1,3})\s*anos?\b`, count(1)),
}

var constructionYear = regexp.MustCompile(`\b(?:construida|construido|construccion|edificada|edificado|del\s+ano)\s*(?:en|:|=|el)?\s*(?:el\s+)?(?:ano\s+)?((?:19|20)\d{2})\b`)

var (
	newMarkers = []string{"a estrenar", "para estrenar", "nueva", "recien construida", "recien construido", "nueva construccion", "de reciente construccion", "preventa"}

	upperFloorSignals  = []string{"planta alta", "segundo piso", "2do piso", "2o piso", "segundo nivel", "2do nivel", "segunda planta"}
	singleLevelSignals = []string{"un nivel", "un solo nivel", "una planta", "una sola planta", "planta baja"}
	growthSignals      = []string{"opcion de crecer", "opcion a crecer", "posibilidad de crecer", "puede crecer", "para crecer", "preparada para segundo nivel", "preparada para segundo piso"}
	// "nivel" used as a quality adjective rather than a storey
	nonLevelPhrases = []string{"excelente nivel", "buen nivel", "alto nivel", "nivel socioeconomico", "nivel de acabados", "nivel de vida", "nivel de calle", "a nivel de calle"}
)

// Ordered: "como nueva" is excellent, not new, so excellent is tested first.
var conditionRules = []struct {
	c       domain.Condition
	phrases []string
}{
	{domain.ConditionPoor, []string{"para remodelar", "necesita remodelacion", "requiere remodelacion", "para demoler", "obra negra", "necesita reparaciones", "requiere reparaciones", "en ruinas"}},
	{domain.ConditionRegular, []string{"estado regular", "condiciones regulares", "requiere mantenimiento", "necesita mantenimiento", "detalles menores"}},
	{domain.ConditionExcellent, []string{"excelentes condiciones", "excelente estado", "impecable", "como nueva", "como nuevo", "remodelada", "remodelado", "recien remodelada"}},
	{domain.ConditionGood, []string{"buen estado", "buenas condiciones", "bien conservada", "bien conservado"}},
	{domain.ConditionNew, newMarkers},
}

// ExtractCharacteristics reads the numeric attributes of a listing. The
// property type decides how an unlabelled area is interpreted and whether
// floor mentions describe storeys or the unit's position in a building.
func ExtractCharacteristics(text string, pt domain.PropertyType, now time.Time) domain.Characteristics {
	folded := shared.Squash(shared.Fold(text))
	out := domain.Characteristics{
		PropertyType:  pt,
		OperationType: domain.OperationUnknown,
		Condition:     domain.ConditionUnspecified,
	}

	out.Bedrooms = intIn(folded, bedroomPatterns, bedroomRange)
	out.Bathrooms = bathrooms(folded)
	out.LotAreaM2 = floatIn(folded, lotAreaPatterns, lotAreaRange)
	out.BuiltAreaM2 = floatIn(folded, builtAreaPatterns, builtAreaRange)
	if pt == domain.PropertyLand && out.LotAreaM2 == nil {
		out.LotAreaM2 = floatIn(folded, bareAreaPattern, lotAreaRange)
	} else if pt != domain.PropertyLand && out.BuiltAreaM2 == nil && out.LotAreaM2 == nil {
		out.BuiltAreaM2 = floatIn(folded, bareAreaPattern, builtAreaRange)
	}
	out.ParkingSpots = intIn(folded, parkingPatterns, parkingRange)

	out.Levels, out.GrowthOption = levels(folded, pt)
	out.IsSingleLevel = out.Levels != nil && *out.Levels == 1

	out.AgeYears = age(folded, now)
	out.Condition = condition(folded)
	if out.Condition == domain.ConditionUnspecified && out.AgeYears != nil && *out.AgeYears == 0 {
		out.Condition = domain.ConditionNew
	}
	return out
}

func bathrooms(folded string) *float64 {
	whole, okWhole := firstInRange(folded, bathPatterns, bathRange[0], bathRange[1])
	half, okHalf := firstInRange(folded, halfBathPatterns, halfBathRange[0], halfBathRange[1])
	if !okWhole && !okHalf {
		return nil
	}
	total := 0.0
	if okWhole {
		total = whole
	}
	if okHalf {
		total += half * 0.5
	}
	return &total
}

func levels(folded string, pt domain.PropertyType) (*int, bool) {
	growth := false
	for _, g := range growthSignals {
		if shared.ContainsWord(folded, g) {
			growth = true
			folded = strings.ReplaceAll(folded, g, " ")
		}
	}
	for _, n := range nonLevelPhrases {
		folded = strings.ReplaceAll(folded, n, " ")
	}

	lv := intIn(folded, levelPatterns, levelRange)
	// for apartments "segundo piso" is where the unit sits, not a storey count
	if pt == domain.PropertyApartment || pt == domain.PropertyOffice {
		return lv, growth
	}
	if _, upper := shared.FirstWord(folded, upperFloorSignals); upper {
		if lv == nil || *lv < 2 {
			two := 2
			lv = &two
		}
		return lv, growth
	}
	if lv == nil {
		if _, single := shared.FirstWord(folded, singleLevelSignals); single {
			one := 1
			lv = &one
		}
	}
	return lv, growth
}

func age(folded string, now time.Time) *int {
	if v, ok := firstInRange(folded, agePatterns, ageRange[0], ageRange[1]); ok {
		n := int(v)
		return &n
	}
	for _, m := range constructionYear.FindAllStringSubmatch(folded, -1) {
		y, ok := parseNumeral(m[1], false)
		if !ok {
			continue
		}
		n := now.Year() - int(y)
		if n >= int(ageRange[0]) && n <= int(ageRange[1]) {
			return &n
		}
	}
	folded = strings.NewReplacer("como nueva", " ", "como nuevo", " ").Replace(folded)
	if _, ok := shared.FirstWord(folded, newMarkers); ok {
		zero := 0
		return &zero
	}
	return nil
}

func condition(folded string) domain.Condition {
	for _, r := range conditionRules {
		if _, ok := shared.FirstWord(folded, r.phrases); ok {
			return r.c
		}
	}
	return domain.ConditionUnspecified
}

func intIn(text string, table []pattern, r [2]float64) *int {
	v, ok := firstInRange(text, table, r[0], r[1])
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

func floatIn(text string, table []pattern, r [2]float64) *float64 {
	v, ok := firstInRange(text, table, r[0], r[1])
	if !ok {
		return nil
	}
	return &v
}
