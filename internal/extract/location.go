package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"propiedades/internal/domain"
	"propiedades/internal/gazetteer"
	"propiedades/internal/shared"
)

const (
	refTail     = `[^.,;:!?\n()]{3,80}`
	placeName   = `([A-Za-zÁÉÍÓÚÜÑáéíóúüñ0-9 .']{2,60})`
	maxPlaceLen = 5 // tokens; longer captures are over-greedy
)

var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:muy\s+)?cerca\s+(?:de\s+la|del|de|a)\s+` + refTail),
	regexp.MustCompile(`(?i)\bjunto\s+(?:a\s+la|al|a)\s+` + refTail),
	regexp.MustCompile(`(?i)\bfrente\s+(?:a\s+la|al|a)\s+` + refTail),
	regexp.MustCompile(`(?i)\b(?:a\s+)?(?:un\s+)?costado\s+(?:de\s+la|del|de)\s+` + refTail),
	regexp.MustCompile(`(?i)\ba\s+(?:\d+|unos|pocos|escasos)\s+(?:min(?:utos)?|cuadras|pasos|metros|mts|km|kil[oó]metros)\s+(?:caminando\s+)?(?:de\s+la|del|de)\s+` + refTail),
	regexp.MustCompile(`(?i)\besquina\s+con\s+` + refTail),
	regexp.MustCompile(`(?i)\ba\s+la\s+altura\s+(?:de\s+la|del|de)\s+` + refTail),
}

// vocabulary that marks a "reference" as a price or feature fragment
var referenceNoise = []string{
	"$", "precio", "pesos", "mxn", "usd", "m2", "mts2", "metros cuadrados",
	"recamara", "recamaras", "bano", "banos", "estacionamiento", "cochera",
	"credito", "infonavit", "fovissste", "venta", "renta", "mensual",
	"superficie", "construccion",
}

var (
	streetPattern = regexp.MustCompile(`(?i)\b(calle|av\.?|avenida|blvd\.?|boulevard|bulevar|calzada|carretera|camino|prolongaci[oó]n|andador)\s+` + placeName)

	neighborhoodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bcol(?:onia|\.)?\s+` + placeName),
		regexp.MustCompile(`(?i)\bfracc(?:ionamiento|\.)?\s+` + placeName),
		regexp.MustCompile(`(?i)\b(?:unidad\s+habitacional|u\.\s*h\.|unidad)\s+` + placeName),
		regexp.MustCompile(`(?i)\bresidencial\s+` + placeName),
	}

	coordinatePattern = regexp.MustCompile(`(?:[?&](?:q|ll|query)=|@)(-?\d{1,2}\.\d{3,}),\s*(-?\d{1,3}\.\d{3,})`)
)

// tokens that end a captured street or neighborhood name
var placeStopwords = map[string]struct{}{
	"no": {}, "no.": {}, "num": {}, "num.": {}, "numero": {}, "#": {}, "col": {}, "col.": {},
	"colonia": {}, "cerca": {}, "junto": {}, "frente": {}, "en": {}, "esquina": {},
	"entre": {}, "a": {}, "con": {}, "y": {}, "casi": {}, "cp": {}, "c.p.": {},
	"fracc": {}, "fraccionamiento": {}, "municipio": {}, "mpio": {}, "mpio.": {},
	"precio": {}, "casa": {}, "depto": {}, "departamento": {}, "terreno": {},
}

var placeAbbreviations = map[string]struct{}{
	"sta.": {}, "sto.": {}, "gral.": {}, "lic.": {}, "dr.": {}, "ing.": {},
	"prof.": {}, "nte.": {}, "ote.": {}, "pte.": {}, "sn.": {},
}

// ResolveLocation resolves neighborhood and city through the two gazetteer
// tiers, then regex fallbacks, and collects reference phrases.
func ResolveLocation(g *gazetteer.Gazetteer, text, locationHint, cityHint string) domain.Location {
	combined := strings.TrimSpace(locationHint + "\n" + text)
	folded := shared.Squash(shared.Fold(combined))

	loc := domain.Location{References: []string{}}
	refs := extractReferences(combined)

	if nb, ok := g.MatchNeighborhood(folded); ok {
		loc.Neighborhood = strPtr(nb.Name)
		loc.City = strPtr(nb.City)
	} else if lm, ok := g.MatchLandmark(folded); ok {
		loc.Neighborhood = strPtr(lm.Neighborhood)
		loc.City = strPtr(lm.City)
		refs = append(refs, lm.Name)
	}

	if loc.City == nil {
		if c, ok := g.City(cityHint); ok {
			loc.City = strPtr(c.Name)
		} else if h := strings.TrimSpace(cityHint); h != "" {
			loc.City = strPtr(titleCase(h))
		} else if c, ok := g.MatchCity(folded); ok {
			loc.City = strPtr(c.Name)
		}
	}
	if loc.City != nil {
		if c, ok := g.City(*loc.City); ok && c.State != "" {
			loc.State = strPtr(c.State)
		}
	}

	if m := streetPattern.FindStringSubmatch(combined); m != nil {
		if name, ok := trimPlace(g, m[2]); ok {
			loc.Street = strPtr(titleCase(streetKind(m[1]) + " " + name))
		}
	}
	if loc.Neighborhood == nil {
		for _, re := range neighborhoodPatterns {
			m := re.FindStringSubmatch(combined)
			if m == nil {
				continue
			}
			if name, ok := trimPlace(g, m[1]); ok {
				loc.Neighborhood = strPtr(titleCase(name))
				break
			}
		}
	}

	if m := coordinatePattern.FindStringSubmatch(combined); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
			loc.Coordinates = domain.Coordinates{Lat: &lat, Lon: &lon}
		}
	}

	loc.References = collapseReferences(refs)
	return loc
}

func extractReferences(text string) []string {
	var out []string
	for _, re := range referencePatterns {
		for _, m := range re.FindAllString(text, -1) {
			ref := strings.Join(strings.Fields(m), " ")
			if isNoisyReference(ref) {
				continue
			}
			out = append(out, ref)
		}
	}
	return out
}

func isNoisyReference(ref string) bool {
	f := shared.Fold(ref)
	for _, w := range referenceNoise {
		if w == "$" {
			if strings.Contains(f, w) {
				return true
			}
			continue
		}
		if shared.ContainsWord(f, w) {
			return true
		}
	}
	return false
}

// collapseReferences dedupes (first seen wins), drops phrases contained in a
// longer accepted phrase and orders by descending token count.
func collapseReferences(refs []string) []string {
	type ref struct {
		text, key string
		tokens    int
	}
	seen := map[string]struct{}{}
	var uniq []ref
	for _, r := range refs {
		k := shared.Squash(shared.Fold(r))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, ref{text: r, key: k, tokens: len(strings.Fields(k))})
	}
	out := make([]ref, 0, len(uniq))
	for i, r := range uniq {
		contained := false
		for j, o := range uniq {
			if i != j && len(o.key) > len(r.key) && strings.Contains(o.key, r.key) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].tokens > out[j].tokens })
	texts := make([]string, len(out))
	for i, r := range out {
		texts[i] = r.text
	}
	return texts
}

// trimPlace cuts a captured place name at the first stopword or known city
// and rejects empty, lowercase or over-long results.
func trimPlace(g *gazetteer.Gazetteer, raw string) (string, bool) {
	var kept []string
	for _, tok := range strings.Fields(raw) {
		f := shared.Fold(tok)
		if _, stop := placeStopwords[f]; stop {
			break
		}
		if _, isCity := g.City(strings.Trim(f, ".")); isCity {
			break
		}
		kept = append(kept, strings.Trim(tok, "."))
		// a full stop ends the sentence unless it closes an abbreviation
		if _, abbr := placeAbbreviations[f]; strings.HasSuffix(tok, ".") && !abbr {
			break
		}
	}
	if len(kept) == 0 || len(kept) > maxPlaceLen {
		return "", false
	}
	// proper names are capitalized; a lowercase capture is running prose
	if first, _ := utf8.DecodeRuneInString(kept[0]); unicode.IsLower(first) {
		return "", false
	}
	name := strings.Join(kept, " ")
	if len([]rune(name)) < 3 {
		return "", false
	}
	return name, true
}

func streetKind(k string) string {
	switch strings.TrimSuffix(shared.Fold(k), ".") {
	case "av", "avenida":
		return "avenida"
	case "blvd", "boulevard", "bulevar":
		return "boulevard"
	}
	return shared.Fold(k)
}

func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.ToLower(s))
}

func strPtr(s string) *string { return &s }
