package extract

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"propiedades/internal/domain"
	"propiedades/internal/shared"
)

var (
	// numeral followed by an optional word that may be a multiplier suffix
	priceToken = regexp.MustCompile(`(\d+(?:[.,]\d+)*[.,]?)\s*([a-z]*)`)

	// "$" amounts inside a description
	dollarAmount = regexp.MustCompile(`\$\s*(\d+(?:[.,]\d+)*(?:\s*(?:millones|millon|mdp|mil|k|m)\b)?)`)
	// "2.5 millones" style amounts without a currency sign
	wordAmount = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?\s*(?:millones|millon|mdp))\b`)
	// "precio: 1,200,000"
	labelledAmount = regexp.MustCompile(`\bprecio\s*(?:de\s+venta|de\s+renta)?\s*[:=]?\s*(\d+(?:[.,]\d+)*(?:\s*(?:millones|millon|mdp|mil|k|m)\b)?)`)

	maintenanceFee = regexp.MustCompile(`\b(?:cuota\s+de\s+mantenimiento|mantenimiento|cuota)\s*(?:mensual)?\s*(?:de|:|=)?\s*\$\s*(\d+(?:[.,]\d+)*)`)
)

var multipliers = map[string]float64{
	"k": 1e3, "mil": 1e3,
	"m": 1e6, "mm": 1e6, "millon": 1e6, "millones": 1e6, "mdp": 1e6,
}

// words that make a "$" amount something other than the asking price
var nonPriceContext = []string{"mantenimiento", "cuota", "enganche", "deposito", "apartado", "comision"}

// NormalizePrice parses a raw price string and validates it against the
// operation-conditioned range. With an unknown operation the range check is
// skipped and IsValid is provisional.
func NormalizePrice(raw string, op domain.OperationType, opts Options) domain.ExtractedPrice {
	text := strings.TrimSpace(raw)
	out := domain.ExtractedPrice{Text: text, Currency: domain.CurrencyMXN}
	if text == "" {
		out.Message = msg("empty price")
		return out
	}
	folded := shared.Fold(text)
	out.Currency = detectCurrency(folded)

	v, ok := parsePriceValue(folded)
	if !ok {
		out.Message = msg("no numeral found")
		return out
	}
	out.Value = &v
	out.Formatted = FormatPrice(v, out.Currency)

	if v <= minAbsolutePrice || v > maxAbsolutePrice {
		out.Message = msg(fmt.Sprintf("price %.0f outside absolute bounds", v))
		return out
	}

	var notes []string
	conf := 0.8
	if b, known := opts.bounds(op); known {
		mxn := opts.toMXN(v, out.Currency)
		if !b.contains(mxn) {
			out.Confidence = 0.2
			out.Message = msg(fmt.Sprintf("price %.0f MXN outside %s range [%.0f, %.0f]", mxn, op, b.Min, b.Max))
			return out
		}
		if b.optimal(mxn) {
			conf = 0.9
		} else {
			conf = 0.7
			notes = append(notes, fmt.Sprintf("unusual magnitude for %s", op))
		}
	} else {
		notes = append(notes, "operation unknown, range not checked")
	}

	switch {
	case multipleOf(v, 1e6):
		conf *= 0.95
		notes = append(notes, "round number (exact millions)")
	case multipleOf(v, 1e5):
		conf *= 0.98
		notes = append(notes, "round number (exact hundred-thousands)")
	case multipleOf(v, 1e3):
		conf *= 0.99
		notes = append(notes, "round number (exact thousands)")
	}

	out.IsValid = true
	out.Confidence = math.Round(conf*1e4) / 1e4
	if len(notes) > 0 {
		out.Message = msg(strings.Join(notes, "; "))
	}
	return out
}

// parsePriceValue reads the first numeral of an already folded price string.
func parsePriceValue(folded string) (float64, bool) {
	for _, m := range priceToken.FindAllStringSubmatchIndex(folded, -1) {
		tok := folded[m[2]:m[3]]
		word := folded[m[4]:m[5]]
		mult, isMult := multipliers[word]
		// "m2" is an area, not millions
		if isMult && m[5] < len(folded) && folded[m[5]] >= '0' && folded[m[5]] <= '9' {
			isMult = false
		}
		if !isMult {
			mult = 1
		}
		n, ok := parseNumeral(tok, mult >= 1e6)
		if !ok {
			continue
		}
		return n * mult, true
	}
	return 0, false
}

func detectCurrency(folded string) domain.Currency {
	if strings.Contains(folded, "us$") || strings.Contains(folded, "u$s") {
		return domain.CurrencyUSD
	}
	if _, ok := shared.FirstWord(folded, []string{"usd", "dlls", "dls", "dolar", "dolares", "dollars"}); ok {
		return domain.CurrencyUSD
	}
	if strings.Contains(folded, "€") {
		return domain.CurrencyEUR
	}
	if _, ok := shared.FirstWord(folded, []string{"eur", "euro", "euros"}); ok {
		return domain.CurrencyEUR
	}
	return domain.CurrencyMXN
}

// priceFromText finds an asking price inside free text when the dedicated
// price field is empty or unusable. Returns "" when nothing qualifies.
func priceFromText(text string) string {
	folded := shared.Fold(text)
	if m := labelledAmount.FindStringSubmatch(folded); m != nil {
		return "$" + m[1]
	}
	for _, m := range dollarAmount.FindAllStringSubmatchIndex(folded, -1) {
		if precededBy(folded, m[0], 30, nonPriceContext) {
			continue
		}
		return folded[m[0]:m[1]]
	}
	if m := wordAmount.FindStringSubmatch(folded); m != nil {
		return m[1]
	}
	return ""
}

// extractMaintenance reports whether maintenance is included in the price
// and any separately quoted maintenance fee.
func extractMaintenance(text string) (bool, *float64) {
	folded := shared.Fold(text)
	included := false
	for _, s := range []string{"incluye mantenimiento", "mantenimiento incluido", "con mantenimiento incluido"} {
		if shared.ContainsWord(folded, s) {
			included = true
			break
		}
	}
	if m := maintenanceFee.FindStringSubmatch(folded); m != nil {
		if v, ok := parseNumeral(m[1], false); ok && v > 0 && v < 100_000 {
			return included, &v
		}
	}
	return included, nil
}

// FormatPrice renders v with thousands separators, e.g. "$2,500,000".
func FormatPrice(v float64, c domain.Currency) string {
	pr := message.NewPrinter(language.English)
	var s string
	if v == math.Trunc(v) {
		s = pr.Sprintf("$%d", int64(v))
	} else {
		s = pr.Sprintf("$%.2f", v)
	}
	if c != "" && c != domain.CurrencyMXN {
		s += " " + string(c)
	}
	return s
}

func multipleOf(v, unit float64) bool {
	return v >= unit && math.Mod(v, unit) == 0
}

func precededBy(text string, at, window int, words []string) bool {
	start := at - window
	if start < 0 {
		start = 0
	}
	before := text[start:at]
	for _, w := range words {
		if strings.Contains(before, w) {
			return true
		}
	}
	return false
}

func msg(s string) *string { return &s }
