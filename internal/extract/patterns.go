package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// reader turns a submatch into a value; ok=false means "no usable value".
type reader func(m []string) (float64, bool)

// pattern is one entry of an ordered extraction table.
type pattern struct {
	re   *regexp.Regexp
	read reader
}

func pat(expr string, r reader) pattern { return pattern{re: regexp.MustCompile(expr), read: r} }

// firstInRange walks the table in order and returns the first captured value
// inside [lo, hi]. Later patterns are only tried when earlier ones yield nothing.
func firstInRange(text string, table []pattern, lo, hi float64) (float64, bool) {
	for _, pt := range table {
		for _, m := range pt.re.FindAllStringSubmatch(text, -1) {
			if v, ok := pt.read(m); ok && v >= lo && v <= hi {
				return v, true
			}
		}
	}
	return 0, false
}

var numberWords = map[string]float64{
	"un": 1, "uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
}

// count reads group g as digits or a Spanish number word.
func count(g int) reader {
	return func(m []string) (float64, bool) {
		s := strings.TrimSpace(m[g])
		if v, ok := numberWords[s]; ok {
			return v, true
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}
}

// num reads group g as a regional numeral ("1,200", "1.200", "150.5").
func num(g int) reader {
	return func(m []string) (float64, bool) { return parseNumeral(m[g], false) }
}

// product multiplies two numerals, for "10 x 20" style dimensions.
func product(a, b int) reader {
	return func(m []string) (float64, bool) {
		x, ok1 := parseNumeral(m[a], false)
		y, ok2 := parseNumeral(m[b], false)
		if !ok1 || !ok2 {
			return 0, false
		}
		return x * y, true
	}
}

// fixed yields v whenever the pattern matches.
func fixed(v float64) reader {
	return func([]string) (float64, bool) { return v, true }
}

// parseNumeral resolves thousands and decimal separators:
//   - more than one "." or more than one "," means that mark groups thousands
//   - one of each: the rightmost is the decimal mark
//   - a single mark followed by exactly three digits groups thousands, unless
//     a millions multiplier follows ("1.250 millones")
//   - otherwise a single mark is the decimal point
func parseNumeral(tok string, millions bool) (float64, bool) {
	tok = strings.Trim(strings.TrimSpace(tok), ".,")
	if tok == "" {
		return 0, false
	}
	dots, commas := strings.Count(tok, "."), strings.Count(tok, ",")
	switch {
	case dots > 1:
		tok = strings.ReplaceAll(tok, ".", "")
		if commas > 1 {
			return 0, false
		}
		tok = strings.Replace(tok, ",", ".", 1)
	case commas > 1:
		tok = strings.ReplaceAll(tok, ",", "")
	case dots == 1 && commas == 1:
		if strings.LastIndex(tok, ",") > strings.LastIndex(tok, ".") {
			tok = strings.ReplaceAll(tok, ".", "")
			tok = strings.ReplaceAll(tok, ",", ".")
		} else {
			tok = strings.ReplaceAll(tok, ",", "")
		}
	case commas == 1:
		tok = singleMark(tok, ",", millions)
	case dots == 1:
		tok = singleMark(tok, ".", millions)
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func singleMark(tok, mark string, millions bool) string {
	i := strings.LastIndex(tok, mark)
	trailing := len(tok) - i - 1
	if trailing == 3 && !millions {
		return strings.Replace(tok, mark, "", 1)
	}
	return strings.Replace(tok, mark, ".", 1)
}
