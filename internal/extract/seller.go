package extract

import (
	"regexp"
	"strings"

	"propiedades/internal/domain"
	"propiedades/internal/shared"
)

var (
	agencyVocabulary = []string{
		"inmobiliaria", "bienes raices", "asesor inmobiliario", "asesora inmobiliaria", "asesor", "asesora",
		"broker", "agente", "agencia", "century 21", "remax", "re/max", "coldwell banker",
		"keller williams", "realty", "real estate", "comision compartida",
	}
	individualVocabulary = []string{
		"dueno", "duena", "propietario", "propietaria", "particular", "trato directo",
		"sin intermediarios", "sin inmobiliarias", "directo con el dueno", "no inmobiliarias",
	}

	phonePattern = regexp.MustCompile(`(?:\+?52[\s.-]?(?:1[\s.-]?)?)?\(?\d{2,3}\)?[\s.-]?\d{3,4}[\s.-]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// ExtractSeller combines what the crawler captured about the publisher with
// contact details found in the listing text.
func ExtractSeller(raw domain.RawSeller, text string) domain.SellerInfo {
	out := domain.SellerInfo{
		Name:       strings.TrimSpace(raw.Name),
		ProfileURL: strings.TrimSpace(raw.ProfileURL),
		Kind:       sellerKind(raw, text),
	}
	out.Phone = findPhone(text)
	if m := emailPattern.FindString(text); m != "" {
		out.Email = strings.ToLower(m)
	}
	return out
}

func sellerKind(raw domain.RawSeller, text string) domain.SellerKind {
	switch shared.Fold(strings.TrimSpace(raw.Kind)) {
	case "agency", "agencia", "inmobiliaria", "broker", "agente":
		return domain.SellerAgency
	case "individual", "particular", "dueno", "propietario", "owner":
		return domain.SellerIndividual
	}
	folded := shared.Squash(shared.Fold(raw.Name + "\n" + text))
	// an explicit "trato directo con el dueno" outranks a passing agency mention
	if _, ok := shared.FirstWord(folded, individualVocabulary); ok {
		return domain.SellerIndividual
	}
	if _, ok := shared.FirstWord(folded, agencyVocabulary); ok {
		return domain.SellerAgency
	}
	return domain.SellerUnknown
}

// findPhone returns the first ten-digit Mexican number, digits only.
func findPhone(text string) string {
	for _, m := range phonePattern.FindAllStringIndex(text, -1) {
		if m[0] > 0 {
			prev := text[m[0]-1]
			if prev == '$' || prev == ',' || prev == '.' || (prev >= '0' && prev <= '9') {
				continue
			}
		}
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, text[m[0]:m[1]])
		switch {
		case len(digits) == 13 && strings.HasPrefix(digits, "521"):
			digits = digits[3:]
		case len(digits) == 12 && strings.HasPrefix(digits, "52"):
			digits = digits[2:]
		}
		if len(digits) == 10 {
			return digits
		}
	}
	return ""
}
