package app

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"propiedades/internal/domain"
)

/********** alias registry (single source of truth) **********/

// listingAliases lists, per logical field, the key variants the crawler has
// used over time, in the order they are tried. Dotted paths walk nested maps.
var listingAliases = map[string][]string{
	"id":          {"id", "listing_id", "propiedad_id", "item_id"},
	"title":       {"title", "titulo", "name", "nombre", "headline"},
	"description": {"description", "descripcion", "desc", "texto", "text", "detalles.descripcion", "body", "contenido"},
	"price":       {"raw_price", "price", "precio", "precio_texto", "price.text", "detalles.precio", "price.amount"},
	"location":    {"location_hint", "location", "ubicacion", "ubicacion.direccion", "direccion", "address", "location.address"},
	"city":        {"city_hint", "city", "ciudad", "ubicacion.ciudad", "location.city", "municipio"},
	"url":         {"source_url", "url", "link", "href", "permalink"},
	"seller_name": {"vendedor.nombre", "seller.name", "vendedor_nombre", "seller_name", "publicado_por"},
	"seller_url":  {"vendedor.perfil", "vendedor.link", "seller.profile_url", "seller.url", "seller_url"},
	"seller_kind": {"vendedor.tipo", "seller.type", "seller.kind", "tipo_vendedor"},
	"scraped_at":  {"scraped_at", "fecha_extraccion", "extraction_date", "fecha", "timestamp"},
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the value at path as text: strings as-is, numbers in
// plain decimal form, string lists joined by newlines. Anything else is "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any:
		return strings.Join(stringItems(v), "\n")
	}
	return ""
}

// firstNonEmptyAlias: first non-blank value for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// stringItems accepts a list of strings or of {text|value|name} objects.
func stringItems(raw []any) []string {
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		switch t := it.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			for _, k := range []string{"text", "value", "name"} {
				if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
					break
				}
			}
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}

var markup = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*|/[a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>`)

// plainText reduces scraped HTML to text, keeping line breaks between blocks.
// Inputs without markup are returned unchanged.
func plainText(s string) string {
	if !markup.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		log.Warn().Err(err).Str("context", "plainText").Msg("html parse failed, keeping raw text")
		return s
	}
	doc.Find("script, style").Remove()
	doc.Find("br").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithNodes(newline())
	})
	doc.Find("p, div, li, h1, h2, h3, h4, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendNodes(newline())
	})
	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func newline() *html.Node { return &html.Node{Type: html.TextNode, Data: "\n"} }

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

/********** listing mapper **********/

// ToRawListing resolves the crawler's loosely-typed record into a RawListing.
// id is the key the record was stored under; an explicit id field wins only
// when the key is empty.
func ToRawListing(id string, m map[string]any) domain.RawListing {
	if strings.TrimSpace(id) == "" {
		id = firstNonEmptyAlias(m, listingAliases, "id")
	}
	loc := firstNonEmptyAlias(m, listingAliases, "location")
	if loc == "" {
		// some exports split the address into parts
		loc = joinNonEmpty(", ",
			lookupStr(m, "ubicacion.calle"),
			lookupStr(m, "ubicacion.colonia"),
			lookupStr(m, "location.street"),
			lookupStr(m, "location.neighborhood"),
		)
	}
	return domain.RawListing{
		ID:           strings.TrimSpace(id),
		Title:        plainText(firstNonEmptyAlias(m, listingAliases, "title")),
		Description:  plainText(firstNonEmptyAlias(m, listingAliases, "description")),
		RawPrice:     firstNonEmptyAlias(m, listingAliases, "price"),
		LocationHint: loc,
		CityHint:     firstNonEmptyAlias(m, listingAliases, "city"),
		SourceURL:    firstNonEmptyAlias(m, listingAliases, "url"),
		Seller: domain.RawSeller{
			Name:       firstNonEmptyAlias(m, listingAliases, "seller_name"),
			ProfileURL: firstNonEmptyAlias(m, listingAliases, "seller_url"),
			Kind:       firstNonEmptyAlias(m, listingAliases, "seller_kind"),
		},
		ScrapedAt: parseTime(firstNonEmptyAlias(m, listingAliases, "scraped_at")),
	}
}
