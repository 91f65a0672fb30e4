package feed

import (
	"fmt"
	"strconv"
	"strings"
)

// envelope keys that wrap the record list in paged exports
var listKeys = []string{"items", "listings", "propiedades", "data", "results"}

// keys that may carry the listing id inside a record
var idKeys = []string{"id", "listing_id", "propiedad_id", "item_id"}

// collect merges one decoded export document into out and returns the link
// to the next page, if any. Three shapes are understood:
//
//	{"<id>": {...}, ...}                    the crawler's repository dump
//	[{...}, ...]                            a plain list with ids inside
//	{"items": [...], "next": "/v1/...?p=2"} a paged envelope
func collect(out map[string]map[string]any, doc any) string {
	switch v := doc.(type) {
	case []any:
		addList(out, v)
	case map[string]any:
		for _, k := range listKeys {
			if items, ok := v[k].([]any); ok {
				addList(out, items)
				next, _ := v["next"].(string)
				return strings.TrimSpace(next)
			}
		}
		for id, rec := range v {
			if m, ok := rec.(map[string]any); ok {
				out[id] = m
			}
		}
	}
	return ""
}

func addList(out map[string]map[string]any, items []any) {
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id := recordID(m)
		if id == "" {
			// positional ids stay unique across pages
			id = fmt.Sprintf("item-%d", len(out)+1)
		}
		out[id] = m
	}
}

func recordID(m map[string]any) string {
	for _, k := range idKeys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
