package gazetteer_test

import (
	"strings"
	"testing"

	"propiedades/internal/gazetteer"
	"propiedades/internal/shared"
)

func mustDefault(t *testing.T) *gazetteer.Gazetteer {
	t.Helper()
	g, err := gazetteer.Default()
	if err != nil {
		t.Fatalf("default gazetteer: %v", err)
	}
	return g
}

func TestDefault_LoadsEmbeddedTables(t *testing.T) {
	g := mustDefault(t)
	c, n, l := g.Counts()
	if c == 0 || n == 0 || l == 0 {
		t.Fatalf("expected non-empty tables, got %d/%d/%d", c, n, l)
	}
	if g2 := mustDefault(t); g2 != g {
		t.Fatalf("expected Default to be parsed once")
	}
}

func TestMatchNeighborhood_AccentAndCaseInsensitive(t *testing.T) {
	g := mustDefault(t)
	cases := []struct {
		text, name, city string
	}{
		{"Casa en COLONIA REFORMA, Cuernavaca", "Reforma", "Cuernavaca"},
		{"depa en jardines de reforma", "Jardines de Reforma", "Cuernavaca"},
		{"Bonita casa en Chipitlán", "Chipitlán", "Cuernavaca"},
		{"terreno en chipitlan", "Chipitlán", "Cuernavaca"},
		{"casa en Lomas de Cuernavaca", "Lomas de Cuernavaca", "Temixco"},
	}
	for _, tc := range cases {
		nb, ok := g.MatchNeighborhood(shared.Fold(tc.text))
		if !ok {
			t.Fatalf("%q: no match", tc.text)
		}
		if nb.Name != tc.name || nb.City != tc.city {
			t.Fatalf("%q: got %s/%s, want %s/%s", tc.text, nb.Name, nb.City, tc.name, tc.city)
		}
	}
}

func TestMatchLandmark(t *testing.T) {
	g := mustDefault(t)
	lm, ok := g.MatchLandmark(shared.Fold("Depto cerca de Plaza Cuernavaca"))
	if !ok || lm.Name != "Plaza Cuernavaca" || lm.Neighborhood != "Vista Hermosa" {
		t.Fatalf("unexpected landmark: %+v ok=%v", lm, ok)
	}
	if _, ok := g.MatchNeighborhood(shared.Fold("Depto cerca de Plaza Cuernavaca")); ok {
		t.Fatalf("landmark text must not resolve as a neighborhood")
	}
}

func TestCity_ByAlias(t *testing.T) {
	g := mustDefault(t)
	c, ok := g.City("CUERNA")
	if !ok || c.Name != "Cuernavaca" || c.State != "Morelos" {
		t.Fatalf("unexpected city: %+v ok=%v", c, ok)
	}
	if _, ok := g.City("Monterrey"); ok {
		t.Fatalf("unknown city must not resolve")
	}
}

func TestLoad_RejectsUnknownCity(t *testing.T) {
	doc := `
version: 1
cities:
  - name: Cuernavaca
neighborhoods:
  - {name: Centro, city: Puebla}
`
	if _, err := gazetteer.Load(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error for neighborhood in unknown city")
	}
}
