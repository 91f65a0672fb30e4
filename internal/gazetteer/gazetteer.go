package gazetteer

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"

	"propiedades/internal/shared"
)

//go:embed data/gazetteer.yaml
var embedded []byte

type City struct {
	Name    string   `yaml:"name"`
	State   string   `yaml:"state"`
	Aliases []string `yaml:"aliases"`
}

type Neighborhood struct {
	Name    string   `yaml:"name"`
	City    string   `yaml:"city"`
	Aliases []string `yaml:"aliases"`
}

type Landmark struct {
	Name         string   `yaml:"name"`
	Neighborhood string   `yaml:"neighborhood"`
	City         string   `yaml:"city"`
	Aliases      []string `yaml:"aliases"`
}

type document struct {
	Version       int            `yaml:"version"`
	Cities        []City         `yaml:"cities"`
	Neighborhoods []Neighborhood `yaml:"neighborhoods"`
	Landmarks     []Landmark     `yaml:"landmarks"`
}

// alias points a folded name variant at an entry of one of the tables.
type alias struct {
	text string
	idx  int
}

// Gazetteer is immutable once built and safe for concurrent use.
type Gazetteer struct {
	version       int
	cities        []City
	neighborhoods []Neighborhood
	landmarks     []Landmark

	cityAliases []alias
	nbAliases   []alias
	lmAliases   []alias
	cityByName  map[string]int
}

var loadDefault = sync.OnceValues(func() (*Gazetteer, error) {
	return Load(bytes.NewReader(embedded))
})

// Default returns the gazetteer bundled with the binary. It is parsed once.
func Default() (*Gazetteer, error) { return loadDefault() }

// LoadFile reads a gazetteer document from disk; an empty path yields Default.
func LoadFile(path string) (*Gazetteer, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gazetteer: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Gazetteer, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}
	return build(doc)
}

func build(doc document) (*Gazetteer, error) {
	g := &Gazetteer{
		version:       doc.Version,
		cities:        doc.Cities,
		neighborhoods: doc.Neighborhoods,
		landmarks:     doc.Landmarks,
		cityByName:    make(map[string]int, len(doc.Cities)),
	}
	for i, c := range doc.Cities {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("gazetteer: city #%d has no name", i)
		}
		g.cityByName[shared.Fold(c.Name)] = i
		g.cityAliases = appendAliases(g.cityAliases, i, c.Name, c.Aliases)
	}
	for i, n := range doc.Neighborhoods {
		if _, ok := g.cityByName[shared.Fold(n.City)]; !ok {
			return nil, fmt.Errorf("gazetteer: neighborhood %q references unknown city %q", n.Name, n.City)
		}
		g.nbAliases = appendAliases(g.nbAliases, i, n.Name, n.Aliases)
	}
	for i, l := range doc.Landmarks {
		if _, ok := g.cityByName[shared.Fold(l.City)]; !ok {
			return nil, fmt.Errorf("gazetteer: landmark %q references unknown city %q", l.Name, l.City)
		}
		g.lmAliases = appendAliases(g.lmAliases, i, l.Name, l.Aliases)
	}
	sortAliases(g.cityAliases)
	sortAliases(g.nbAliases)
	sortAliases(g.lmAliases)
	return g, nil
}

func appendAliases(dst []alias, idx int, name string, extra []string) []alias {
	seen := map[string]struct{}{}
	for _, a := range append([]string{name}, extra...) {
		f := shared.Squash(shared.Fold(a))
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		dst = append(dst, alias{text: f, idx: idx})
	}
	return dst
}

// longest alias first so "jardines de reforma" beats "reforma"
func sortAliases(as []alias) {
	sort.SliceStable(as, func(i, j int) bool {
		if len(as[i].text) != len(as[j].text) {
			return len(as[i].text) > len(as[j].text)
		}
		return as[i].text < as[j].text
	})
}

func match(folded string, as []alias) (int, bool) {
	for _, a := range as {
		if shared.ContainsWord(folded, a.text) {
			return a.idx, true
		}
	}
	return 0, false
}

func (g *Gazetteer) Version() int { return g.version }

// MatchNeighborhood looks for a known neighborhood alias in already folded text.
func (g *Gazetteer) MatchNeighborhood(folded string) (Neighborhood, bool) {
	if i, ok := match(folded, g.nbAliases); ok {
		return g.neighborhoods[i], true
	}
	return Neighborhood{}, false
}

// MatchLandmark looks for a known landmark alias in already folded text.
func (g *Gazetteer) MatchLandmark(folded string) (Landmark, bool) {
	if i, ok := match(folded, g.lmAliases); ok {
		return g.landmarks[i], true
	}
	return Landmark{}, false
}

// MatchCity looks for a known city alias in already folded text.
func (g *Gazetteer) MatchCity(folded string) (City, bool) {
	if i, ok := match(folded, g.cityAliases); ok {
		return g.cities[i], true
	}
	return City{}, false
}

// City resolves a city by any of its names or aliases.
func (g *Gazetteer) City(name string) (City, bool) {
	f := shared.Squash(shared.Fold(name))
	if i, ok := g.cityByName[f]; ok {
		return g.cities[i], true
	}
	for _, a := range g.cityAliases {
		if a.text == f {
			return g.cities[a.idx], true
		}
	}
	return City{}, false
}

func (g *Gazetteer) Counts() (cities, neighborhoods, landmarks int) {
	return len(g.cities), len(g.neighborhoods), len(g.landmarks)
}
