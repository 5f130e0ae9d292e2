// Package catalog holds the static game data the search runs against: the
// vessels each nightfarer can equip and the known effect names.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// VesselsPerNightfarer is fixed by the game.
const VesselsPerNightfarer = 8

var ErrUnknownNightfarer = errors.New("unknown nightfarer")

//go:embed data/catalog.yaml
var embedded []byte

// RawCatalog mirrors the YAML layout.
type RawCatalog struct {
	Nightfarers []RawNightfarer `yaml:"nightfarers"`
	Effects     RawEffects      `yaml:"effects"`
}

type RawNightfarer struct {
	Name    string      `yaml:"name"`
	Alias   string      `yaml:"alias"`
	Vessels []RawVessel `yaml:"vessels"`
}

type RawVessel struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Slots []string `yaml:"slots"`
}

type RawEffects struct {
	Simple []string `yaml:"simple"`
	// DualPositive lists only the positives exclusive to dual relics.
	DualPositive []string `yaml:"dual_positive"`
	DualNegative []string `yaml:"dual_negative"`
}

// Nightfarer is a playable class and its vessels, in catalog order.
type Nightfarer struct {
	Name    string
	Alias   string
	Vessels []relic.Vessel
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	nightfarers []Nightfarer
	byName      map[string]int
	vocab       *Vocabulary
}

var defaultCatalog = mustLoadEmbedded()

func mustLoadEmbedded() *Catalog {
	c, err := Load(embedded)
	if err != nil {
		panic(fmt.Sprintf("load embedded catalog: %v", err))
	}
	return c
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog { return defaultCatalog }

// LoadFile reads a catalog override from disk. An empty path means the
// embedded catalog.
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Load(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Load parses and validates catalog YAML.
func Load(data []byte) (*Catalog, error) {
	var raw RawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	c := &Catalog{
		byName: make(map[string]int),
		vocab:  NewVocabulary(raw.Effects.Simple, raw.Effects.DualPositive, raw.Effects.DualNegative),
	}
	for i, rn := range raw.Nightfarers {
		nf := Nightfarer{Name: rn.Name, Alias: rn.Alias}
		for _, rv := range rn.Vessels {
			colors := make([]relic.Color, len(rv.Slots))
			for j, s := range rv.Slots {
				colors[j], _ = relic.ParseColor(s) // checked by Validate
			}
			v, err := relic.NewVessel(rv.ID, rv.Name, colors)
			if err != nil {
				return nil, err
			}
			nf.Vessels = append(nf.Vessels, v)
		}
		c.nightfarers = append(c.nightfarers, nf)
		c.byName[nameKey(rn.Name)] = i
		if rn.Alias != "" {
			c.byName[nameKey(rn.Alias)] = i
		}
	}
	return c, nil
}

// Validate checks the semantic constraints of a raw catalog and reports
// every problem at once.
func Validate(raw RawCatalog) error {
	var errs []string

	if len(raw.Nightfarers) == 0 {
		errs = append(errs, "no nightfarers")
	}
	names := make(map[string]bool)
	vesselIDs := make(map[string]bool)
	for i, nf := range raw.Nightfarers {
		label := nf.Name
		if label == "" {
			label = fmt.Sprintf("nightfarers[%d]", i)
			errs = append(errs, label+": name is required")
		}
		for _, n := range []string{nf.Name, nf.Alias} {
			if n == "" {
				continue
			}
			if names[nameKey(n)] {
				errs = append(errs, fmt.Sprintf("%s: name %q is used twice", label, n))
			}
			names[nameKey(n)] = true
		}
		if len(nf.Vessels) != VesselsPerNightfarer {
			errs = append(errs, fmt.Sprintf("%s: %d vessels, want %d", label, len(nf.Vessels), VesselsPerNightfarer))
		}
		for j, v := range nf.Vessels {
			if v.ID == "" {
				errs = append(errs, fmt.Sprintf("%s.vessels[%d]: id is required", label, j))
			} else if vesselIDs[v.ID] {
				errs = append(errs, fmt.Sprintf("%s.vessels[%d]: duplicate id %q", label, j, v.ID))
			}
			vesselIDs[v.ID] = true
			if len(v.Slots) != relic.SlotsPerVessel {
				errs = append(errs, fmt.Sprintf("%s.vessels[%d]: %d slots, want %d", label, j, len(v.Slots), relic.SlotsPerVessel))
			}
			for k, s := range v.Slots {
				if _, err := relic.ParseColor(s); err != nil {
					errs = append(errs, fmt.Sprintf("%s.vessels[%d].slots[%d]: %v", label, j, k, err))
				}
			}
		}
	}

	if len(raw.Effects.Simple) == 0 {
		errs = append(errs, "effects.simple must not be empty")
	}
	if len(raw.Effects.DualNegative) == 0 {
		errs = append(errs, "effects.dual_negative must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Nightfarers lists every class in catalog order.
func (c *Catalog) Nightfarers() []Nightfarer {
	return append([]Nightfarer(nil), c.nightfarers...)
}

// Nightfarer looks a class up by in-game name or alias, case-insensitively.
func (c *Catalog) Nightfarer(name string) (Nightfarer, error) {
	i, ok := c.byName[nameKey(name)]
	if !ok {
		return Nightfarer{}, fmt.Errorf("%w: %q", ErrUnknownNightfarer, name)
	}
	return c.nightfarers[i], nil
}

// Vessels returns the vessels of the named class.
func (c *Catalog) Vessels(name string) ([]relic.Vessel, error) {
	nf, err := c.Nightfarer(name)
	if err != nil {
		return nil, err
	}
	return append([]relic.Vessel(nil), nf.Vessels...), nil
}

func (c *Catalog) Vocabulary() *Vocabulary { return c.vocab }

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
