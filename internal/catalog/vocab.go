package catalog

import (
	"strings"

	"golang.org/x/text/width"
)

// EffectKind selects one of the effect lists.
type EffectKind int

const (
	// SimpleEffects are the effects a simple relic can roll.
	SimpleEffects EffectKind = iota
	// PositiveEffects are the simple effects plus the dual-exclusive positives.
	PositiveEffects
	// NegativeEffects are the drawbacks dual relics carry.
	NegativeEffects
)

// ParseEffectKind accepts "simple", "positive" and "negative".
func ParseEffectKind(s string) (EffectKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "normal":
		return SimpleEffects, true
	case "positive", "", "required":
		return PositiveEffects, true
	case "negative", "avoided":
		return NegativeEffects, true
	}
	return 0, false
}

// Vocabulary is the set of effect names the game knows. Lookups are exact;
// Canonical maps loosely typed input to the catalog spelling.
type Vocabulary struct {
	simple   []string
	positive []string
	negative []string

	isSimple   map[string]bool
	isPositive map[string]bool
	isNegative map[string]bool
	folded     map[string]string
}

// NewVocabulary builds a vocabulary. dualPositive lists only the positives
// exclusive to dual relics; repeats across and within lists are dropped.
func NewVocabulary(simple, dualPositive, negative []string) *Vocabulary {
	v := &Vocabulary{
		isSimple:   make(map[string]bool),
		isPositive: make(map[string]bool),
		isNegative: make(map[string]bool),
		folded:     make(map[string]string),
	}
	for _, name := range simple {
		if name = strings.TrimSpace(name); name == "" || v.isSimple[name] {
			continue
		}
		v.isSimple[name] = true
		v.simple = append(v.simple, name)
	}
	for _, name := range append(append([]string(nil), v.simple...), dualPositive...) {
		if name = strings.TrimSpace(name); name == "" || v.isPositive[name] {
			continue
		}
		v.isPositive[name] = true
		v.positive = append(v.positive, name)
	}
	for _, name := range negative {
		if name = strings.TrimSpace(name); name == "" || v.isNegative[name] {
			continue
		}
		v.isNegative[name] = true
		v.negative = append(v.negative, name)
	}
	for _, list := range [][]string{v.positive, v.negative} {
		for _, name := range list {
			if _, ok := v.folded[fold(name)]; !ok {
				v.folded[fold(name)] = name
			}
		}
	}
	return v
}

func (v *Vocabulary) IsSimple(name string) bool   { return v.isSimple[name] }
func (v *Vocabulary) IsPositive(name string) bool { return v.isPositive[name] }
func (v *Vocabulary) IsNegative(name string) bool { return v.isNegative[name] }

// Known reports whether name is any catalog effect.
func (v *Vocabulary) Known(name string) bool {
	return v.isPositive[name] || v.isNegative[name]
}

// Names returns a copy of one effect list in catalog order.
func (v *Vocabulary) Names(kind EffectKind) []string {
	switch kind {
	case SimpleEffects:
		return append([]string(nil), v.simple...)
	case NegativeEffects:
		return append([]string(nil), v.negative...)
	}
	return append([]string(nil), v.positive...)
}

// Canonical returns the catalog spelling of name, matching regardless of
// full-width versus half-width characters, quote style and letter case.
// Unknown names come back trimmed.
func (v *Vocabulary) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if v.Known(name) {
		return name
	}
	if c, ok := v.folded[fold(name)]; ok {
		return c
	}
	return name
}

// Suggest lists up to limit names of kind containing input, prefix matches
// first. A limit of zero or less means no limit.
func (v *Vocabulary) Suggest(input string, kind EffectKind, limit int) []string {
	needle := fold(input)
	var prefix, inner []string
	for _, name := range v.Names(kind) {
		f := fold(name)
		switch {
		case strings.HasPrefix(f, needle):
			prefix = append(prefix, name)
		case strings.Contains(f, needle):
			inner = append(inner, name)
		}
	}
	out := append(prefix, inner...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var quoteFolder = strings.NewReplacer(
	"“", `"`, "”", `"`, "「", `"`, "」", `"`, "『", `"`, "』", `"`,
	"‘", "'", "’", "'",
	" ", "",
)

func fold(s string) string {
	s = width.Fold.String(strings.TrimSpace(s))
	return strings.ToLower(quoteFolder.Replace(s))
}
