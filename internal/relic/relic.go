package relic

import (
	"errors"
	"fmt"
	"strings"
)

// MaxEffects is the number of effect fields a simple relic carries, and the
// number of positive/negative pairs a dual relic carries.
const MaxEffects = 3

var (
	ErrInvalidColor   = errors.New("invalid relic color")
	ErrMissingEffect  = errors.New("relic has no first effect")
	ErrTooManyEffects = errors.New("relic has more than three effects")
)

// Color is a relic or slot color. Any only ever appears on slots.
type Color int

const (
	ColorNone Color = iota
	Yellow
	Red
	Green
	Blue
	Any
)

// Colors lists the four colors a relic can have.
var Colors = []Color{Yellow, Red, Green, Blue}

var colorNames = [...]string{
	ColorNone: "",
	Yellow:    "黄",
	Red:       "红",
	Green:     "绿",
	Blue:      "蓝",
	Any:       "全",
}

var colorEnglish = [...]string{
	ColorNone: "",
	Yellow:    "yellow",
	Red:       "red",
	Green:     "green",
	Blue:      "blue",
	Any:       "any",
}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// English returns the lower-case English name of the color.
func (c Color) English() string {
	if c < 0 || int(c) >= len(colorEnglish) {
		return ""
	}
	return colorEnglish[c]
}

// ParseColor accepts a color by its Chinese or English name. The wildcard
// color parses as Any.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	for c := Yellow; c <= Any; c++ {
		if s == colorNames[c] || strings.EqualFold(s, colorEnglish[c]) {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// ParseRelicColor is ParseColor restricted to the four relic colors.
func ParseRelicColor(s string) (Color, error) {
	c, err := ParseColor(s)
	if err != nil {
		return ColorNone, err
	}
	if c == Any {
		return ColorNone, fmt.Errorf("%w: %q is a slot-only color", ErrInvalidColor, s)
	}
	return c, nil
}

// Kind separates simple relics from dual (depth) relics.
type Kind int

const (
	KindNone Kind = iota
	Simple
	Dual
)

func (k Kind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Dual:
		return "dual"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "simple"/"normal" and "dual"/"depth".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "normal":
		return Simple, nil
	case "dual", "depth":
		return Dual, nil
	}
	return KindNone, fmt.Errorf("invalid relic kind %q", s)
}

// Pair is one positive/negative line of a dual relic. Either side may be empty.
type Pair struct {
	Positive string `json:"positive,omitempty"`
	Negative string `json:"negative,omitempty"`
}

// Relic is a single inventory item. Simple relics use Effects; dual relics
// use Pairs. Empty strings mark unused fields.
type Relic struct {
	Kind    Kind
	Color   Color
	Effects [MaxEffects]string
	Pairs   [MaxEffects]Pair
}

// NewSimple builds a simple relic. The first effect is mandatory.
func NewSimple(color Color, effects ...string) (Relic, error) {
	if len(effects) > MaxEffects {
		return Relic{}, ErrTooManyEffects
	}
	r := Relic{Kind: Simple, Color: color}
	for i, e := range effects {
		r.Effects[i] = strings.TrimSpace(e)
	}
	return r, r.Validate()
}

// NewDual builds a dual relic. The first pair needs its positive side.
func NewDual(color Color, pairs ...Pair) (Relic, error) {
	if len(pairs) > MaxEffects {
		return Relic{}, ErrTooManyEffects
	}
	r := Relic{Kind: Dual, Color: color}
	for i, p := range pairs {
		r.Pairs[i] = Pair{Positive: strings.TrimSpace(p.Positive), Negative: strings.TrimSpace(p.Negative)}
	}
	return r, r.Validate()
}

// Validate checks the color and the mandatory first effect.
func (r Relic) Validate() error {
	if r.Color < Yellow || r.Color > Blue {
		return fmt.Errorf("%w: %d", ErrInvalidColor, int(r.Color))
	}
	switch r.Kind {
	case Simple:
		if r.Effects[0] == "" {
			return ErrMissingEffect
		}
	case Dual:
		if r.Pairs[0].Positive == "" {
			return ErrMissingEffect
		}
	default:
		return fmt.Errorf("invalid relic kind %d", int(r.Kind))
	}
	return nil
}

// Fields returns every non-empty effect name on the relic in field order.
// Dual relics list positive then negative for each pair.
func (r Relic) Fields() []string {
	out := make([]string, 0, 2*MaxEffects)
	if r.Kind == Simple {
		for _, e := range r.Effects {
			if e != "" {
				out = append(out, e)
			}
		}
		return out
	}
	for _, p := range r.Pairs {
		if p.Positive != "" {
			out = append(out, p.Positive)
		}
		if p.Negative != "" {
			out = append(out, p.Negative)
		}
	}
	return out
}

// Positives returns the non-empty beneficial effects.
func (r Relic) Positives() []string {
	if r.Kind == Simple {
		return r.Fields()
	}
	var out []string
	for _, p := range r.Pairs {
		if p.Positive != "" {
			out = append(out, p.Positive)
		}
	}
	return out
}

// Negatives returns the non-empty drawbacks of a dual relic.
func (r Relic) Negatives() []string {
	var out []string
	if r.Kind != Dual {
		return out
	}
	for _, p := range r.Pairs {
		if p.Negative != "" {
			out = append(out, p.Negative)
		}
	}
	return out
}

// Count reports how many fields of the relic carry effect.
func (r Relic) Count(effect string) int {
	n := 0
	for _, f := range r.Fields() {
		if f == effect {
			n++
		}
	}
	return n
}

// Has reports whether any field carries effect.
func (r Relic) Has(effect string) bool {
	return r.Count(effect) > 0
}

// Key identifies a relic by content. Two relics with the same kind, color
// and fields share a key.
func (r Relic) Key() string {
	var b strings.Builder
	b.WriteString(r.Kind.String())
	b.WriteByte(0x1f)
	b.WriteString(r.Color.String())
	if r.Kind == Simple {
		for _, e := range r.Effects {
			b.WriteByte(0x1f)
			b.WriteString(e)
		}
		return b.String()
	}
	for _, p := range r.Pairs {
		b.WriteByte(0x1f)
		b.WriteString(p.Positive)
		b.WriteByte(0x1f)
		b.WriteString(p.Negative)
	}
	return b.String()
}

func (r Relic) String() string {
	var parts []string
	if r.Kind == Simple {
		parts = r.Fields()
	} else {
		for _, p := range r.Pairs {
			switch {
			case p.Positive != "" && p.Negative != "":
				parts = append(parts, p.Positive+" (-"+p.Negative+")")
			case p.Positive != "":
				parts = append(parts, p.Positive)
			case p.Negative != "":
				parts = append(parts, "-"+p.Negative)
			}
		}
	}
	return "[" + r.Color.String() + "] " + strings.Join(parts, " / ")
}
