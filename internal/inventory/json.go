package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// JSON keys of the browser export document.
const (
	keySimple = "normalRelics"
	keyDual   = "depthRelics"
)

var ErrInvalidJSON = errors.New("invalid inventory json")

// ParseJSON reads a collection in the browser export shape:
//
//	{"normalRelics": [{"color", "effect1", "effect2", "effect3"}],
//	 "depthRelics":  [{"color", "positiveEffect1", "negativeEffect1", ...}]}
//
// Malformed entries are dropped and counted.
func ParseJSON(data []byte, names Canonicalizer) (Collection, ImportStats, error) {
	if !gjson.ValidBytes(data) {
		return Collection{}, ImportStats{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Collection{}, ImportStats{}, fmt.Errorf("%w: top level is not an object", ErrInvalidJSON)
	}
	c, stats := FromJSON(doc, names)
	return c, stats, nil
}

// FromJSON reads the two relic arrays out of an already parsed object.
func FromJSON(doc gjson.Result, names Canonicalizer) (Collection, ImportStats) {
	names = namer(names)
	var (
		c     Collection
		stats ImportStats
	)
	field := func(v gjson.Result, key string) string {
		s := strings.TrimSpace(v.Get(key).String())
		if s == "" {
			return ""
		}
		return names.Canonical(s)
	}
	keep := func(r relic.Relic, err error) {
		stats.Rows++
		if err != nil {
			stats.Dropped++
			return
		}
		stats.Imported++
		c.Add(r)
	}

	doc.Get(keySimple).ForEach(func(_, v gjson.Result) bool {
		color, err := relic.ParseRelicColor(v.Get("color").String())
		if err != nil {
			keep(relic.Relic{}, err)
			return true
		}
		keep(relic.NewSimple(color, field(v, "effect1"), field(v, "effect2"), field(v, "effect3")))
		return true
	})
	doc.Get(keyDual).ForEach(func(_, v gjson.Result) bool {
		color, err := relic.ParseRelicColor(v.Get("color").String())
		if err != nil {
			keep(relic.Relic{}, err)
			return true
		}
		var pairs [relic.MaxEffects]relic.Pair
		for i := range pairs {
			n := i + 1
			pairs[i] = relic.Pair{
				Positive: field(v, fmt.Sprintf("positiveEffect%d", n)),
				Negative: field(v, fmt.Sprintf("negativeEffect%d", n)),
			}
		}
		keep(relic.NewDual(color, pairs[:]...))
		return true
	})
	return c, stats
}

// EncodeJSON writes c in the browser export shape. Unused fields are left
// out, as the browser does.
func EncodeJSON(c Collection) ([]byte, error) {
	doc := []byte(`{"` + keySimple + `":[],"` + keyDual + `":[]}`)
	for _, r := range c.All() {
		obj, err := encodeRelic(r)
		if err != nil {
			return nil, fmt.Errorf("encode inventory: %w", err)
		}
		key := keySimple
		if r.Kind == relic.Dual {
			key = keyDual
		}
		if doc, err = sjson.SetRawBytes(doc, key+".-1", obj); err != nil {
			return nil, fmt.Errorf("encode inventory: %w", err)
		}
	}
	return doc, nil
}

func encodeRelic(r relic.Relic) ([]byte, error) {
	obj := []byte(`{}`)
	var err error
	set := func(key, value string) {
		if err != nil || value == "" {
			return
		}
		obj, err = sjson.SetBytes(obj, key, value)
	}
	set("color", r.Color.String())
	if r.Kind == relic.Simple {
		for i, e := range r.Effects {
			set(fmt.Sprintf("effect%d", i+1), e)
		}
	} else {
		for i, p := range r.Pairs {
			set(fmt.Sprintf("positiveEffect%d", i+1), p.Positive)
			set(fmt.Sprintf("negativeEffect%d", i+1), p.Negative)
		}
	}
	return obj, err
}
