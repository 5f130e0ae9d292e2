// Package inventory loads, saves and stores a player's relic collection.
package inventory

import (
	"errors"

	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

var ErrNotFound = errors.New("relic not found")

// Collection is a player's relics split by kind, each list in the order the
// player added them.
type Collection struct {
	Simple []relic.Relic
	Dual   []relic.Relic
}

// Add appends r to the list matching its kind.
func (c *Collection) Add(r relic.Relic) {
	if r.Kind == relic.Dual {
		c.Dual = append(c.Dual, r)
		return
	}
	c.Simple = append(c.Simple, r)
}

// Merge appends every relic of other.
func (c *Collection) Merge(other Collection) {
	c.Simple = append(c.Simple, other.Simple...)
	c.Dual = append(c.Dual, other.Dual...)
}

// All returns simple relics followed by dual relics.
func (c Collection) All() []relic.Relic {
	out := make([]relic.Relic, 0, c.Len())
	out = append(out, c.Simple...)
	return append(out, c.Dual...)
}

func (c Collection) Len() int { return len(c.Simple) + len(c.Dual) }

// ImportStats reports what an import kept and what it dropped.
type ImportStats struct {
	Rows     int
	Imported int
	Dropped  int
	// Header is set when a leading header row was skipped.
	Header bool
}

// Add accumulates o into s.
func (s *ImportStats) Add(o ImportStats) {
	s.Rows += o.Rows
	s.Imported += o.Imported
	s.Dropped += o.Dropped
	s.Header = s.Header || o.Header
}

// Canonicalizer maps a typed effect name to its catalog spelling.
type Canonicalizer interface {
	Canonical(name string) string
}

type trimOnly struct{}

func (trimOnly) Canonical(name string) string { return name }

func namer(c Canonicalizer) Canonicalizer {
	if c == nil {
		return trimOnly{}
	}
	return c
}
