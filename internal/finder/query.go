package finder

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

var ErrInvalidQuery = errors.New("invalid query")

// countSep separates an effect name from its required count: "name*2".
const countSep = "*"

// Query is one search request as users and clients phrase it.
type Query struct {
	Nightfarer string
	Required   []relic.Requirement
	Avoided    []string
	MaxResults int
}

// ParseRequirement reads "name" (count 1) or "name*N".
func ParseRequirement(s string) (relic.Requirement, error) {
	s = strings.TrimSpace(s)
	name, count := s, 1
	if i := strings.LastIndex(s, countSep); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(s[i+len(countSep):]))
		if err == nil {
			name, count = strings.TrimSpace(s[:i]), n
		}
	}
	if name == "" {
		return relic.Requirement{}, fmt.Errorf("%w: empty effect in %q", ErrInvalidQuery, s)
	}
	if count < 1 {
		return relic.Requirement{}, fmt.Errorf("%w: count of %q must be at least 1", ErrInvalidQuery, name)
	}
	return relic.Requirement{Effect: name, Count: count}, nil
}

// FormatRequirement is the inverse of ParseRequirement.
func FormatRequirement(r relic.Requirement) string {
	if r.Count <= 1 {
		return r.Effect
	}
	return r.Effect + countSep + strconv.Itoa(r.Count)
}

// ParseQueryString reads a shared search link: nightfarer, required and
// avoided (comma lists of escaped names) and max. A leading '?' is allowed.
func ParseQueryString(raw string) (Query, error) {
	var q Query
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		items, err := splitEscaped(value)
		if err != nil {
			return Query{}, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, key, err)
		}
		switch key {
		case "nightfarer":
			q.Nightfarer = strings.Join(items, ",")
		case "required":
			for _, item := range items {
				req, err := ParseRequirement(item)
				if err != nil {
					return Query{}, err
				}
				q.Required = append(q.Required, req)
			}
		case "avoided":
			q.Avoided = append(q.Avoided, items...)
		case "max":
			n, err := strconv.Atoi(strings.Join(items, ""))
			if err != nil {
				return Query{}, fmt.Errorf("%w: max: %v", ErrInvalidQuery, err)
			}
			q.MaxResults = n
		}
	}
	return q, nil
}

func splitEscaped(value string) ([]string, error) {
	var out []string
	for _, item := range strings.Split(value, ",") {
		s, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Encode renders q as a query string ParseQueryString reads back. Commas
// inside names are escaped so they never split a list.
func (q Query) Encode() string {
	var parts []string
	if q.Nightfarer != "" {
		parts = append(parts, "nightfarer="+url.QueryEscape(q.Nightfarer))
	}
	if len(q.Required) > 0 {
		items := make([]string, len(q.Required))
		for i, r := range q.Required {
			items[i] = url.QueryEscape(FormatRequirement(r))
		}
		parts = append(parts, "required="+strings.Join(items, ","))
	}
	if len(q.Avoided) > 0 {
		items := make([]string, len(q.Avoided))
		for i, a := range q.Avoided {
			items[i] = url.QueryEscape(a)
		}
		parts = append(parts, "avoided="+strings.Join(items, ","))
	}
	if q.MaxResults > 0 {
		parts = append(parts, "max="+strconv.Itoa(q.MaxResults))
	}
	return strings.Join(parts, "&")
}

// Canonicalizer maps typed effect names to their catalog spelling.
type Canonicalizer interface {
	Canonical(name string) string
}

// Normalize trims and canonicalises names, drops empty entries, merges
// repeated requirements (keeping the highest count) and repeated avoided
// names. Order of first appearance is kept.
func (q Query) Normalize(names Canonicalizer) Query {
	canon := func(s string) string {
		s = strings.TrimSpace(s)
		if names == nil || s == "" {
			return s
		}
		return names.Canonical(s)
	}
	out := Query{Nightfarer: strings.TrimSpace(q.Nightfarer), MaxResults: q.MaxResults}

	pos := make(map[string]int)
	for _, r := range q.Required {
		name := canon(r.Effect)
		if name == "" {
			continue
		}
		if i, ok := pos[name]; ok {
			out.Required[i].Count = max(out.Required[i].Count, r.Count)
			continue
		}
		pos[name] = len(out.Required)
		out.Required = append(out.Required, relic.Requirement{Effect: name, Count: r.Count})
	}

	seen := make(map[string]bool)
	for _, a := range q.Avoided {
		name := canon(a)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out.Avoided = append(out.Avoided, name)
	}
	return out
}

// Validate reports every problem with q at once.
func (q Query) Validate() error {
	var errs []string
	if q.Nightfarer == "" {
		errs = append(errs, "nightfarer is required")
	}
	for _, r := range q.Required {
		if strings.TrimSpace(r.Effect) == "" {
			errs = append(errs, "required effect name is empty")
		}
		if r.Count < 1 {
			errs = append(errs, fmt.Sprintf("count of %q must be at least 1", r.Effect))
		}
	}
	for _, a := range q.Avoided {
		if strings.TrimSpace(a) == "" {
			errs = append(errs, "avoided effect name is empty")
		}
	}
	if q.MaxResults < 0 {
		errs = append(errs, "max results must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(errs, "; "))
	}
	return nil
}

func (q Query) engine() relic.Query {
	return relic.Query{Required: q.Required, Avoided: q.Avoided, MaxResults: q.MaxResults}
}
