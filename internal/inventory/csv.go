package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// ReadCSV parses relics of one kind, one per row. Simple rows are
// color,e1,e2,e3; dual rows are color,p1,n1,p2,n2,p3,n3. Missing trailing
// columns read as empty and extra columns are ignored. A leading row whose
// first cell is not a color is taken as a header. Rows with a bad color or
// an empty first effect are dropped and counted, never fatal.
func ReadCSV(r io.Reader, kind relic.Kind, names Canonicalizer) ([]relic.Relic, ImportStats, error) {
	if kind != relic.Simple && kind != relic.Dual {
		return nil, ImportStats{}, fmt.Errorf("read csv: invalid relic kind %v", kind)
	}
	names = namer(names)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		out   []relic.Relic
		stats ImportStats
		first = true
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			stats.Rows++
			stats.Dropped++
			continue
		}
		if err != nil {
			return out, stats, fmt.Errorf("read csv: %w", err)
		}
		if blank(rec) {
			continue
		}
		if first {
			first = false
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if _, err := relic.ParseRelicColor(rec[0]); err != nil {
				stats.Header = true
				continue
			}
		}

		stats.Rows++
		item, err := parseRow(rec, kind, names)
		if err != nil {
			stats.Dropped++
			continue
		}
		stats.Imported++
		out = append(out, item)
	}
	return out, stats, nil
}

func parseRow(rec []string, kind relic.Kind, names Canonicalizer) (relic.Relic, error) {
	color, err := relic.ParseRelicColor(rec[0])
	if err != nil {
		return relic.Relic{}, err
	}
	cell := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		s := strings.TrimSpace(rec[i])
		if s == "" {
			return ""
		}
		return names.Canonical(s)
	}
	if kind == relic.Simple {
		return relic.NewSimple(color, cell(1), cell(2), cell(3))
	}
	return relic.NewDual(color,
		relic.Pair{Positive: cell(1), Negative: cell(2)},
		relic.Pair{Positive: cell(3), Negative: cell(4)},
		relic.Pair{Positive: cell(5), Negative: cell(6)},
	)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteCSV writes one row per relic. Every row has all columns of its kind,
// empty where a field is unused, so a written file reads back unchanged.
func WriteCSV(w io.Writer, relics []relic.Relic) error {
	cw := csv.NewWriter(w)
	for _, r := range relics {
		if err := cw.Write(csvRow(r)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func csvRow(r relic.Relic) []string {
	row := []string{r.Color.String()}
	if r.Kind == relic.Simple {
		return append(row, r.Effects[:]...)
	}
	for _, p := range r.Pairs {
		row = append(row, p.Positive, p.Negative)
	}
	return row
}
