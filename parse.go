package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonyliqx/nightreign-relic-manager/internal/inventory"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// listFlag collects a repeatable, comma-separated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

// inputFile is one positional inventory argument.
type inputFile struct {
	Path string
	// Kind is set for CSV files; JSON files carry both kinds.
	Kind relic.Kind
	JSON bool
}

// parseInput reads "path.json", "path.csv" or "simple:path.csv" / "dual:path.csv".
// Without a prefix a CSV whose name mentions dual or depth holds dual relics.
func parseInput(arg string) (inputFile, error) {
	if prefix, path, ok := strings.Cut(arg, ":"); ok && len(prefix) > 1 {
		kind, err := relic.ParseKind(prefix)
		if err != nil {
			return inputFile{}, fmt.Errorf("input %q: %w", arg, err)
		}
		return inputFile{Path: path, Kind: kind}, nil
	}
	if strings.EqualFold(filepath.Ext(arg), ".json") {
		return inputFile{Path: arg, JSON: true}, nil
	}
	base := strings.ToLower(filepath.Base(arg))
	if strings.Contains(base, "dual") || strings.Contains(base, "depth") {
		return inputFile{Path: arg, Kind: relic.Dual}, nil
	}
	return inputFile{Path: arg, Kind: relic.Simple}, nil
}

// loadInputs reads every positional inventory file into one collection.
func loadInputs(args []string, names inventory.Canonicalizer) (inventory.Collection, error) {
	var (
		all   inventory.Collection
		total inventory.ImportStats
	)
	for _, arg := range args {
		in, err := parseInput(arg)
		if err != nil {
			return inventory.Collection{}, err
		}
		c, stats, err := readInput(in, names)
		if err != nil {
			return inventory.Collection{}, err
		}
		fmt.Fprintf(logw(), "[load] %s rows=%d, imported=%d, dropped=%d\n",
			in.Path, stats.Rows, stats.Imported, stats.Dropped)
		all.Merge(c)
		total.Add(stats)
	}
	if len(args) > 1 {
		fmt.Fprintf(logw(), "[load] total rows=%d, imported=%d, dropped=%d\n",
			total.Rows, total.Imported, total.Dropped)
	}
	return all, nil
}

func readInput(in inputFile, names inventory.Canonicalizer) (inventory.Collection, inventory.ImportStats, error) {
	if in.JSON {
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return inventory.Collection{}, inventory.ImportStats{}, err
		}
		c, stats, err := inventory.ParseJSON(data, names)
		if err != nil {
			return inventory.Collection{}, inventory.ImportStats{}, fmt.Errorf("%s: %w", in.Path, err)
		}
		return c, stats, nil
	}

	f, err := os.Open(in.Path)
	if err != nil {
		return inventory.Collection{}, inventory.ImportStats{}, err
	}
	defer f.Close()
	relics, stats, err := inventory.ReadCSV(f, in.Kind, names)
	if err != nil {
		return inventory.Collection{}, inventory.ImportStats{}, fmt.Errorf("%s: %w", in.Path, err)
	}
	var c inventory.Collection
	for _, r := range relics {
		c.Add(r)
	}
	return c, stats, nil
}

// writeExport saves c to path: the browser JSON shape for .json, otherwise two
// CSV files next to path, one per relic kind.
func writeExport(path string, c inventory.Collection) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := inventory.EncodeJSON(c)
		if err != nil {
			return nil, err
		}
		return []string{path}, os.WriteFile(path, data, 0o644)
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	var written []string
	for _, part := range []struct {
		name   string
		relics []relic.Relic
	}{
		{stem + "-simple.csv", c.Simple},
		{stem + "-dual.csv", c.Dual},
	} {
		f, err := os.Create(part.name)
		if err != nil {
			return written, err
		}
		err = inventory.WriteCSV(f, part.relics)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", part.name, err)
		}
		written = append(written, part.name)
	}
	return written, nil
}
