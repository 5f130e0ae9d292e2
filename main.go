//go:build !lambda

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/finder"
	"github.com/tonyliqx/nightreign-relic-manager/internal/inventory"
	"github.com/tonyliqx/nightreign-relic-manager/internal/mcpserver"
	"github.com/tonyliqx/nightreign-relic-manager/internal/platform/config"
	"github.com/tonyliqx/nightreign-relic-manager/internal/platform/otel"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// options are the command-line flags.
type options struct {
	nightfarer string
	require    listFlag
	avoid      listFlag
	max        int
	query      string
	jsonOut    bool
	all        bool
	link       bool
	suggest    string

	importFiles bool
	export      string
	list        bool
	delete      string
	clear       bool
	mcp         bool
}

const usage = `Usage: relic-search [flags] [inventory files...]

Inventory files:
  relics.json          browser export ({"normalRelics": [...], "depthRelics": [...]})
  simple.csv           color,effect1,effect2,effect3
  dual.csv             color,positive1,negative1,positive2,negative2,positive3,negative3
  simple:file.csv      force the relic kind of a CSV file (simple or dual)

Relics saved in the store (-store or RELIC_STORE_PATH) are searched too.

Flags:
`

func main() {
	cfg, err := loadConfig()
	if err != nil {
		config.Exitf("error: %v", err)
	}

	var opts options
	flag.StringVar(&opts.nightfarer, "nightfarer", "", "Nightfarer name or alias (default $RELIC_NIGHTFARER or wylder)")
	flag.Var(&opts.require, "require", "Required effect, repeatable or comma separated; name*N requires N copies")
	flag.Var(&opts.avoid, "avoid", "Avoided effect, repeatable or comma separated")
	flag.IntVar(&opts.max, "max", 0, "Maximum results (default $RELIC_MAX_RESULTS or 100)")
	flag.StringVar(&opts.query, "query", "", "Search as a shared query string (nightfarer=...&required=...)")
	flag.BoolVar(&opts.jsonOut, "json", false, "Output results as JSON")
	verbose := flag.Bool("verbose", false, "Print detailed search progress to stderr")
	flag.BoolVar(&opts.all, "all", false, "Search every nightfarer in parallel and print a summary")
	flag.BoolVar(&opts.link, "link", false, "Print the shareable query string and exit")
	flag.StringVar(&opts.suggest, "suggest", "", "List effect names matching the text and exit")
	flag.StringVar(&cfg.StorePath, "store", cfg.StorePath, "SQLite relic collection")
	flag.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Game data YAML overriding the embedded catalog")
	flag.BoolVar(&opts.importFiles, "import", false, "Add the inventory files to the store and exit")
	flag.StringVar(&opts.export, "export", "", "Write the store (or the inventory files) to a .json or .csv path and exit")
	flag.BoolVar(&opts.list, "list", false, "List the relics in the store and exit")
	flag.StringVar(&opts.delete, "delete", "", "Delete a stored relic by id and exit")
	flag.BoolVar(&opts.clear, "clear", false, "Delete every stored relic and exit")
	flag.BoolVar(&opts.mcp, "mcp", false, "Serve the search as MCP tools over stdio")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	Verbose = *verbose
	if opts.max > 0 {
		cfg.MaxResults = opts.max
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, opts, flag.Args())
	stop()
	if err != nil {
		config.Exitf("error: %v", err)
	}
}

func run(ctx context.Context, cfg Config, opts options, args []string) error {
	settings, err := otel.SettingsFromEnv()
	if err != nil {
		return err
	}
	shutdown, err := otel.Setup(ctx, serviceName, settings)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			fmt.Fprintf(logw(), "[otel] shutdown: %v\n", err)
		}
	}()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return err
	}
	vocab := cat.Vocabulary()
	if opts.suggest != "" {
		for _, name := range vocab.Suggest(opts.suggest, catalog.PositiveEffects, 0) {
			fmt.Println(name)
		}
		return nil
	}

	files, err := loadInputs(args, vocab)
	if err != nil {
		return err
	}

	var store *inventory.Store
	if cfg.StorePath != "" {
		if store, err = inventory.Open(ctx, cfg.StorePath); err != nil {
			return err
		}
		defer store.Close()
	}
	if done, err := runStore(ctx, store, files, opts); done || err != nil {
		return err
	}

	load := func(ctx context.Context) ([]relic.Relic, error) {
		inv := files
		if store != nil {
			stored, err := store.Collection(ctx)
			if err != nil {
				return nil, err
			}
			stored.Merge(files)
			inv = stored
		}
		return inv.All(), nil
	}

	if opts.mcp {
		fmt.Fprintf(logw(), "[mcp] serving %d nightfarers on stdio\n", len(cat.Nightfarers()))
		return mcpserver.New(mcpserver.Config{
			Catalog:         cat,
			Inventory:       load,
			CheckpointEvery: cfg.CheckpointEvery,
			Log:             engineLog(),
		}).Serve(ctx)
	}

	q, err := buildQuery(cfg, opts)
	if err != nil {
		return err
	}
	if opts.link {
		fmt.Println(q.Normalize(vocab).Encode())
		return nil
	}

	inv, err := load(ctx)
	if err != nil {
		return err
	}
	if opts.all {
		return runAll(ctx, cat, inv, q, cfg, opts.jsonOut)
	}
	return runSearch(ctx, cat, inv, q, cfg, opts.jsonOut)
}

// runStore handles the store maintenance flags. done reports that one ran.
func runStore(ctx context.Context, store *inventory.Store, files inventory.Collection, opts options) (done bool, err error) {
	needStore := func() error {
		if store == nil {
			return errors.New("no store configured: pass -store or set RELIC_STORE_PATH")
		}
		return nil
	}

	switch {
	case opts.importFiles:
		if err := needStore(); err != nil {
			return true, err
		}
		n, err := store.AddAll(ctx, files)
		if err != nil {
			return true, err
		}
		simple, dual, err := store.Count(ctx)
		if err != nil {
			return true, err
		}
		fmt.Fprintf(logw(), "[store] imported=%d, simple=%d, dual=%d\n", n, simple, dual)
		return true, nil

	case opts.export != "":
		c := files
		if store != nil {
			if c, err = store.Collection(ctx); err != nil {
				return true, err
			}
		}
		written, err := writeExport(opts.export, c)
		for _, path := range written {
			fmt.Fprintf(logw(), "[export] %s\n", path)
		}
		return true, err

	case opts.list:
		if err := needStore(); err != nil {
			return true, err
		}
		recs, err := store.List(ctx)
		if err != nil {
			return true, err
		}
		for _, rec := range recs {
			fmt.Printf("%s  %-6s %s\n", rec.ID, rec.Relic.Kind, rec.Relic)
		}
		return true, nil

	case opts.delete != "":
		if err := needStore(); err != nil {
			return true, err
		}
		return true, store.Delete(ctx, opts.delete)

	case opts.clear:
		if err := needStore(); err != nil {
			return true, err
		}
		return true, store.Clear(ctx)
	}
	return false, nil
}

func buildQuery(cfg Config, opts options) (finder.Query, error) {
	var q finder.Query
	if opts.query != "" {
		var err error
		if q, err = finder.ParseQueryString(opts.query); err != nil {
			return finder.Query{}, err
		}
	}
	if opts.nightfarer != "" {
		q.Nightfarer = opts.nightfarer
	}
	if q.Nightfarer == "" {
		q.Nightfarer = cfg.Nightfarer
	}
	for _, item := range opts.require {
		req, err := finder.ParseRequirement(item)
		if err != nil {
			return finder.Query{}, err
		}
		q.Required = append(q.Required, req)
	}
	q.Avoided = append(q.Avoided, opts.avoid...)
	if opts.max > 0 || q.MaxResults == 0 {
		q.MaxResults = cfg.MaxResults
	}
	return q, nil
}

func searchOptions(cfg Config) finder.Options {
	o := finder.Options{CheckpointEvery: cfg.CheckpointEvery, Log: engineLog()}
	if Verbose {
		o.OnProgress = func(p relic.Progress) {
			fmt.Fprintf(logw(), "[progress] vessels=%d/%d, visits=%d, results=%d\n",
				p.VesselsDone, p.VesselsTotal, p.Visits, p.Results)
		}
	}
	return o
}

func runSearch(ctx context.Context, cat *catalog.Catalog, inv []relic.Relic, q finder.Query, cfg Config, jsonOut bool) error {
	fmt.Fprintf(logw(), "Loaded %d relics, searching %s\n", len(inv), q.Nightfarer)
	out, err := finder.Run(ctx, cat, inv, q, searchOptions(cfg))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	warnUnknown(cat, out.Unknown)

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(toOutput(out)); encErr != nil {
			return encErr
		}
	} else {
		fmt.Print(FormatOutcome(out))
	}
	fmt.Fprintf(logw(), "%s: %d results, %d visits in %.1fs\n",
		out.Nightfarer.Name, len(out.Report.Results), out.Report.Visits, out.Elapsed.Seconds())
	return err
}

func runAll(ctx context.Context, cat *catalog.Catalog, inv []relic.Relic, q finder.Query, cfg Config, jsonOut bool) error {
	nfs := cat.Nightfarers()
	outcomes := make([]finder.Outcome, len(nfs))

	g, gctx := errgroup.WithContext(ctx)
	for i, nf := range nfs {
		g.Go(func() error {
			nq := q
			nq.Nightfarer = nf.Alias
			out, err := finder.Run(gctx, cat, inv, nq, finder.Options{CheckpointEvery: cfg.CheckpointEvery})
			outcomes[i] = out
			if err != nil {
				return err
			}
			fmt.Fprintf(logw(), "[%d/%d] %s: %d results in %.1fs\n", i+1, len(nfs), nf.Alias, len(out.Report.Results), out.Elapsed.Seconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if len(outcomes) > 0 {
		warnUnknown(cat, outcomes[0].Unknown)
	}

	if jsonOut {
		all := make([]SearchOutput, len(outcomes))
		for i, o := range outcomes {
			all[i] = toOutput(o)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(all)
	}
	printTable(outcomes)
	return nil
}

func warnUnknown(cat *catalog.Catalog, unknown []string) {
	for _, name := range unknown {
		hint := cat.Vocabulary().Suggest(name, catalog.PositiveEffects, 3)
		if len(hint) == 0 {
			fmt.Fprintf(logw(), "warning: unknown effect %q\n", name)
			continue
		}
		fmt.Fprintf(logw(), "warning: unknown effect %q, did you mean %s?\n", name, strings.Join(hint, " / "))
	}
}
