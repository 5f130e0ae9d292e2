package relic

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Result is one accepted loadout.
type Result struct {
	Vessel Vessel
	// Relics lists the assigned relics in vessel slot order; empty slots are omitted.
	Relics []Relic
	// SlotIndex[i] is the vessel slot (0-5) holding Relics[i].
	SlotIndex     []int
	RequiredFound []string
	AvoidedFound  []string
	ExtraPositive []string
	ExtraNegative []string
}

// Effects flattens the fields of every assigned relic in slot order.
func (r Result) Effects() []string {
	var out []string
	for i := range r.Relics {
		out = append(out, r.Relics[i].Fields()...)
	}
	return out
}

// Report is what a search returns.
type Report struct {
	Results         []Result
	Visits          int64
	VesselsSearched int
	// Infeasible is set when the analytic pre-check ruled the query out and
	// no vessel was searched.
	Infeasible bool
	Elapsed    time.Duration
}

// ── Searcher ────────────────────────────────────────────────────────

// Searcher enumerates loadouts over a fixed candidate list. A Searcher is not
// safe for concurrent use; run independent searches on separate Searchers.
type Searcher struct {
	vessels    []Vessel
	candidates []Relic
	query      Query
	cfg        Config
	vocab      Vocabulary

	keys     []string // keys[ci] = candidates[ci].Key()
	gains    [][]int  // gains[ci][r] = occurrences of requirement r on candidate ci
	total    []int    // total[ci] = sum of gains[ci]
	dualOnly []bool   // per requirement
	dualGain []int    // dualGain[ci] = gains of candidate ci on dual-only requirements

	// per-search state
	ctx     context.Context
	results []Result
	visits  int64
	err     error
}

// NewSearcher prepares a search of vessels, in order, over candidates.
// Candidates are usually the output of FilterCandidates.
func NewSearcher(vessels []Vessel, candidates []Relic, q Query, cfg Config) *Searcher {
	s := &Searcher{
		vessels:    vessels,
		candidates: candidates,
		query:      q,
		cfg:        cfg,
		vocab:      cfg.Vocabulary,
	}
	if s.vocab == nil {
		s.vocab = InventoryVocabulary(candidates)
	}
	s.keys = make([]string, len(candidates))
	for ci := range candidates {
		s.keys[ci] = candidates[ci].Key()
	}
	s.gains = requirementGains(candidates, q.Required)
	s.dualOnly = dualOnlyRequirements(candidates, q.Required, s.gains)
	s.total = make([]int, len(candidates))
	s.dualGain = make([]int, len(candidates))
	for ci := range candidates {
		s.total[ci] = sumGain(s.gains[ci], nil)
		s.dualGain[ci] = sumGain(s.gains[ci], s.dualOnly)
	}
	return s
}

// Find runs the whole pipeline over a raw inventory: index, candidate
// filter, pre-check and search. A nil cfg.Vocabulary is derived from the
// full inventory.
func Find(ctx context.Context, vessels []Vessel, inventory []Relic, q Query, cfg Config) (Report, error) {
	if cfg.Vocabulary == nil {
		cfg.Vocabulary = InventoryVocabulary(inventory)
	}
	ix := BuildIndex(inventory)
	candidates := FilterCandidates(inventory, ix, q.Required, q.Avoided)
	return NewSearcher(vessels, candidates, q, cfg).Search(ctx)
}

// Search walks every vessel in order until the result cap is reached. When
// ctx is cancelled the search stops at the next checkpoint and returns the
// results gathered so far along with the context error.
func (s *Searcher) Search(ctx context.Context) (Report, error) {
	start := time.Now()
	s.ctx = ctx
	s.results = nil
	s.visits = 0
	s.err = nil
	defer func() { s.ctx = nil }()

	fmt.Fprintf(s.logw(), "[init] vessels=%d, candidates=%d, required=%d, avoided=%d, max=%d\n",
		len(s.vessels), len(s.candidates), len(s.query.Required), len(s.query.Avoided), s.query.maxResults())

	if !Feasible(s.candidates, s.query) {
		fmt.Fprintf(s.logw(), "[precheck] infeasible, skipping search\n")
		return Report{Infeasible: true, Elapsed: time.Since(start)}, nil
	}

	done := 0
	for vi := range s.vessels {
		if s.full() {
			break
		}
		if err := ctx.Err(); err != nil {
			s.err = err
			break
		}
		before, visitsBefore := len(s.results), s.visits
		run := s.newVesselRun(vi)
		run.walk(0)
		if s.err != nil {
			break
		}
		done++
		fmt.Fprintf(s.logw(), "[vessel] %s results=%d, visits=%d\n",
			s.vessels[vi].ID, len(s.results)-before, s.visits-visitsBefore)
		s.progress(done)
	}

	rep := Report{
		Results:         s.results,
		Visits:          s.visits,
		VesselsSearched: done,
		Elapsed:         time.Since(start),
	}
	fmt.Fprintf(s.logw(), "[done] results=%d, visits=%d, elapsed=%v\n", len(rep.Results), rep.Visits, rep.Elapsed)
	return rep, s.err
}

func (s *Searcher) full() bool {
	return len(s.results) >= s.query.maxResults()
}

func (s *Searcher) progress(done int) {
	if s.cfg.OnProgress == nil {
		return
	}
	s.cfg.OnProgress(Progress{
		VesselsDone:  done,
		VesselsTotal: len(s.vessels),
		Visits:       s.visits,
		Results:      len(s.results),
	})
}

// checkpoint reports false when the search must stop.
func (s *Searcher) checkpoint(done int) bool {
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	s.progress(done)
	runtime.Gosched()
	return true
}

func (s *Searcher) logw() io.Writer {
	if s.cfg.Log == nil {
		return io.Discard
	}
	return s.cfg.Log
}

// ── Per-vessel walk ─────────────────────────────────────────────────

type vesselRun struct {
	s      *Searcher
	index  int
	vessel *Vessel

	order       []int   // vessel slot visited at each position
	options     [][]int // options[pos] = compatible candidate indices
	capLeft     []int   // max required occurrences positions pos.. can still add
	dualCapLeft []int   // same, restricted to dual-only requirements

	picks []int // picks[pos] = candidate index or -1
	used  []bool
	have  []int
	seen  map[string]bool
}

func (s *Searcher) newVesselRun(vi int) *vesselRun {
	v := &vesselRun{
		s:      s,
		index:  vi,
		vessel: &s.vessels[vi],
		picks:  make([]int, SlotsPerVessel),
		used:   make([]bool, len(s.candidates)),
		have:   make([]int, len(s.query.Required)),
		seen:   make(map[string]bool),
	}

	bySlot := make([][]int, SlotsPerVessel)
	for si, slot := range v.vessel.Slots {
		for ci := range s.candidates {
			if Compatible(slot, s.candidates[ci]) {
				bySlot[si] = append(bySlot[si], ci)
			}
		}
	}
	v.order = make([]int, SlotsPerVessel)
	for i := range v.order {
		v.order[i] = i
	}
	sort.SliceStable(v.order, func(a, b int) bool {
		return len(bySlot[v.order[a]]) < len(bySlot[v.order[b]])
	})

	v.options = make([][]int, SlotsPerVessel)
	v.capLeft = make([]int, SlotsPerVessel+1)
	v.dualCapLeft = make([]int, SlotsPerVessel+1)
	for pos := SlotsPerVessel - 1; pos >= 0; pos-- {
		opts := bySlot[v.order[pos]]
		v.options[pos] = opts
		best, bestDual := 0, 0
		for _, ci := range opts {
			best = max(best, s.total[ci])
			bestDual = max(bestDual, s.dualGain[ci])
		}
		v.capLeft[pos] = v.capLeft[pos+1] + best
		v.dualCapLeft[pos] = v.dualCapLeft[pos+1] + bestDual
	}

	if s.cfg.Log != nil {
		sizes := make([]string, SlotsPerVessel)
		for pos, si := range v.order {
			sizes[pos] = fmt.Sprintf("%d:%d", si+1, len(v.options[pos]))
		}
		fmt.Fprintf(s.logw(), "[verbose/vessel] %s slot order %s, capacity=%d\n",
			v.vessel.ID, strings.Join(sizes, " "), v.capLeft[0])
	}
	return v
}

// walk explores positions pos.. and reports false when the whole search
// must stop (cap reached or context cancelled).
func (v *vesselRun) walk(pos int) bool {
	s := v.s
	s.visits++
	if n := s.cfg.CheckpointEvery; n > 0 && s.visits%int64(n) == 0 {
		if !s.checkpoint(v.index) {
			return false
		}
	}
	if len(s.query.Required) > 0 && v.hopeless(pos) {
		return true
	}
	if pos == SlotsPerVessel {
		v.accept()
		return !s.full()
	}

	for _, ci := range v.options[pos] {
		if v.used[ci] {
			continue
		}
		v.place(pos, ci)
		ok := v.walk(pos + 1)
		v.unplace(pos, ci)
		if !ok {
			return false
		}
	}
	v.picks[pos] = -1
	return v.walk(pos + 1)
}

func (v *vesselRun) place(pos, ci int) {
	v.picks[pos] = ci
	v.used[ci] = true
	for r, n := range v.s.gains[ci] {
		v.have[r] += n
	}
}

func (v *vesselRun) unplace(pos, ci int) {
	v.picks[pos] = -1
	v.used[ci] = false
	for r, n := range v.s.gains[ci] {
		v.have[r] -= n
	}
}

// hopeless applies the two capacity bounds: the unmet occurrences must fit
// in what the remaining positions can add, and the unmet dual-only
// occurrences must fit in what the remaining dual slots can add.
func (v *vesselRun) hopeless(pos int) bool {
	missing, missingDual := 0, 0
	for r, req := range v.s.query.Required {
		if d := req.Count - v.have[r]; d > 0 {
			missing += d
			if v.s.dualOnly[r] {
				missingDual += d
			}
		}
	}
	return missing > v.capLeft[pos] || missingDual > v.dualCapLeft[pos]
}

func (v *vesselRun) accept() {
	s := v.s
	for r, req := range s.query.Required {
		if v.have[r] < req.Count {
			return
		}
	}

	var bySlot [SlotsPerVessel]int
	for i := range bySlot {
		bySlot[i] = -1
	}
	for pos, ci := range v.picks {
		if ci >= 0 {
			bySlot[v.order[pos]] = ci
		}
	}

	res := Result{Vessel: *v.vessel}
	keys := make([]string, 0, SlotsPerVessel)
	for si, ci := range bySlot {
		if ci < 0 {
			continue
		}
		res.Relics = append(res.Relics, s.candidates[ci])
		res.SlotIndex = append(res.SlotIndex, si)
		keys = append(keys, s.keys[ci])
	}
	effects := res.Effects()
	for _, e := range effects {
		if s.query.avoids(e) {
			return
		}
	}

	fp := buildFingerprint(keys)
	if v.seen[fp] {
		return
	}
	v.seen[fp] = true

	cls := Classify(effects, s.query, s.vocab)
	res.RequiredFound = cls.RequiredFound
	res.AvoidedFound = cls.AvoidedFound
	res.ExtraPositive = cls.ExtraPositive
	res.ExtraNegative = cls.ExtraNegative
	s.results = append(s.results, res)
}

// buildFingerprint is independent of slot assignment: the sorted multiset
// of relic keys.
func buildFingerprint(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1e")
}
