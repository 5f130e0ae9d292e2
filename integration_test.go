package main

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/tonyliqx/nightreign-relic-manager/internal/catalog"
	"github.com/tonyliqx/nightreign-relic-manager/internal/finder"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// sampleInventory builds a reproducible collection from a small slice of the
// catalog vocabulary so requirements actually collide.
func sampleInventory(t *testing.T, cat *catalog.Catalog, seed int64) []relic.Relic {
	t.Helper()
	vocab := cat.Vocabulary()
	simple := vocab.Names(catalog.SimpleEffects)[:8]
	var dualOnly []string
	for _, name := range vocab.Names(catalog.PositiveEffects) {
		if !vocab.IsSimple(name) {
			dualOnly = append(dualOnly, name)
		}
		if len(dualOnly) == 4 {
			break
		}
	}
	negative := vocab.Names(catalog.NegativeEffects)[:4]

	rng := rand.New(rand.NewSource(seed))
	pick := func(pool []string) string { return pool[rng.Intn(len(pool))] }
	color := func() relic.Color { return relic.Colors[rng.Intn(len(relic.Colors))] }

	var inv []relic.Relic
	for i := 0; i < 20; i++ {
		effects := []string{pick(simple)}
		for j := 0; j < rng.Intn(3); j++ {
			effects = append(effects, pick(simple))
		}
		r, err := relic.NewSimple(color(), effects...)
		if err != nil {
			t.Fatalf("NewSimple: %v", err)
		}
		inv = append(inv, r)
	}
	for i := 0; i < 10; i++ {
		pairs := []relic.Pair{{Positive: pick(append(dualOnly, simple...)), Negative: pick(negative)}}
		if rng.Intn(2) == 0 {
			pairs = append(pairs, relic.Pair{Positive: pick(dualOnly)})
		}
		r, err := relic.NewDual(color(), pairs...)
		if err != nil {
			t.Fatalf("NewDual: %v", err)
		}
		inv = append(inv, r)
	}
	return inv
}

// verifyResult runs the loadout checklist against one search outcome.
func verifyResult(t *testing.T, inv []relic.Relic, vocab relic.Vocabulary, out finder.Outcome) {
	t.Helper()
	q := out.Query

	// 1. result cap
	limit := q.MaxResults
	if limit <= 0 {
		limit = relic.DefaultMaxResults
	}
	if len(out.Report.Results) > limit {
		t.Errorf("%d results, cap %d", len(out.Report.Results), limit)
	}

	owned := make(map[string]int)
	for _, r := range inv {
		owned[r.Key()]++
	}
	seen := make(map[string]bool)

	for ri, res := range out.Report.Results {
		prefix := fmt.Sprintf("result %d (%s)", ri, res.Vessel.ID)

		// 2. slots and relics line up
		if len(res.SlotIndex) != len(res.Relics) {
			t.Errorf("%s: %d slot indexes for %d relics", prefix, len(res.SlotIndex), len(res.Relics))
			continue
		}
		if !slices.IsSorted(res.SlotIndex) {
			t.Errorf("%s: slots out of order: %v", prefix, res.SlotIndex)
		}

		used := make(map[string]int)
		var keys []string
		for i, r := range res.Relics {
			slot := res.Vessel.Slots[res.SlotIndex[i]]
			// 3. slot compatibility
			if !relic.Compatible(slot, r) {
				t.Errorf("%s: %s does not fit slot %d (%s/%s)", prefix, r, res.SlotIndex[i]+1, slot.Color, slot.Kind)
			}
			// 4. relic owned and not used more often than owned
			key := r.Key()
			used[key]++
			if used[key] > owned[key] {
				t.Errorf("%s: %s used %d times, owned %d", prefix, r, used[key], owned[key])
			}
			keys = append(keys, key)
		}

		// 5. requirements met, 6. avoided effects absent
		effects := res.Effects()
		counts := make(map[string]int)
		for _, e := range effects {
			counts[e]++
		}
		for _, req := range q.Required {
			if counts[req.Effect] < req.Count {
				t.Errorf("%s: %s appears %d times, want %d", prefix, req.Effect, counts[req.Effect], req.Count)
			}
		}
		for _, a := range q.Avoided {
			if counts[a] > 0 {
				t.Errorf("%s: avoided %s present", prefix, a)
			}
		}

		// 7. classification matches a fresh one
		want := relic.Classify(effects, relic.Query{Required: q.Required, Avoided: q.Avoided}, vocab)
		if !slices.Equal(want.RequiredFound, res.RequiredFound) ||
			!slices.Equal(want.ExtraPositive, res.ExtraPositive) ||
			!slices.Equal(want.ExtraNegative, res.ExtraNegative) {
			t.Errorf("%s: classification %+v, want %+v", prefix, res, want)
		}

		// 8. no repeated relic multiset within a vessel
		slices.Sort(keys)
		fp := res.Vessel.ID + "|" + strings.Join(keys, "\x1e")
		if seen[fp] {
			t.Errorf("%s: duplicate loadout", prefix)
		}
		seen[fp] = true
	}
}

func TestEveryNightfarer(t *testing.T) {
	cat := catalog.Default()
	nfs := cat.Nightfarers()
	if testing.Short() {
		nfs = nfs[:1]
	}

	for i, nf := range nfs {
		t.Run(nf.Alias, func(t *testing.T) {
			t.Parallel()
			inv := sampleInventory(t, cat, int64(i+1))
			vocab := cat.Vocabulary()

			queries := []finder.Query{
				{Nightfarer: nf.Alias, MaxResults: 30},
				{
					Nightfarer: nf.Alias,
					Required:   []relic.Requirement{{Effect: inv[0].Effects[0], Count: 1}},
					Avoided:    []string{vocab.Names(catalog.NegativeEffects)[0]},
				},
				{
					Nightfarer: nf.Alias,
					Required: []relic.Requirement{
						{Effect: inv[1].Effects[0], Count: 2},
						{Effect: inv[len(inv)-1].Pairs[0].Positive, Count: 1},
					},
				},
			}
			for qi, q := range queries {
				out, err := finder.Run(context.Background(), cat, inv, q, finder.Options{})
				if err != nil {
					t.Fatalf("query %d: %v", qi, err)
				}
				t.Logf("%s query %d: results=%d visits=%d infeasible=%v",
					nf.Alias, qi, len(out.Report.Results), out.Report.Visits, out.Report.Infeasible)
				verifyResult(t, inv, vocab, out)
			}
		})
	}
}

func TestEmptyQueryFillsEveryVessel(t *testing.T) {
	cat := catalog.Default()
	inv := sampleInventory(t, cat, 7)
	out, err := finder.Run(context.Background(), cat, inv, finder.Query{Nightfarer: "wylder", MaxResults: 500}, finder.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Report.Infeasible {
		t.Fatal("a query without requirements is never infeasible")
	}
	if len(out.Report.Results) == 0 {
		t.Fatal("expected loadouts")
	}
	// Placing is tried before skipping, so the first loadout is never empty.
	if len(out.Report.Results[0].Relics) == 0 {
		t.Error("first loadout is empty")
	}
}
