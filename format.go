package main

import (
	"fmt"
	"strings"

	"github.com/tonyliqx/nightreign-relic-manager/internal/finder"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// SearchOutput is the JSON form of one finished search.
type SearchOutput struct {
	Nightfarer string         `json:"nightfarer"`
	Query      string         `json:"query"`
	Infeasible bool           `json:"infeasible"`
	Visits     int64          `json:"visits"`
	TimeMs     int64          `json:"timeMs"`
	Unknown    []string       `json:"unknown,omitempty"`
	Results    []ResultOutput `json:"results"`
}

// ResultOutput is the JSON form of one loadout.
type ResultOutput struct {
	VesselID      string         `json:"vesselId"`
	Vessel        string         `json:"vessel"`
	Relics        []SlottedRelic `json:"relics"`
	RequiredFound []string       `json:"requiredFound"`
	ExtraPositive []string       `json:"extraPositive"`
	ExtraNegative []string       `json:"extraNegative"`
}

// SlottedRelic is a relic and the 1-based vessel slot holding it.
type SlottedRelic struct {
	Slot  int          `json:"slot"`
	Kind  string       `json:"kind"`
	Color string       `json:"color"`
	Text  string       `json:"text"`
	Pairs []relic.Pair `json:"pairs,omitempty"`
	// Effects is set for simple relics.
	Effects []string `json:"effects,omitempty"`
}

func toOutput(out finder.Outcome) SearchOutput {
	s := SearchOutput{
		Nightfarer: out.Nightfarer.Name,
		Query:      out.Query.Encode(),
		Infeasible: out.Report.Infeasible,
		Visits:     out.Report.Visits,
		TimeMs:     out.Elapsed.Milliseconds(),
		Unknown:    out.Unknown,
		Results:    make([]ResultOutput, 0, len(out.Report.Results)),
	}
	for _, res := range out.Report.Results {
		ro := ResultOutput{
			VesselID:      res.Vessel.ID,
			Vessel:        res.Vessel.Name,
			RequiredFound: res.RequiredFound,
			ExtraPositive: res.ExtraPositive,
			ExtraNegative: res.ExtraNegative,
		}
		for i, r := range res.Relics {
			sr := SlottedRelic{Slot: res.SlotIndex[i] + 1, Kind: r.Kind.String(), Color: r.Color.String(), Text: r.String()}
			if r.Kind == relic.Dual {
				sr.Pairs = r.Pairs[:]
			} else {
				sr.Effects = r.Positives()
			}
			ro.Relics = append(ro.Relics, sr)
		}
		s.Results = append(s.Results, ro)
	}
	return s
}

// FormatResult renders one loadout, slot by slot.
func FormatResult(n int, res relic.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "第%d个结果：%s\n", n, res.Vessel.Name)

	slotRelic := make(map[int]relic.Relic, len(res.Relics))
	for i, r := range res.Relics {
		slotRelic[res.SlotIndex[i]] = r
	}
	for si, slot := range res.Vessel.Slots {
		r, ok := slotRelic[si]
		if !ok {
			fmt.Fprintf(&b, "  槽位%d [%s/%s] -\n", si+1, slot.Color, slot.Kind)
			continue
		}
		fmt.Fprintf(&b, "  槽位%d [%s/%s] %s\n", si+1, slot.Color, slot.Kind, r)
	}
	if len(res.RequiredFound) > 0 {
		fmt.Fprintf(&b, "满足需求：%s\n", strings.Join(res.RequiredFound, "；"))
	}
	if len(res.ExtraPositive) > 0 {
		fmt.Fprintf(&b, "额外正面：%s\n", strings.Join(res.ExtraPositive, "；"))
	}
	if len(res.ExtraNegative) > 0 {
		fmt.Fprintf(&b, "额外负面：%s\n", strings.Join(res.ExtraNegative, "；"))
	}
	return b.String()
}

// FormatOutcome renders a whole search for the terminal.
func FormatOutcome(out finder.Outcome) string {
	var b strings.Builder
	switch {
	case out.Report.Infeasible:
		b.WriteString("当前遗物无法满足需求\n")
	case len(out.Report.Results) == 0:
		b.WriteString("没有找到符合条件的组合\n")
	}
	for i, res := range out.Report.Results {
		if i > 0 {
			b.WriteString("===================\n")
		}
		b.WriteString(FormatResult(i+1, res))
	}
	return b.String()
}

func printTable(outcomes []finder.Outcome) {
	fmt.Printf("%-16s %8s %12s %8s\n", "Nightfarer", "Results", "Visits", "Time")
	fmt.Printf("%-16s %8s %12s %8s\n", "----------------", "--------", "------------", "--------")
	var total int
	var visits int64
	var ms int64
	for _, o := range outcomes {
		total += len(o.Report.Results)
		visits += o.Report.Visits
		ms += o.Elapsed.Milliseconds()
		fmt.Printf("%-16s %8d %12d %7.1fs\n", o.Nightfarer.Alias, len(o.Report.Results), o.Report.Visits, o.Elapsed.Seconds())
	}
	fmt.Printf("%-16s %8s %12s %8s\n", "----------------", "--------", "------------", "--------")
	fmt.Printf("%-16s %8d %12d %7.1fs\n", "TOTAL", total, visits, float64(ms)/1000)
}
