package relic

import "sort"

// requirementGains precomputes, per candidate, how many occurrences of each
// requirement it carries.
func requirementGains(candidates []Relic, required []Requirement) [][]int {
	gains := make([][]int, len(candidates))
	for i := range candidates {
		g := make([]int, len(required))
		for _, f := range candidates[i].Fields() {
			for r, req := range required {
				if f == req.Effect {
					g[r]++
				}
			}
		}
		gains[i] = g
	}
	return gains
}

// dualOnlyRequirements marks the requirements no simple candidate carries.
func dualOnlyRequirements(candidates []Relic, required []Requirement, gains [][]int) []bool {
	dualOnly := make([]bool, len(required))
	for r := range required {
		dualOnly[r] = true
	}
	for i := range candidates {
		if candidates[i].Kind != Simple {
			continue
		}
		for r, n := range gains[i] {
			if n > 0 {
				dualOnly[r] = false
			}
		}
	}
	return dualOnly
}

func sumGain(g []int, mask []bool) int {
	n := 0
	for r, v := range g {
		if mask == nil || mask[r] {
			n += v
		}
	}
	return n
}

// topSum adds up the k largest values.
func topSum(vals []int, k int) int {
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	n := 0
	for i := 0; i < k && i < len(vals); i++ {
		n += vals[i]
	}
	return n
}

// Feasible is a cheap analytic check run before any search. It returns false
// only when no vessel could possibly satisfy the requirements: when some
// requirement has fewer occurrences across the candidates than it asks for,
// when the three best simple and three best dual candidates together fall
// short of the total, or when the three best dual candidates fall short of
// the effects only dual relics carry.
func Feasible(candidates []Relic, q Query) bool {
	if len(q.Required) == 0 {
		return true
	}
	gains := requirementGains(candidates, q.Required)
	dualOnly := dualOnlyRequirements(candidates, q.Required, gains)

	available := make([]int, len(q.Required))
	var simpleGain, dualGain, dualOnlyGain []int
	for i := range candidates {
		for r, n := range gains[i] {
			available[r] += n
		}
		if candidates[i].Kind == Simple {
			simpleGain = append(simpleGain, sumGain(gains[i], nil))
		} else {
			dualGain = append(dualGain, sumGain(gains[i], nil))
			dualOnlyGain = append(dualOnlyGain, sumGain(gains[i], dualOnly))
		}
	}

	total, totalDualOnly := 0, 0
	for r, req := range q.Required {
		if req.Count > available[r] {
			return false
		}
		total += req.Count
		if dualOnly[r] {
			totalDualOnly += req.Count
		}
	}
	if total > topSum(simpleGain, simpleSlots)+topSum(dualGain, SlotsPerVessel-simpleSlots) {
		return false
	}
	return totalDualOnly <= topSum(dualOnlyGain, SlotsPerVessel-simpleSlots)
}
