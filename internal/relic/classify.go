package relic

// Vocabulary tells the classifier which effect names are beneficial and
// which are drawbacks.
type Vocabulary interface {
	IsPositive(effect string) bool
	IsNegative(effect string) bool
}

// Classification splits a loadout's effects into what was asked for and
// what came along.
type Classification struct {
	RequiredFound []string
	AvoidedFound  []string
	ExtraPositive []string
	ExtraNegative []string
}

// Classify sorts effects, the flattened fields of a loadout, against q.
// RequiredFound lists each requirement whose count is met, in query order.
// Extras keep their field order and repeats.
func Classify(effects []string, q Query, vocab Vocabulary) Classification {
	var c Classification
	counts := make(map[string]int, len(effects))
	for _, e := range effects {
		counts[e]++
	}
	for _, req := range q.Required {
		if counts[req.Effect] >= req.Count {
			c.RequiredFound = append(c.RequiredFound, req.Effect)
		}
	}
	for _, a := range q.Avoided {
		if counts[a] > 0 {
			c.AvoidedFound = append(c.AvoidedFound, a)
		}
	}
	if vocab == nil {
		return c
	}
	for _, e := range effects {
		switch {
		case vocab.IsPositive(e) && !q.requires(e):
			c.ExtraPositive = append(c.ExtraPositive, e)
		case vocab.IsNegative(e) && !q.avoids(e):
			c.ExtraNegative = append(c.ExtraNegative, e)
		}
	}
	return c
}

type effectSets struct {
	positive map[string]bool
	negative map[string]bool
}

func (s effectSets) IsPositive(effect string) bool { return s.positive[effect] }
func (s effectSets) IsNegative(effect string) bool { return s.negative[effect] }

// InventoryVocabulary derives a vocabulary from the items themselves: simple
// effects and dual positives are beneficial, dual negatives are drawbacks.
func InventoryVocabulary(items []Relic) Vocabulary {
	s := effectSets{positive: make(map[string]bool), negative: make(map[string]bool)}
	for i := range items {
		for _, e := range items[i].Positives() {
			s.positive[e] = true
		}
		for _, e := range items[i].Negatives() {
			s.negative[e] = true
		}
	}
	return s
}
