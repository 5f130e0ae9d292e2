package relic

// DefaultMaxResults caps a search when the query leaves MaxResults unset.
const DefaultMaxResults = 100

// Requirement asks for at least Count occurrences of Effect across a loadout.
type Requirement struct {
	Effect string
	Count  int
}

// Query is what a search is looking for.
type Query struct {
	Required   []Requirement
	Avoided    []string
	MaxResults int
}

func (q Query) maxResults() int {
	if q.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return q.MaxResults
}

func (q Query) avoids(effect string) bool {
	for _, a := range q.Avoided {
		if a == effect {
			return true
		}
	}
	return false
}

func (q Query) requires(effect string) bool {
	for _, req := range q.Required {
		if req.Effect == effect {
			return true
		}
	}
	return false
}
