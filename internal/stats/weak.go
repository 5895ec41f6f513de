package stats

import (
	"github.com/verte-zerg/tuici/internal/model"
)

// SelectWeakWords returns up to top practiced words with the lowest
// accuracy, weakest first. Words without a miss are never weak.
func SelectWeakWords(aggs []model.WordAggregate, top int) []string {
	var candidates []model.WordAggregate
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	candidates = SortWeakestFirst(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Word)
	}
	return out
}
