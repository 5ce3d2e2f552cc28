package recognition

import (
	"fmt"
	"sort"
)

// Ranker combines classifier hits with mapping candidates into the final
// suggestion list. Stateless between calls; shares only the immutable store
// and the personalization read path.
type Ranker struct {
	store *Store
	prefs Personalization
	cfg   RankingConfig
}

// NewRanker validates the weight configuration and builds a ranker. A nil
// prefs store disables the last-chosen annotation.
func NewRanker(store *Store, prefs Personalization, cfg RankingConfig) (*Ranker, error) {
	full := Config{Ranking: cfg}
	full.ApplyDefaults()
	if err := full.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{store: store, prefs: prefs, cfg: full.Ranking}, nil
}

// pooled keeps the originating hit alongside each candidate so ties can be
// broken on the hit's confidence and class index.
type pooled struct {
	suggestion Suggestion
	classIndex int
}

// Rank pools candidates across all hits, scores each pair with
// visionWeight*confidence + mathWeight*priority, orders the pool and
// truncates. Personalization only annotates the surviving rows, it never
// reorders them.
func (r *Ranker) Rank(hits []Hit) []Suggestion {
	pool := make([]pooled, 0, len(hits)*r.store.maxCandidates)
	for _, hit := range hits {
		symbolID, resolved := r.store.SymbolForClass(hit.ClassIndex)
		if !resolved {
			// The class index stands in for the symbol id until a
			// mapping source that can resolve it is available.
			symbolID = hit.ClassIndex
		}
		candidates := r.store.CandidatesForClass(hit.ClassIndex)
		if len(candidates) == 0 {
			candidates = []Candidate{placeholderCandidate(symbolID)}
		}
		for _, cand := range candidates {
			score := r.cfg.VisionWeight*hit.Confidence + r.cfg.MathWeight*cand.Priority
			pool = append(pool, pooled{
				classIndex: hit.ClassIndex,
				suggestion: Suggestion{
					SymbolID:      symbolID,
					Command:       cand.Command,
					CombinedScore: score,
					Confidence:    hit.Confidence,
					Priority:      cand.Priority,
					Context:       cand.Context,
					Description:   cand.Description,
				},
			})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.suggestion.CombinedScore != b.suggestion.CombinedScore {
			return a.suggestion.CombinedScore > b.suggestion.CombinedScore
		}
		if a.suggestion.Confidence != b.suggestion.Confidence {
			return a.suggestion.Confidence > b.suggestion.Confidence
		}
		if a.classIndex != b.classIndex {
			return a.classIndex < b.classIndex
		}
		return a.suggestion.Priority > b.suggestion.Priority
	})

	limit := r.cfg.MaxSuggestions
	if len(pool) < limit {
		limit = len(pool)
	}
	out := make([]Suggestion, 0, limit)
	for _, p := range pool[:limit] {
		if r.prefs != nil {
			if last, ok := r.prefs.LastChoice(p.suggestion.SymbolID); ok {
				p.suggestion.LastChosen = last == p.suggestion.Command
			}
		}
		out = append(out, p.suggestion)
	}
	return out
}

// placeholderCandidate is the documented fallback for symbols without any
// mapping entry: a synthetic command at neutral priority.
func placeholderCandidate(symbolID int) Candidate {
	return Candidate{
		Command:     fmt.Sprintf(`\symbol_%d`, symbolID),
		Priority:    0.5,
		Context:     "symbol (no mapping available)",
		Description: fmt.Sprintf("Symbol class %d - mapping not yet available", symbolID),
	}
}
