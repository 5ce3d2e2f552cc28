package recognition

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Softmax converts raw classifier logits into a probability distribution.
// The maximum logit is subtracted before exponentiating so large scores do
// not overflow.
func Softmax(scores []float32) []float64 {
	probs := make([]float64, len(scores))
	for i, v := range scores {
		probs[i] = float64(v)
	}
	if len(probs) == 0 {
		return probs
	}
	floats.AddConst(-floats.Max(probs), probs)
	for i, v := range probs {
		probs[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// TopK selects the k most probable classes from a raw score vector. The
// vector length must equal classCount; anything else is a configuration
// fault reported as ErrDimensionMismatch. Hits come back in descending
// confidence order, ties broken by ascending class index.
func TopK(scores []float32, classCount, k int) ([]Hit, error) {
	if len(scores) != classCount {
		return nil, fmt.Errorf("got %d scores, expected %d: %w", len(scores), classCount, ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > classCount {
		k = classCount
	}
	probs := Softmax(scores)
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if probs[a] == probs[b] {
			return a < b
		}
		return probs[a] > probs[b]
	})
	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{ClassIndex: order[i], Confidence: probs[order[i]]}
	}
	return hits, nil
}
