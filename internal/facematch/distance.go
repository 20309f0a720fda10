package facematch

import "math"

// EuclideanDistance returns the L2 distance between two embeddings.
// Embeddings of different length are infinitely far apart.
func EuclideanDistance(a, b Embedding) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Compare classifies a probe against a stored embedding.
// A distance equal to the threshold counts as a match.
func Compare(stored, probe Embedding, threshold float64) MatchResult {
	dist := EuclideanDistance(stored, probe)
	return MatchResult{
		Matched:   dist <= threshold,
		Distance:  dist,
		Threshold: threshold,
	}
}
