package domain

import "math"

// Similarity converts a vector distance into a relevance score in
// (0, 1]. The mapping is strictly decreasing in distance and yields
// exactly 1 for a zero distance, so every retrieval path ranks hits
// consistently regardless of the store's native metric scale.
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// PercentScore scales a similarity to the 0-100 range rounded to one
// decimal place, the form reported in ranked case results.
func PercentScore(similarity float64) float64 {
	return math.Round(similarity*1000) / 10
}
