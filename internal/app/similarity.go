package app

import "reviewhub/internal/domain"

// Similarity scores two users by the Jaccard index of their reviewed-product
// sets: |intersection| / |union|. Pure, symmetric, always in [0,1]. Two users
// with no reviews at all score 0.0; no evidence is treated as no similarity,
// not as an error.
func Similarity(a, b *domain.User) float64 {
	sa := a.ReviewedProducts()
	sb := b.ReviewedProducts()
	if len(sa) == 0 && len(sb) == 0 {
		return 0.0
	}
	inter := 0
	for id := range sa {
		if _, ok := sb[id]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}
