package app_test

import (
	"testing"

	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

func userWithProducts(id int64, name string, productIDs ...int64) *domain.User {
	u := domain.NewUser(id, name)
	for i, pid := range productIDs {
		u.Reviews = append(u.Reviews, domain.Review{
			ID:        id*100 + int64(i),
			AuthorID:  id,
			ProductID: pid,
			Rating:    3,
		})
	}
	return u
}

func TestSimilarity_ProgressiveOverlap(t *testing.T) {
	u1 := userWithProducts(1, "Jian_Yang", 1, 2, 3)
	u2 := userWithProducts(2, "Eric_Bachman", 4)

	if got := app.Similarity(u1, u2); got != 0.0 {
		t.Fatalf("disjoint sets: want 0.0, got %v", got)
	}

	u2.Reviews = append(u2.Reviews, domain.Review{ID: 201, AuthorID: 2, ProductID: 1})
	if got := app.Similarity(u1, u2); got != 0.25 {
		t.Fatalf("one common of four: want 0.25, got %v", got)
	}

	u2.Reviews = append(u2.Reviews,
		domain.Review{ID: 202, AuthorID: 2, ProductID: 2},
		domain.Review{ID: 203, AuthorID: 2, ProductID: 3},
	)
	if got := app.Similarity(u1, u2); got != 0.75 {
		t.Fatalf("three common of four: want 0.75, got %v", got)
	}

	u1.Reviews = append(u1.Reviews, domain.Review{ID: 104, AuthorID: 1, ProductID: 4})
	if got := app.Similarity(u1, u2); got != 1.0 {
		t.Fatalf("identical sets: want 1.0, got %v", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := userWithProducts(1, "user_a", 1, 2, 3, 7)
	b := userWithProducts(2, "user_b", 2, 3, 9)

	ab := app.Similarity(a, b)
	ba := app.Similarity(b, a)
	if ab != ba {
		t.Fatalf("similarity not symmetric: %v vs %v", ab, ba)
	}
	if ab < 0 || ab > 1 {
		t.Fatalf("similarity out of bounds: %v", ab)
	}
}

func TestSimilarity_BothEmpty(t *testing.T) {
	a := domain.NewUser(1, "user_a")
	b := domain.NewUser(2, "user_b")
	if got := app.Similarity(a, b); got != 0.0 {
		t.Fatalf("empty union: want 0.0, got %v", got)
	}
}

func TestSimilarity_DuplicateReviewsCollapse(t *testing.T) {
	// Two reviews of the same product count once.
	a := userWithProducts(1, "user_a", 5, 5, 5)
	b := userWithProducts(2, "user_b", 5)
	if got := app.Similarity(a, b); got != 1.0 {
		t.Fatalf("want 1.0 after collapsing duplicates, got %v", got)
	}
}
