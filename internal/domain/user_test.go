package domain_test

import (
	"strings"
	"testing"

	"reviewhub/internal/domain"
)

func TestValidUsername(t *testing.T) {
	valid := []string{
		"Jian_Yang",
		"Eric_Bachman",
		"abc",
		"a1b2c3",
		"user-name_42",
		"XYZ-9",
	}
	for _, s := range valid {
		if !domain.ValidUsername(s) {
			t.Errorf("%q should be valid", s)
		}
	}

	invalid := []string{
		"",
		"ab",                       // too short
		"_abc",                     // leading separator
		"abc_",                     // trailing separator
		"-abc",                     // leading hyphen
		"ab__cd",                   // consecutive separators
		"ab-_cd",                   // mixed consecutive separators
		"has space",                // whitespace
		"héllo",                    // non-ascii
		"user.name",                // punctuation
		strings.Repeat("a", 41),    // too long
	}
	for _, s := range invalid {
		if domain.ValidUsername(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestReviewedProductsCollapsesDuplicates(t *testing.T) {
	u := domain.NewUser(1, "some_user")
	u.Reviews = []domain.Review{
		{ID: 1, AuthorID: 1, ProductID: 10, Rating: 1},
		{ID: 2, AuthorID: 1, ProductID: 10, Rating: 5},
		{ID: 3, AuthorID: 1, ProductID: 11, Rating: 3},
	}
	got := u.ReviewedProducts()
	if len(got) != 2 {
		t.Fatalf("want 2 distinct products, got %d", len(got))
	}
	if _, ok := got[10]; !ok {
		t.Fatal("product 10 missing")
	}
	if _, ok := got[11]; !ok {
		t.Fatal("product 11 missing")
	}
}

func TestValidRating(t *testing.T) {
	for r := 0; r <= 5; r++ {
		if !domain.ValidRating(r) {
			t.Errorf("rating %d should be valid", r)
		}
	}
	if domain.ValidRating(-1) || domain.ValidRating(6) {
		t.Error("out-of-range ratings should be invalid")
	}
}
