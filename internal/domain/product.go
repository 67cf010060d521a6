package domain

import "strings"

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryBooks       Category = "books"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryToys        Category = "toys"
	CategorySports      Category = "sports"
	CategoryBeauty      Category = "beauty"
	CategoryFood        Category = "food"
	CategoryOther       Category = "other"
)

func Categories() []Category {
	return []Category{
		CategoryElectronics, CategoryBooks, CategoryClothing, CategoryHome,
		CategoryToys, CategorySports, CategoryBeauty, CategoryFood, CategoryOther,
	}
}

// ParseCategory is case-insensitive; unknown values are rejected.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

type Product struct {
	ID       int64
	Category Category
	URL      string // unique across all products
	Reviews  []Review
}
