package domain

const (
	MinRating = 0
	MaxRating = 5
)

// Review belongs to exactly one author and one product. Ids are assigned
// monotonically at creation, so id order doubles as creation order.
type Review struct {
	ID        int64
	AuthorID  int64
	ProductID int64
	Rating    int // MinRating..MaxRating inclusive
	Text      string
}

func ValidRating(r int) bool { return r >= MinRating && r <= MaxRating }
