package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"reviewhub/internal/domain"
)

type ReviewStrategy int

const (
	ReviewNewest ReviewStrategy = iota // default
	ReviewOldest
	ReviewRatingDesc
	ReviewRatingAsc
	ReviewSimilarity
)

// ParseReviewStrategy maps a sort query param to a strategy. Unknown or empty
// values fall back to newest.
func ParseReviewStrategy(s string) ReviewStrategy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest":
		return ReviewOldest
	case "rating_desc":
		return ReviewRatingDesc
	case "rating_asc":
		return ReviewRatingAsc
	case "similarity":
		return ReviewSimilarity
	default:
		return ReviewNewest
	}
}

type UserStrategy int

const (
	UserDefault UserStrategy = iota // storage order
	UserSimilarity
)

func ParseUserStrategy(s string) UserStrategy {
	if strings.EqualFold(strings.TrimSpace(s), "similarity") {
		return UserSimilarity
	}
	return UserDefault
}

type ReviewRankQuery struct {
	Strategy   ReviewStrategy
	MinRating  int
	BaseUserID int64 // required for ReviewSimilarity; 0 means absent
}

type UserRankQuery struct {
	Strategy   UserStrategy
	BaseUserID int64
}

// RankService orders review and user collections under a selectable strategy.
// It only reads loaded aggregates; the repository is consulted solely to
// resolve the base user and review authors for similarity scoring.
type RankService struct {
	users domain.UserRepository
}

func NewRankService(users domain.UserRepository) *RankService {
	return &RankService{users: users}
}

// RankReviews filters reviews below q.MinRating, then returns a new slice
// ordered by the requested strategy. The input is never mutated and the
// order is deterministic: every comparator either carries an id tie-break
// or is applied stably.
func (s *RankService) RankReviews(ctx context.Context, reviews []domain.Review, q ReviewRankQuery) ([]domain.Review, error) {
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating >= q.MinRating {
			out = append(out, r)
		}
	}

	switch q.Strategy {
	case ReviewOldest:
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	case ReviewRatingDesc:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].ID > out[j].ID
		})

	case ReviewRatingAsc:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating < out[j].Rating
			}
			return out[i].ID < out[j].ID
		})

	case ReviewSimilarity:
		base, err := s.baseUser(ctx, q.BaseUserID)
		if err != nil {
			return nil, err
		}
		// One score per author, however many reviews they wrote.
		scores := make(map[int64]float64)
		for _, r := range out {
			if _, ok := scores[r.AuthorID]; ok {
				continue
			}
			author, err := s.users.GetUser(ctx, r.AuthorID)
			if err != nil {
				return nil, fmt.Errorf("resolve author %d: %w", r.AuthorID, err)
			}
			scores[r.AuthorID] = Similarity(&author, &base)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return scores[out[i].AuthorID] > scores[out[j].AuthorID]
		})

	default: // ReviewNewest
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out, nil
}

// RankUsers returns a new slice of users ordered by the requested strategy.
// The default strategy preserves storage order.
func (s *RankService) RankUsers(ctx context.Context, users []domain.User, q UserRankQuery) ([]domain.User, error) {
	out := make([]domain.User, len(users))
	copy(out, users)

	if q.Strategy != UserSimilarity {
		return out, nil
	}

	base, err := s.baseUser(ctx, q.BaseUserID)
	if err != nil {
		return nil, err
	}
	scores := make(map[int64]float64, len(out))
	for i := range out {
		scores[out[i].ID] = Similarity(&out[i], &base)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i].ID] > scores[out[j].ID]
	})
	return out, nil
}

// baseUser resolves the similarity reference point. An absent or unknown id
// is a caller error, reported as the invalid-request sentinel rather than
// silently falling back to another strategy.
func (s *RankService) baseUser(ctx context.Context, id int64) (domain.User, error) {
	if id == 0 {
		return domain.User{}, domain.ErrBaseUserRequired
	}
	base, err := s.users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("base user %d: %w", id, domain.ErrBaseUserRequired)
	}
	return base, nil
}
