package app

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/domain"
)

// UserService is the CRUD surface around user aggregates. Reads go through
// the cache; every mutation invalidates the affected keys before returning.
type UserService struct {
	users    domain.UserRepository
	products domain.ProductRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewUserService(u domain.UserRepository, p domain.ProductRepository, c domain.Cache, ttl time.Duration) *UserService {
	return &UserService{users: u, products: p, cache: c, cacheTTL: ttl}
}

func userKey(id int64) string { return fmt.Sprintf("user:%d", id) }

func (s *UserService) Create(ctx context.Context, username string) (domain.User, error) {
	if !domain.ValidUsername(username) {
		return domain.User{}, domain.ErrInvalidUsername
	}
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, fmt.Errorf("username %q: %w", username, domain.ErrDuplicate)
	}
	return s.users.CreateUser(ctx, username)
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	key := userKey(id)
	var u domain.User
	if ok, _ := s.cache.Get(ctx, key, &u); ok {
		return u, nil
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	_ = s.cache.Set(ctx, key, u, int(s.cacheTTL.Seconds()))
	return u, nil
}

// Load fetches an aggregate straight from storage, bypassing the cache.
// Mutation paths (the social graph) must not start from a stale snapshot.
func (s *UserService) Load(ctx context.Context, id int64) (domain.User, error) {
	return s.users.GetUser(ctx, id)
}

// InvalidateUsers drops cached aggregates after a graph mutation.
func (s *UserService) InvalidateUsers(ctx context.Context, ids ...int64) {
	for _, id := range ids {
		_ = s.cache.Del(ctx, userKey(id))
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	// Load first so review caches for the products this user reviewed can be
	// dropped along with the user itself.
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, userKey(id))
	for pid := range u.ReviewedProducts() {
		s.invalidateProduct(ctx, pid)
	}
	for fid := range u.Followers {
		_ = s.cache.Del(ctx, userKey(fid))
	}
	for fid := range u.Following {
		_ = s.cache.Del(ctx, userKey(fid))
	}
	return nil
}

// UserSummary is the reduced projection returned by follower/following and
// similar-user listings.
type UserSummary struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Similarity *float64 `json:"similarity,omitempty"`
}

func (s *UserService) Followers(ctx context.Context, id int64) ([]UserSummary, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, u.Followers)
}

func (s *UserService) Following(ctx context.Context, id int64) ([]UserSummary, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, u.Following)
}

func (s *UserService) summaries(ctx context.Context, ids map[int64]struct{}) ([]UserSummary, error) {
	out := make([]UserSummary, 0, len(ids))
	for id := range ids {
		u, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve user %d: %w", id, err)
		}
		out = append(out, UserSummary{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

// SimilarUsers scores every other user against the base user and returns
// them ordered by descending similarity.
func (s *UserService) SimilarUsers(ctx context.Context, baseID int64, rank *RankService) ([]UserSummary, error) {
	base, err := s.users.GetUser(ctx, baseID)
	if err != nil {
		return nil, err
	}
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	others := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.ID != base.ID {
			others = append(others, u)
		}
	}
	ranked, err := rank.RankUsers(ctx, others, UserRankQuery{Strategy: UserSimilarity, BaseUserID: baseID})
	if err != nil {
		return nil, err
	}
	out := make([]UserSummary, 0, len(ranked))
	for i := range ranked {
		score := Similarity(&ranked[i], &base)
		out = append(out, UserSummary{ID: ranked[i].ID, Username: ranked[i].Username, Similarity: &score})
	}
	return out, nil
}

// AddReview authors a review by userID about productID. Both aggregates must
// already exist; their caches are invalidated on success.
func (s *UserService) AddReview(ctx context.Context, userID, productID int64, rating int, text string) (domain.Review, error) {
	if !domain.ValidRating(rating) {
		return domain.Review{}, domain.ErrInvalidRating
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return domain.Review{}, err
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return domain.Review{}, err
	}
	rv, err := s.users.CreateReview(ctx, userID, productID, rating, text)
	if err != nil {
		return domain.Review{}, err
	}
	_ = s.cache.Del(ctx, userKey(userID))
	s.invalidateProduct(ctx, productID)
	return rv, nil
}

func (s *UserService) Reviews(ctx context.Context, userID int64) ([]domain.Review, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Reviews, nil
}

// DeleteReview removes one of the user's own reviews. A review id belonging
// to another user is reported as not found rather than deleted.
func (s *UserService) DeleteReview(ctx context.Context, userID, reviewID int64) error {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	var target *domain.Review
	for i := range u.Reviews {
		if u.Reviews[i].ID == reviewID {
			target = &u.Reviews[i]
			break
		}
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if err := s.users.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, userKey(userID))
	s.invalidateProduct(ctx, target.ProductID)
	return nil
}

func (s *UserService) invalidateProduct(ctx context.Context, id int64) {
	_ = s.cache.Del(ctx, productKey(id))
	_ = s.cache.Del(ctx, productReviewsKey(id))
}
