package app

import (
	"context"
	"fmt"
	"time"

	"reviewhub/internal/domain"
)

type ProductService struct {
	products domain.ProductRepository
	rank     *RankService
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewProductService(p domain.ProductRepository, rank *RankService, c domain.Cache, ttl time.Duration) *ProductService {
	return &ProductService{products: p, rank: rank, cache: c, cacheTTL: ttl}
}

func productKey(id int64) string        { return fmt.Sprintf("product:%d", id) }
func productReviewsKey(id int64) string { return fmt.Sprintf("product_reviews:%d", id) }

func (s *ProductService) Create(ctx context.Context, category, url string) (domain.Product, error) {
	cat, ok := domain.ParseCategory(category)
	if !ok {
		return domain.Product{}, fmt.Errorf("category %q: %w", category, domain.ErrInvalidCategory)
	}
	return s.products.CreateProduct(ctx, cat, url)
}

func (s *ProductService) Get(ctx context.Context, id int64) (domain.Product, error) {
	key := productKey(id)
	var p domain.Product
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

// List filters by category when one is given. An unknown category name is
// treated as no filter rather than an error.
func (s *ProductService) List(ctx context.Context, category string) ([]domain.Product, error) {
	if category != "" {
		if cat, ok := domain.ParseCategory(category); ok {
			return s.products.ListProducts(ctx, &cat)
		}
	}
	return s.products.ListProducts(ctx, nil)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, productKey(id))
	_ = s.cache.Del(ctx, productReviewsKey(id))
	return nil
}

// Reviews loads the product's reviews (raw list cached, ranking computed per
// request) and orders them under q.
func (s *ProductService) Reviews(ctx context.Context, id int64, q ReviewRankQuery) ([]domain.Review, error) {
	key := productReviewsKey(id)
	var reviews []domain.Review
	if ok, _ := s.cache.Get(ctx, key, &reviews); !ok {
		p, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		reviews = p.Reviews
		_ = s.cache.Set(ctx, key, reviews, int(s.cacheTTL.Seconds()))
	}
	return s.rank.RankReviews(ctx, reviews, q)
}
