package domain

import "context"

type UserRepository interface {
	CreateUser(ctx context.Context, username string) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error

	// Follow edges, stored once and projected onto both aggregates on load.
	SaveFollow(ctx context.Context, followerID, followeeID int64) error
	DeleteFollow(ctx context.Context, followerID, followeeID int64) error

	CreateReview(ctx context.Context, authorID, productID int64, rating int, text string) (Review, error)
	DeleteReview(ctx context.Context, id int64) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, category Category, url string) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context, category *Category) ([]Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
