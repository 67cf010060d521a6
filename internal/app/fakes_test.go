package app_test

import (
	"context"
	"sync"

	"reviewhub/internal/domain"
)

// fakeUserRepo keeps user aggregates in memory, keyed by id.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	nextID int64

	saveFollowCalls   int
	deleteFollowCalls int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[int64]domain.User{}, nextID: 1}
	for _, u := range users {
		f.users[u.ID] = *u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, username string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := *domain.NewUser(f.nextID, username)
	f.nextID++
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SaveFollow(ctx context.Context, followerID, followeeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveFollowCalls++
	return nil
}

func (f *fakeUserRepo) DeleteFollow(ctx context.Context, followerID, followeeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteFollowCalls++
	return nil
}

func (f *fakeUserRepo) CreateReview(ctx context.Context, authorID, productID int64, rating int, text string) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[authorID]
	rv := domain.Review{ID: f.nextID, AuthorID: authorID, ProductID: productID, Rating: rating, Text: text}
	f.nextID++
	u.Reviews = append(u.Reviews, rv)
	f.users[authorID] = u
	return rv, nil
}

func (f *fakeUserRepo) DeleteReview(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for uid, u := range f.users {
		for i, rv := range u.Reviews {
			if rv.ID == id {
				u.Reviews = append(u.Reviews[:i], u.Reviews[i+1:]...)
				f.users[uid] = u
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	nextID   int64
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: map[int64]domain.Product{}, nextID: 1}
	for _, p := range products {
		f.products[p.ID] = p
		if p.ID >= f.nextID {
			f.nextID = p.ID + 1
		}
	}
	return f
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, category domain.Category, url string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.URL == url {
			return domain.Product{}, domain.ErrDuplicate
		}
	}
	p := domain.Product{ID: f.nextID, Category: category, URL: url}
	f.nextID++
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) ListProducts(ctx context.Context, category *domain.Category) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Product, 0, len(f.products))
	for id := int64(1); id < f.nextID; id++ {
		p, ok := f.products[id]
		if !ok {
			continue
		}
		if category != nil && p.Category != *category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

// fakeCache is the in-memory cache shared across app tests.
type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.User:
		*d = v.(domain.User)
	case *domain.Product:
		*d = v.(domain.Product)
	case *[]domain.Review:
		*d = v.([]domain.Review)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
