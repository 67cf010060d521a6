package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "reviewhub/internal/adapters/redis"
	"reviewhub/internal/domain"
)

func newCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_RoundTripsUserAggregate(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	u := domain.NewUser(42, "Jian_Yang")
	u.Reviews = []domain.Review{{ID: 1, AuthorID: 42, ProductID: 7, Rating: 5, Text: "great"}}
	u.Following[2] = struct{}{}
	u.Followers[3] = struct{}{}

	if err := c.Set(ctx, "user:42", u, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got domain.User
	ok, err := c.Get(ctx, "user:42", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if got.ID != 42 || got.Username != "Jian_Yang" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if len(got.Reviews) != 1 || got.Reviews[0].ProductID != 7 {
		t.Fatalf("reviews lost in round trip: %+v", got.Reviews)
	}
	if !got.Follows(2) || !got.FollowedBy(3) {
		t.Fatalf("follow sets lost in round trip: %+v", got)
	}
}

func TestCache_MissAndDelete(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	var dst domain.User
	ok, err := c.Get(ctx, "user:absent", &dst)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}

	if err := c.Set(ctx, "user:1", domain.NewUser(1, "some_user"), 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "user:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "user:1", &dst)
	if ok {
		t.Fatal("expected miss after delete")
	}
}
