package app

import (
	"context"
	"sync"

	"reviewhub/internal/domain"
)

type Outcome int

const (
	// Applied means the edge transitioned state.
	Applied Outcome = iota
	// NoChange means the edge was already in the requested state. Not an
	// error; callers surface it as an informative message.
	NoChange
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "no_change"
}

// SocialGraph keeps the follower/following relation symmetric across two
// independently loaded user aggregates. Every mutation updates both sides
// under per-user locks taken in ascending id order, so concurrent operations
// on overlapping pairs serialize without deadlocking while unrelated pairs
// proceed in parallel.
//
// The repository persists the edge while both locks are held; pass nil when
// mutations are in-memory only (tests).
type SocialGraph struct {
	users domain.UserRepository

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSocialGraph(users domain.UserRepository) *SocialGraph {
	return &SocialGraph{users: users, locks: make(map[int64]*sync.Mutex)}
}

func (g *SocialGraph) lockFor(id int64) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[id]
	if !ok {
		l = &sync.Mutex{}
		g.locks[id] = l
	}
	return l
}

// lockPair acquires both user locks, lower id first, and returns the unlock.
func (g *SocialGraph) lockPair(a, b int64) func() {
	if a > b {
		a, b = b, a
	}
	first, second := g.lockFor(a), g.lockFor(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

// Follow adds the source→target edge. Idempotent: following an already
// followed user reports NoChange.
func (g *SocialGraph) Follow(ctx context.Context, source, target *domain.User) (Outcome, error) {
	if source.ID == target.ID {
		return NoChange, domain.ErrSelfReference
	}
	unlock := g.lockPair(source.ID, target.ID)
	defer unlock()

	if source.Follows(target.ID) {
		return NoChange, nil
	}
	source.Following[target.ID] = struct{}{}
	target.Followers[source.ID] = struct{}{}
	if g.users != nil {
		if err := g.users.SaveFollow(ctx, source.ID, target.ID); err != nil {
			delete(source.Following, target.ID)
			delete(target.Followers, source.ID)
			return NoChange, err
		}
	}
	return Applied, nil
}

// Unfollow removes the source→target edge. Unfollowing a user who was never
// followed reports NoChange.
func (g *SocialGraph) Unfollow(ctx context.Context, source, target *domain.User) (Outcome, error) {
	if source.ID == target.ID {
		return NoChange, domain.ErrSelfReference
	}
	unlock := g.lockPair(source.ID, target.ID)
	defer unlock()

	if !source.Follows(target.ID) {
		return NoChange, nil
	}
	delete(source.Following, target.ID)
	delete(target.Followers, source.ID)
	if g.users != nil {
		if err := g.users.DeleteFollow(ctx, source.ID, target.ID); err != nil {
			source.Following[target.ID] = struct{}{}
			target.Followers[source.ID] = struct{}{}
			return NoChange, err
		}
	}
	return Applied, nil
}

// RemoveFollower severs the source→target edge from the target's side.
func (g *SocialGraph) RemoveFollower(ctx context.Context, target, source *domain.User) (Outcome, error) {
	return g.Unfollow(ctx, source, target)
}
