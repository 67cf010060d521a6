package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrDuplicate signals a uniqueness violation (username or product URL).
	ErrDuplicate = errors.New("already exists")

	// ErrBaseUserRequired is the invalid-request condition for similarity
	// ranking without a resolvable base user. The engine never guesses one.
	ErrBaseUserRequired = errors.New("base user required for similarity sort")

	// ErrSelfReference rejects follow/unfollow/remove-follower on oneself.
	ErrSelfReference = errors.New("user cannot reference itself")

	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")
	ErrInvalidCategory = errors.New("unknown category")
)
