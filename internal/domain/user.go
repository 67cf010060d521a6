package domain

// User is the aggregate the social graph and ranking engines operate on.
// Relations are stored as id-sets, not object pointers, so two loaded
// aggregates never form a reference cycle and can be locked independently.
type User struct {
	ID        int64
	Username  string
	Reviews   []Review
	Followers map[int64]struct{} // ids of users following this user
	Following map[int64]struct{} // ids of users this user follows
}

func NewUser(id int64, username string) *User {
	return &User{
		ID:        id,
		Username:  username,
		Followers: map[int64]struct{}{},
		Following: map[int64]struct{}{},
	}
}

// ReviewedProducts collapses the user's authored reviews into the set of
// distinct product ids. Ratings are irrelevant here; only "did this user
// review this product" matters.
func (u *User) ReviewedProducts() map[int64]struct{} {
	out := make(map[int64]struct{}, len(u.Reviews))
	for _, r := range u.Reviews {
		out[r.ProductID] = struct{}{}
	}
	return out
}

func (u *User) Follows(id int64) bool {
	_, ok := u.Following[id]
	return ok
}

func (u *User) FollowedBy(id int64) bool {
	_, ok := u.Followers[id]
	return ok
}

const (
	usernameMinLen = 3
	usernameMaxLen = 40
)

// ValidUsername reports whether s is an acceptable username: 3-40 chars,
// alphanumeric with internal single hyphens/underscores, no leading,
// trailing, or consecutive separators, no whitespace.
func ValidUsername(s string) bool {
	if len(s) < usernameMinLen || len(s) > usernameMaxLen {
		return false
	}
	prevSep := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			prevSep = false
		case c == '-' || c == '_':
			if i == 0 || i == len(s)-1 || prevSep {
				return false
			}
			prevSep = true
		default:
			return false
		}
	}
	return true
}
