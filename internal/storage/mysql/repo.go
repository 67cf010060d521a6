package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"reviewhub/internal/domain"
)

const mysqlErrDuplicateEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
		return domain.ErrDuplicate
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, username string) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL, username)
	if err != nil {
		return domain.User{}, translateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return *domain.NewUser(id, username), nil
}

// GetUser loads the full aggregate: the user row, authored reviews, and
// both follow directions.
func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u := domain.NewUser(0, "")
	row := r.db.QueryRowContext(ctx, getUserSQL, id)
	if err := row.Scan(&u.ID, &u.Username); err != nil {
		return domain.User{}, translateErr(err)
	}

	reviews, err := r.queryReviews(ctx, listUserReviewsSQL, id)
	if err != nil {
		return domain.User{}, err
	}
	u.Reviews = reviews

	rows, err := r.db.QueryContext(ctx, listFollowEdgesSQL, id, id)
	if err != nil {
		return domain.User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var follower, followee int64
		if err := rows.Scan(&follower, &followee); err != nil {
			return domain.User{}, err
		}
		if follower == id {
			u.Following[followee] = struct{}{}
		}
		if followee == id {
			u.Followers[follower] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

func (r *Repo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var id int64
	row := r.db.QueryRowContext(ctx, getUserByUsernameSQL, username)
	if err := row.Scan(&id, &username); err != nil {
		return domain.User{}, translateErr(err)
	}
	return r.GetUser(ctx, id)
}

// ListUsers loads every user aggregate in three queries, assembling review
// and follow projections in memory.
func (r *Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, listUsersSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	index := map[int64]int{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		u.Followers = map[int64]struct{}{}
		u.Following = map[int64]struct{}{}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reviews, err := r.queryReviews(ctx, listAllReviewsSQL)
	if err != nil {
		return nil, err
	}
	for _, rv := range reviews {
		if i, ok := index[rv.AuthorID]; ok {
			users[i].Reviews = append(users[i].Reviews, rv)
		}
	}

	frows, err := r.db.QueryContext(ctx, listAllFollowEdgesSQL)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var follower, followee int64
		if err := frows.Scan(&follower, &followee); err != nil {
			return nil, err
		}
		if i, ok := index[follower]; ok {
			users[i].Following[followee] = struct{}{}
		}
		if i, ok := index[followee]; ok {
			users[i].Followers[follower] = struct{}{}
		}
	}
	if err := frows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the user row; reviews and follow edges go with it via
// FK cascades.
func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteUserSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ---- follow edges ----

func (r *Repo) SaveFollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx, insertFollowSQL, followerID, followeeID)
	return translateErr(err)
}

func (r *Repo) DeleteFollow(ctx context.Context, followerID, followeeID int64) error {
	_, err := r.db.ExecContext(ctx, deleteFollowSQL, followerID, followeeID)
	return err
}

// ---- reviews ----

func (r *Repo) CreateReview(ctx context.Context, authorID, productID int64, rating int, text string) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL, authorID, productID, rating, text)
	if err != nil {
		return domain.Review{}, translateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	return domain.Review{ID: id, AuthorID: authorID, ProductID: productID, Rating: rating, Text: text}, nil
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) queryReviews(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.AuthorID, &rv.ProductID, &rv.Rating, &rv.Text); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// ---- products ----

func (r *Repo) CreateProduct(ctx context.Context, category domain.Category, url string) (domain.Product, error) {
	res, err := r.db.ExecContext(ctx, insertProductSQL, string(category), url)
	if err != nil {
		return domain.Product{}, translateErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{ID: id, Category: category, URL: url}, nil
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	var cat string
	row := r.db.QueryRowContext(ctx, getProductSQL, id)
	if err := row.Scan(&p.ID, &cat, &p.URL); err != nil {
		return domain.Product{}, translateErr(err)
	}
	p.Category = domain.Category(cat)

	reviews, err := r.queryReviews(ctx, listProductReviewsSQL, id)
	if err != nil {
		return domain.Product{}, err
	}
	p.Reviews = reviews
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context, category *domain.Category) ([]domain.Product, error) {
	query, args := listProductsSQL, []any{}
	if category != nil {
		query, args = listProductsByCategorySQL, []any{string(*category)}
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		var cat string
		if err := rows.Scan(&p.ID, &cat, &p.URL); err != nil {
			return nil, err
		}
		p.Category = domain.Category(cat)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProductSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
