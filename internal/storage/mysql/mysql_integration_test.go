//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"reviewhub/internal/domain"
	mysqlrepo "reviewhub/internal/storage/mysql"
)

// ---------- helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=reviewhub",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "reviewhub")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------

func TestRepo_MySQL_FullAggregateLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// users
	u1, err := repo.CreateUser(ctx, "Jian_Yang")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u2, err := repo.CreateUser(ctx, "Eric_Bachman")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := repo.CreateUser(ctx, "Jian_Yang"); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("duplicate username: want ErrDuplicate, got %v", err)
	}

	// product
	p, err := repo.CreateProduct(ctx, domain.CategoryElectronics, "https://example.com/product")
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if _, err := repo.CreateProduct(ctx, domain.CategoryBooks, "https://example.com/product"); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("duplicate url: want ErrDuplicate, got %v", err)
	}

	// review ids must come back strictly increasing
	rv1, err := repo.CreateReview(ctx, u1.ID, p.ID, 5, "first")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	rv2, err := repo.CreateReview(ctx, u2.ID, p.ID, 3, "second")
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if rv2.ID <= rv1.ID {
		t.Fatalf("review ids not monotonic: %d then %d", rv1.ID, rv2.ID)
	}

	// follow edge projected on both aggregates
	if err := repo.SaveFollow(ctx, u1.ID, u2.ID); err != nil {
		t.Fatalf("SaveFollow: %v", err)
	}
	got1, err := repo.GetUser(ctx, u1.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	got2, err := repo.GetUser(ctx, u2.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !got1.Follows(u2.ID) || !got2.FollowedBy(u1.ID) {
		t.Fatalf("follow edge not symmetric: %+v / %+v", got1.Following, got2.Followers)
	}
	if len(got1.Reviews) != 1 || got1.Reviews[0].Text != "first" {
		t.Fatalf("unexpected reviews for u1: %+v", got1.Reviews)
	}

	// product aggregate carries all its reviews
	gp, err := repo.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if len(gp.Reviews) != 2 {
		t.Fatalf("want 2 product reviews, got %d", len(gp.Reviews))
	}

	// category filter
	cat := domain.CategoryElectronics
	list, err := repo.ListProducts(ctx, &cat)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("category filter: %+v", list)
	}

	// deleting the user cascades reviews and follow edges
	if err := repo.DeleteUser(ctx, u1.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetUser(ctx, u1.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted user still loadable: %v", err)
	}
	gp, err = repo.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if len(gp.Reviews) != 1 || gp.Reviews[0].AuthorID != u2.ID {
		t.Fatalf("cascade delete left reviews: %+v", gp.Reviews)
	}
	got2, err = repo.GetUser(ctx, u2.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got2.FollowedBy(u1.ID) {
		t.Fatalf("cascade delete left follow edge: %+v", got2.Followers)
	}

	// deleting the product cascades its remaining reviews
	if err := repo.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	got2, err = repo.GetUser(ctx, u2.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if len(got2.Reviews) != 0 {
		t.Fatalf("cascade delete left reviews on author: %+v", got2.Reviews)
	}
}
