package main

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewhub/internal/adapters/catalog"
	"reviewhub/internal/adapters/observability"
	"reviewhub/internal/domain"
	"reviewhub/internal/shared"
	mysqlrepo "reviewhub/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for page := 1; ; page++ {
		entries, err := client.ListPage(ctx, page)
		if err != nil {
			log.Fatal().Int("page", page).Err(err).Msg("catalog fetch failed")
		}
		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			e := e

			// acquire before launching the goroutine; release inside it
			if err := sem.Acquire(ctx, 1); err != nil {
				log.Fatal().Err(err).Msg("semaphore acquire failed")
			}

			wg.Add(1)
			go func(entry catalog.Entry) {
				defer wg.Done()
				defer sem.Release(1)

				cat, ok := domain.ParseCategory(entry.Category)
				if !ok {
					log.Warn().Str("category", entry.Category).Str("url", entry.URL).Msg("unknown category, skipped")
					return
				}
				if _, err := repo.CreateProduct(ctx, cat, entry.URL); err != nil {
					if errors.Is(err, domain.ErrDuplicate) {
						log.Debug().Str("url", entry.URL).Msg("product already imported")
						return
					}
					log.Warn().Str("url", entry.URL).Err(err).Msg("import failed")
					return
				}
				log.Info().Str("url", entry.URL).Msg("import ok")
			}(e)
		}
	}

	wg.Wait()
	log.Info().Msg("import completed")
}
