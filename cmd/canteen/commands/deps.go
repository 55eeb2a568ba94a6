package commands

import (
	"context"
	"database/sql"
	"fmt"

	"canteen-backend/internal/chrono"
	"canteen-backend/internal/db"
	"canteen-backend/internal/menu"
	"canteen-backend/internal/service"
	"canteen-backend/internal/telemetry"
)

// deps are the components every command is built from.
type deps struct {
	cfg      Config
	database *sql.DB
	tel      telemetry.API
	service  service.MenuService
	// seeded is the number of standard extras inserted while wiring.
	seeded int
}

func (d deps) Close() error {
	return d.database.Close()
}

// newDeps opens the database, seeds missing standard extras and wires the
// pipeline.
func newDeps(ctx context.Context) (deps, error) {
	cfg, err := readConfig(*configPath)
	if err != nil {
		return deps{}, err
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return deps{}, err
	}

	tel := telemetry.SlogAPI{}
	qry := db.New(database)
	scraper := menu.NewScraper(menu.NewFetcher(cfg.FetcherOptions(), tel), tel)
	sync := menu.NewSynchronizer(qry, chrono.NewStandardTime(), tel)
	svc := service.NewMenuService(
		service.NewCoreAPIs(qry, db.NewMakeTx(database), service.WithCustomTelemetryAPI(tel)),
		scraper,
		sync,
	)

	seeded, err := svc.SeedStandardExtras(ctx, cfg.SeedExtras())
	if err != nil {
		database.Close()
		return deps{}, err
	}

	return deps{
		cfg:      cfg,
		database: database,
		tel:      tel,
		service:  svc,
		seeded:   seeded,
	}, nil
}

func formatPrice(grosze int64) string {
	return fmt.Sprintf("%d.%02d zł", grosze/100, grosze%100)
}
