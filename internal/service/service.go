package service

import (
	"context"
	"errors"

	"canteen-backend/internal/assert"
	"canteen-backend/internal/db"
	"canteen-backend/internal/menu"
	"canteen-backend/internal/telemetry"

	"golang.org/x/sync/singleflight"
)

const (
	report_menu_refresh = "menu.refresh"
	report_menu_get_day = "menu.get-day"
	report_menu_find    = "menu.find"
	report_menu_seed    = "menu.seed-extras"
	report_db_query     = "db.query"
)

var ErrMenuNotFound = errors.New("no menu has been synchronized yet")

// MenuScraper produces the current week from the source page.
//
// note: fault injection point
type MenuScraper interface {
	ScrapeMenu(ctx context.Context) (menu.WeeklyMenu, error)
}

// MenuUpdater persists a scraped week.
type MenuUpdater interface {
	UpdateMenu(ctx context.Context, week menu.WeeklyMenu) (menu.SyncReport, error)
}

type coreAPIs struct {
	db     *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
}

// NewCoreAPIs initializes a collection of common APIs all services need to run.
func NewCoreAPIs(db *db.Queries, makeTx db.MakeTx, options ...CoreAPIsOption) coreAPIs {
	assert.NotNil(db, "db")
	assert.NotNil(makeTx, "makeTx")

	cfg := coreAPIsConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	apis := coreAPIs{
		db:     db,
		makeTx: makeTx,
		tel:    telemetry.SlogAPI{},
	}
	if cfg.tel != nil {
		apis.tel = cfg.tel
	}

	apis.tel = telemetry.NewScopedAPI("service", apis.tel)

	return apis
}

type coreAPIsConfig struct {
	tel telemetry.API
}

type CoreAPIsOption func(cfg *coreAPIsConfig)

func WithCustomTelemetryAPI(tel telemetry.API) CoreAPIsOption {
	return func(cfg *coreAPIsConfig) {
		cfg.tel = tel
	}
}

// MenuService exposes the scrape and store pipeline and the read side of
// the stored menus.
type MenuService struct {
	coreAPIs

	scraper MenuScraper
	updater MenuUpdater
	refresh *singleflight.Group
}

// NewMenuService creates a MenuService
func NewMenuService(coreAPIs coreAPIs, scraper MenuScraper, updater MenuUpdater) MenuService {
	assert.NotNil(scraper, "menu scraper")
	assert.NotNil(updater, "menu updater")

	return MenuService{
		coreAPIs: coreAPIs,
		scraper:  scraper,
		updater:  updater,
		refresh:  &singleflight.Group{},
	}
}
