package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"canteen-backend/internal/chrono"
	"canteen-backend/internal/db"
	"canteen-backend/internal/menu"

	"github.com/antzucaro/matchr"
)

// searchWindow is the number of most recent dinners FindDinners looks at.
const searchWindow = 500

const minSimilarity = 0.8

type ExtraView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

type DinnerView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Price     int64       `json:"price"`
	Image     string      `json:"image"`
	MaxSupply int64       `json:"maxSupply"`
	Kind      string      `json:"kind"`
	Extras    []ExtraView `json:"extras"`
}

type DayMenuView struct {
	Weekday menu.Weekday `json:"weekday"`
	Day     string       `json:"day"`
	// set when the latest sync found the day closed or without dishes
	NoService bool         `json:"noService"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Dinners   []DinnerView `json:"dinners"`
}

type MenuInfoView struct {
	LastUpdate time.Time `json:"lastUpdate"`
}

type DinnerMatch struct {
	Dinner     DinnerView `json:"dinner"`
	Similarity float64    `json:"similarity"`
}

// Refresh scrapes the source page and stores the week. Concurrent callers
// share a single run and its result.
func (s MenuService) Refresh(ctx context.Context) (menu.SyncReport, error) {
	// the shared run must not die with whichever request started it
	ctx = context.WithoutCancel(ctx)

	result, err, shared := s.refresh.Do("refresh", func() (any, error) {
		week, err := s.scraper.ScrapeMenu(ctx)
		if err != nil {
			return menu.SyncReport{}, err
		}
		return s.updater.UpdateMenu(ctx, week)
	})
	if shared {
		s.tel.ReportDebug("joined running refresh")
	}
	report, _ := result.(menu.SyncReport)
	if err != nil {
		s.tel.ReportBroken(report_menu_refresh, err)
		return report, err
	}
	return report, nil
}

// SeedStandardExtras stores the given extras for every category that has
// none yet and returns how many were inserted.
func (s MenuService) SeedStandardExtras(ctx context.Context, extras []db.InsertExtraParams) (int, error) {
	inserted, err := db.SeedStandardExtras(ctx, s.makeTx, extras)
	if err != nil {
		s.tel.ReportBroken(report_menu_seed, err)
		return 0, err
	}
	if inserted > 0 {
		s.tel.ReportCount(report_menu_seed, int64(inserted))
	}
	return inserted, nil
}

func (s MenuService) dinnerView(ctx context.Context, d db.Dinner) (DinnerView, error) {
	extras, err := s.db.ListExtrasForDinner(ctx, d.ID)
	if err != nil {
		return DinnerView{}, err
	}
	view := DinnerView{
		ID:        d.ID,
		Name:      d.Name,
		Price:     d.Price,
		Image:     d.Image,
		MaxSupply: d.MaxSupply,
		Kind:      d.Kind,
		Extras:    make([]ExtraView, 0, len(extras)),
	}
	for _, e := range extras {
		view.Extras = append(view.Extras, ExtraView{
			ID:       e.ID,
			Name:     e.Name,
			Price:    e.Price,
			Image:    e.Image,
			Category: e.Category,
		})
	}
	return view, nil
}

// GetDayMenu returns the dinners the most recent sync stored for a weekday
// with the extras linked to each of them. A day the most recent sync found
// without service comes back with NoService set and no dinners.
func (s MenuService) GetDayMenu(ctx context.Context, weekday menu.Weekday) (DayMenuView, error) {
	if !weekday.Valid() {
		return DayMenuView{}, fmt.Errorf("get day menu: %w", menu.ErrInvalidWeekday)
	}

	status, err := s.db.GetDayStatus(ctx, int64(weekday))
	if errors.Is(err, sql.ErrNoRows) {
		return DayMenuView{}, fmt.Errorf("get day menu %s: %w", weekday, ErrMenuNotFound)
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetDayStatus", weekday)
		return DayMenuView{}, err
	}

	view := DayMenuView{
		Weekday:   weekday,
		Day:       weekday.String(),
		NoService: status.NoService,
		UpdatedAt: time.Unix(status.UpdatedAt, 0).In(chrono.Warsaw()),
		Dinners:   []DinnerView{},
	}
	if status.NoService {
		return view, nil
	}

	rows, err := s.db.ListDinnersInRange(ctx, db.ListDinnersInRangeParams{
		WeekDay: int64(weekday),
		FirstID: status.FirstDinnerID.Int64,
		LastID:  status.LastDinnerID.Int64,
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListDinnersInRange", weekday)
		return DayMenuView{}, err
	}
	for _, d := range rows {
		dinner, err := s.dinnerView(ctx, d)
		if err != nil {
			s.tel.ReportBroken(report_menu_get_day, err, d.ID)
			return DayMenuView{}, err
		}
		view.Dinners = append(view.Dinners, dinner)
	}
	return view, nil
}

// GetMenuInfo returns when the menu was last synchronized.
func (s MenuService) GetMenuInfo(ctx context.Context) (MenuInfoView, error) {
	info, err := s.db.GetMenuInfo(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return MenuInfoView{}, ErrMenuNotFound
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetMenuInfo")
		return MenuInfoView{}, err
	}
	return MenuInfoView{
		LastUpdate: time.Unix(info.LastUpdate, 0).In(chrono.Warsaw()),
	}, nil
}

func normalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// FindDinners looks up recently stored dinners whose name is close to query.
// Every name is reported once, with its most recent row.
func (s MenuService) FindDinners(ctx context.Context, query string, limit int) ([]DinnerMatch, error) {
	query = normalizeQuery(query)
	if query == "" {
		return nil, nil
	}

	rows, err := s.db.ListDinnersDesc(ctx, searchWindow)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListDinnersDesc")
		return nil, err
	}

	seen := map[string]struct{}{}
	var matches []DinnerMatch
	for _, d := range rows {
		name := normalizeQuery(d.Name)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		similarity := matchr.JaroWinkler(query, name, false)
		if strings.Contains(name, query) {
			similarity = max(similarity, 1)
		}
		if similarity < minSimilarity {
			continue
		}

		view, err := s.dinnerView(ctx, d)
		if err != nil {
			s.tel.ReportBroken(report_menu_find, err, d.ID)
			return nil, err
		}
		matches = append(matches, DinnerMatch{Dinner: view, Similarity: similarity})
	}

	slices.SortStableFunc(matches, func(a, b DinnerMatch) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
