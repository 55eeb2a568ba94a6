package menu

import (
	"context"
	"errors"

	"canteen-backend/internal/assert"
	"canteen-backend/internal/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_scraper_parse = "scraper.parse"
)

// DocumentFetcher is anything that can produce the menu page, Fetcher is the
// production implementation.
type DocumentFetcher interface {
	Fetch(ctx context.Context) (*goquery.Document, error)
}

type Scraper struct {
	fetcher DocumentFetcher
	tel     telemetry.API
}

func NewScraper(fetcher DocumentFetcher, tel telemetry.API) Scraper {
	assert.NotNil(fetcher, "document fetcher")
	assert.NotNil(tel, "telemetry")

	return Scraper{
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("menu_scraper", tel),
	}
}

// ScrapeMenu fetches the menu page and rebuilds the week from it.
func (s Scraper) ScrapeMenu(ctx context.Context) (WeeklyMenu, error) {
	doc, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return WeeklyMenu{}, err
	}

	_, span := tracer.Start(ctx, "ParseDocument")
	defer span.End()

	week, err := ParseDocument(doc)
	if err != nil {
		s.tel.ReportBroken(report_scraper_parse, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return WeeklyMenu{}, err
	}
	for _, day := range week.Days() {
		s.tel.ReportDebug(
			"parsed day",
			day.Weekday.String(),
			day.Menu.Soup,
			len(day.Menu.Dishes),
			day.Menu.Closed,
		)
	}
	return week, nil
}

// ParseDocument runs row extraction and day building over an already
// fetched menu page.
func ParseDocument(doc *goquery.Document) (WeeklyMenu, error) {
	var week WeeklyMenu

	first, second, err := ExtractRows(doc)
	if err != nil {
		return week, err
	}

	for half, rows := range [2][]RawRow{first, second} {
		days, err := BuildHalf(rows)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Half = half
			}
			return WeeklyMenu{}, err
		}
		copy(week[half*DaysPerHalf:], days[:])
	}
	return week, nil
}
