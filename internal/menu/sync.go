package menu

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"canteen-backend/internal/assert"
	"canteen-backend/internal/chrono"
	"canteen-backend/internal/db"
	"canteen-backend/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_synchronizer_sync = "synchronizer.sync"
	report_dinners_inserted  = "synchronizer.dinners-inserted"
)

var meter = otel.Meter("canteen.internal.menu")
var dinnersCounter, _ = meter.Int64Counter("menu_dinners_inserted")
var extrasCounter, _ = meter.Int64Counter("menu_extras_inserted")
var linksCounter, _ = meter.Int64Counter("menu_links_inserted")

// Store is the persistence the synchronizer writes to, *db.Queries
// implements it.
//
// InsertDinners and InsertExtras return the id of the last row of the batch.
type Store interface {
	InsertDinners(ctx context.Context, rows []db.InsertDinnerParams) (int64, error)
	InsertExtras(ctx context.Context, rows []db.InsertExtraParams) (int64, error)
	InsertDinnerExtras(ctx context.Context, rows []db.DinnerExtra) error
	ListStandardExtras(ctx context.Context) ([]db.Extra, error)
	UpsertMenuInfo(ctx context.Context, lastUpdate int64) error
	UpsertDayStatus(ctx context.Context, arg db.UpsertDayStatusParams) error
}

// StandardExtras holds the ids of the always available extras.
type StandardExtras struct {
	Filler   int64
	Beverage int64
	Salad    int64
}

func (s StandardExtras) IDs() []int64 {
	return []int64{s.Filler, s.Beverage, s.Salad}
}

// GetStandardExtraIDs looks up the seeded filler, beverage and salad.
func GetStandardExtraIDs(ctx context.Context, store Store) (StandardExtras, error) {
	extras, err := store.ListStandardExtras(ctx)
	if err != nil {
		return StandardExtras{}, err
	}

	var out StandardExtras
	for _, e := range extras {
		switch ExtraCategory(e.Category) {
		case CategoryFiller:
			out.Filler = e.ID
		case CategoryBeverage:
			out.Beverage = e.ID
		case CategorySalad:
			out.Salad = e.ID
		}
	}
	if out.Filler == 0 || out.Beverage == 0 || out.Salad == 0 {
		return StandardExtras{}, fmt.Errorf(
			"%w: filler=%d beverage=%d salad=%d",
			ErrStandardExtrasMissing, out.Filler, out.Beverage, out.Salad,
		)
	}
	return out, nil
}

// LinkDinnersToExtras links every dinner to every extra in one insert.
func LinkDinnersToExtras(ctx context.Context, store Store, dinnerIDs, extraIDs []int64) error {
	links := make([]db.DinnerExtra, 0, len(dinnerIDs)*len(extraIDs))
	for _, dinnerID := range dinnerIDs {
		for _, extraID := range extraIDs {
			links = append(links, db.DinnerExtra{
				DinnerID: dinnerID,
				ExtrasID: extraID,
			})
		}
	}
	return store.InsertDinnerExtras(ctx, links)
}

// DinnerIDRange returns the ids of a batch of count rows whose last insert
// id is lastID, that is lastID-count+1 through lastID.
func DinnerIDRange(lastID int64, count int) []int64 {
	ids := make([]int64, count)
	first := lastID - int64(count) + 1
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids
}

// DayResult records what happened to one weekday during a sync.
type DayResult struct {
	Weekday         Weekday `json:"weekday"`
	Skipped         bool    `json:"skipped"`
	DinnerIDs       []int64 `json:"dinnerIds,omitempty"`
	OverrideExtraID int64   `json:"overrideExtraId,omitempty"`
}

type SyncReport struct {
	Days      []DayResult `json:"days"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Synchronizer writes parsed menus into the store.
//
// Runs are not transactional: a failing step leaves the days before it
// committed. Runs are also not idempotent, every run inserts new dinners,
// override extras and links.
type Synchronizer struct {
	store Store
	time  chrono.TimeAPI
	tel   telemetry.API
	// held for a whole Sync so two refreshes never interleave their inserts
	mu *sync.Mutex
}

func NewSynchronizer(store Store, time chrono.TimeAPI, tel telemetry.API) Synchronizer {
	assert.NotNil(store, "store")
	assert.NotNil(time, "time api")
	assert.NotNil(tel, "telemetry")

	return Synchronizer{
		store: store,
		time:  time,
		tel:   telemetry.NewScopedAPI("menu_synchronizer", tel),
		mu:    &sync.Mutex{},
	}
}

// UpdateMenu synchronizes a whole week.
func (s Synchronizer) UpdateMenu(ctx context.Context, week WeeklyMenu) (SyncReport, error) {
	return s.Sync(ctx, week.Days())
}

// Sync inserts the dinners, override extras and links of the given days in
// order and stamps the menu info afterwards. Every considered day gets its
// status replaced, days without service included.
func (s Synchronizer) Sync(ctx context.Context, days []DayEntry) (SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := tracer.Start(ctx, "Sync")
	defer span.End()

	report, err := s.sync(ctx, span, days)
	if err != nil {
		s.tel.ReportBroken(report_synchronizer_sync, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	return report, nil
}

func (s Synchronizer) sync(ctx context.Context, span trace.Span, days []DayEntry) (SyncReport, error) {
	report := SyncReport{}

	for _, day := range days {
		if !day.Weekday.Valid() {
			return report, &PersistenceError{
				Step:    StepValidate,
				Weekday: int(day.Weekday),
				Err:     ErrInvalidWeekday,
			}
		}
	}

	standard, err := GetStandardExtraIDs(ctx, s.store)
	if err != nil {
		return report, &PersistenceError{Step: StepListStandardExtras, Weekday: -1, Err: err}
	}

	now := s.time.Now()
	var inserted int64
	for _, day := range days {
		result, err := s.syncDay(ctx, standard, day)
		if err != nil {
			return report, err
		}
		report.Days = append(report.Days, result)
		inserted += int64(len(result.DinnerIDs))

		err = s.store.UpsertDayStatus(ctx, dayStatusParams(result, now))
		if err != nil {
			return report, &PersistenceError{Step: StepUpsertDayStatus, Weekday: int(day.Weekday), Err: err}
		}
	}

	err = s.store.UpsertMenuInfo(ctx, now.Unix())
	if err != nil {
		return report, &PersistenceError{Step: StepUpsertMenuInfo, Weekday: -1, Err: err}
	}
	report.UpdatedAt = now

	s.tel.ReportCount(report_dinners_inserted, inserted)
	span.SetAttributes(attribute.Int64("dinners_inserted", inserted))
	return report, nil
}

func (s Synchronizer) syncDay(ctx context.Context, standard StandardExtras, day DayEntry) (DayResult, error) {
	result := DayResult{Weekday: day.Weekday}
	wrap := func(step string, err error) error {
		return &PersistenceError{Step: step, Weekday: int(day.Weekday), Err: err}
	}

	if day.Menu.NoService() {
		s.tel.ReportDebug("no service, skipping day", day.Weekday.String(), day.Menu.Closed)
		result.Skipped = true
		return result, nil
	}

	rows := make([]db.InsertDinnerParams, 0, len(day.Menu.Dishes)+1)
	if day.Menu.Soup != "" {
		rows = append(rows, dinnerParams(day.Weekday, day.Menu.Soup, KindSoup))
	}
	for _, dish := range day.Menu.Dishes {
		rows = append(rows, dinnerParams(day.Weekday, dish, KindMain))
	}

	lastID, err := s.store.InsertDinners(ctx, rows)
	if err != nil {
		return result, wrap(StepInsertDinners, err)
	}
	result.DinnerIDs = DinnerIDRange(lastID, len(rows))
	dinnersCounter.Add(ctx, int64(len(rows)), metric.WithAttributes(attribute.String("weekday", day.Weekday.String())))

	extraIDs := standard.IDs()
	if day.Menu.ExtraOverride != nil {
		name := *day.Menu.ExtraOverride
		extraID, err := s.store.InsertExtras(ctx, []db.InsertExtraParams{{
			Name:     name,
			Price:    OverridePrice,
			Image:    ImageSlug(name),
			Category: string(CategoryFiller),
		}})
		if err != nil {
			return result, wrap(StepInsertExtra, err)
		}
		result.OverrideExtraID = extraID
		extraIDs = append(extraIDs, extraID)
		extrasCounter.Add(ctx, 1)
	}

	err = LinkDinnersToExtras(ctx, s.store, result.DinnerIDs, extraIDs)
	if err != nil {
		return result, wrap(StepLinkExtras, err)
	}
	linksCounter.Add(ctx, int64(len(result.DinnerIDs)*len(extraIDs)))

	s.tel.ReportDebug(
		"synchronized day",
		day.Weekday.String(),
		result.DinnerIDs,
		result.OverrideExtraID,
	)
	return result, nil
}

func dayStatusParams(result DayResult, now time.Time) db.UpsertDayStatusParams {
	params := db.UpsertDayStatusParams{
		WeekDay:   int64(result.Weekday),
		NoService: result.Skipped,
		UpdatedAt: now.Unix(),
	}
	if len(result.DinnerIDs) > 0 {
		params.FirstDinnerID = sql.NullInt64{Int64: result.DinnerIDs[0], Valid: true}
		params.LastDinnerID = sql.NullInt64{Int64: result.DinnerIDs[len(result.DinnerIDs)-1], Valid: true}
	}
	return params
}

func dinnerParams(weekday Weekday, name string, kind DinnerKind) db.InsertDinnerParams {
	return db.InsertDinnerParams{
		Name:      name,
		Price:     PriceFor(kind),
		Image:     ImageSlug(name),
		WeekDay:   int64(weekday),
		MaxSupply: DefaultMaxSupply,
		Kind:      string(kind),
	}
}
