package menu

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"
	"time"

	"canteen-backend/internal/chrono"
	"canteen-backend/internal/db"
	"canteen-backend/internal/telemetry"
	"canteen-backend/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var syncTime = chrono.FixedTime{
	Time: time.Date(2024, time.October, 14, 6, 0, 0, 0, chrono.Warsaw()),
}

// fakeStore hands out ids the way sqlite does, optionally leaving a gap
// before every dinner batch like a concurrent writer would.
type fakeStore struct {
	dinnerGap    int64
	lastDinnerID int64
	lastExtraID  int64

	standard []db.Extra
	dinners  map[int64]db.InsertDinnerParams
	extras   map[int64]db.InsertExtraParams
	links    []db.DinnerExtra
	menuInfo *int64
	statuses map[int64]db.UpsertDayStatusParams

	listCalls   int
	failDinners map[int64]error
	failLinks   error
	failStatus  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lastExtraID: 3,
		standard: []db.Extra{
			{ID: 1, Name: "ziemniaki", Category: db.EXTRA_CATEGORY_FILLER},
			{ID: 2, Name: "kompot", Category: db.EXTRA_CATEGORY_BEVERAGE},
			{ID: 3, Name: "surówka", Category: db.EXTRA_CATEGORY_SALAD},
		},
		dinners:     map[int64]db.InsertDinnerParams{},
		extras:      map[int64]db.InsertExtraParams{},
		statuses:    map[int64]db.UpsertDayStatusParams{},
		failDinners: map[int64]error{},
	}
}

func (s *fakeStore) InsertDinners(ctx context.Context, rows []db.InsertDinnerParams) (int64, error) {
	if err := s.failDinners[rows[0].WeekDay]; err != nil {
		return 0, err
	}
	s.lastDinnerID += s.dinnerGap
	for _, r := range rows {
		s.lastDinnerID++
		s.dinners[s.lastDinnerID] = r
	}
	return s.lastDinnerID, nil
}

func (s *fakeStore) InsertExtras(ctx context.Context, rows []db.InsertExtraParams) (int64, error) {
	for _, r := range rows {
		s.lastExtraID++
		s.extras[s.lastExtraID] = r
	}
	return s.lastExtraID, nil
}

func (s *fakeStore) InsertDinnerExtras(ctx context.Context, rows []db.DinnerExtra) error {
	if s.failLinks != nil {
		return s.failLinks
	}
	s.links = append(s.links, rows...)
	return nil
}

func (s *fakeStore) ListStandardExtras(ctx context.Context) ([]db.Extra, error) {
	s.listCalls++
	return s.standard, nil
}

func (s *fakeStore) UpsertMenuInfo(ctx context.Context, lastUpdate int64) error {
	s.menuInfo = &lastUpdate
	return nil
}

func (s *fakeStore) UpsertDayStatus(ctx context.Context, arg db.UpsertDayStatusParams) error {
	if s.failStatus != nil {
		return s.failStatus
	}
	s.statuses[arg.WeekDay] = arg
	return nil
}

func (s *fakeStore) dinnerIDs(weekday Weekday) []int64 {
	var ids []int64
	for id, d := range s.dinners {
		if d.WeekDay == int64(weekday) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *fakeStore) linkedExtras(dinnerID int64) []int64 {
	var ids []int64
	for _, l := range s.links {
		if l.DinnerID == dinnerID {
			ids = append(ids, l.ExtrasID)
		}
	}
	slices.Sort(ids)
	return ids
}

func newTestSynchronizer(store Store) Synchronizer {
	return NewSynchronizer(store, syncTime, telemetry.SlogAPI{})
}

func requirePersistenceError(t *testing.T, err error, step string, weekday int) {
	t.Helper()
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, step, perr.Step)
	require.Equal(t, weekday, perr.Weekday)
}

func TestDinnerIDRange(t *testing.T) {
	require.Equal(t, []int64{40, 41, 42}, DinnerIDRange(42, 3))
	require.Equal(t, []int64{7}, DinnerIDRange(7, 1))
	require.Empty(t, DinnerIDRange(7, 0))
}

func TestSyncLinksBatchIDRange(t *testing.T) {
	store := newFakeStore()
	store.dinnerGap = 10

	report, err := newTestSynchronizer(store).Sync(context.Background(), []DayEntry{
		{Weekday: Monday, Menu: DayMenu{Soup: "Pomidorowa", Dishes: []string{"Schabowy", "Pierogi"}}},
		{Weekday: Tuesday, Menu: DayMenu{Soup: "Żurek", Dishes: []string{"Stek"}}},
	})
	require.NoError(t, err)

	require.Equal(t, []int64{11, 12, 13}, report.Days[0].DinnerIDs)
	require.Equal(t, []int64{24, 25}, report.Days[1].DinnerIDs)
	require.Equal(t, report.Days[0].DinnerIDs, store.dinnerIDs(Monday))
	require.Equal(t, report.Days[1].DinnerIDs, store.dinnerIDs(Tuesday))

	require.Len(t, store.links, 5*3)
	for _, l := range store.links {
		_, ok := store.dinners[l.DinnerID]
		require.True(t, ok, "link to unknown dinner %d", l.DinnerID)
	}
	for id := range store.dinners {
		require.Equal(t, []int64{1, 2, 3}, store.linkedExtras(id))
	}

	require.NotNil(t, store.menuInfo)
	require.Equal(t, syncTime.Time.Unix(), *store.menuInfo)
	require.Equal(t, syncTime.Time, report.UpdatedAt)
}

func TestSyncDinnerParams(t *testing.T) {
	store := newFakeStore()

	_, err := newTestSynchronizer(store).Sync(context.Background(), []DayEntry{
		{Weekday: Friday, Menu: DayMenu{Soup: "Rosół", Dishes: []string{"Łazanki"}}},
	})
	require.NoError(t, err)

	expected := map[int64]db.InsertDinnerParams{
		1: {Name: "Rosół", Price: SoupPrice, Image: "rosol.jpg", WeekDay: 4, MaxSupply: DefaultMaxSupply, Kind: db.DINNER_KIND_SOUP},
		2: {Name: "Łazanki", Price: MainPrice, Image: "lazanki.jpg", WeekDay: 4, MaxSupply: DefaultMaxSupply, Kind: db.DINNER_KIND_MAIN},
	}
	if diff := cmp.Diff(expected, store.dinners); diff != "" {
		t.Fatal(diff)
	}
}

func TestSyncWithoutSoup(t *testing.T) {
	store := newFakeStore()

	report, err := newTestSynchronizer(store).Sync(context.Background(), []DayEntry{
		{Weekday: Monday, Menu: DayMenu{Dishes: []string{"Schabowy"}}},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, report.Days[0].DinnerIDs)
	require.Equal(t, db.DINNER_KIND_MAIN, store.dinners[1].Kind)
}

func TestSyncOverrideExtra(t *testing.T) {
	store := newFakeStore()

	report, err := newTestSynchronizer(store).Sync(context.Background(), []DayEntry{
		{Weekday: Monday, Menu: DayMenu{
			Soup:          "Pomidorowa",
			Dishes:        []string{"Schabowy"},
			ExtraOverride: ptr("frytki"),
		}},
	})
	require.NoError(t, err)

	require.Equal(t, int64(4), report.Days[0].OverrideExtraID)
	require.Equal(t, db.InsertExtraParams{
		Name:     "frytki",
		Price:    OverridePrice,
		Image:    "frytki.jpg",
		Category: db.EXTRA_CATEGORY_FILLER,
	}, store.extras[4])
	for _, id := range report.Days[0].DinnerIDs {
		require.Equal(t, []int64{1, 2, 3, 4}, store.linkedExtras(id))
	}
}

func TestSyncSkipsNoServiceDays(t *testing.T) {
	store := newFakeStore()

	report, err := newTestSynchronizer(store).UpdateMenu(context.Background(), WeeklyMenu{
		{Soup: "Pomidorowa", Dishes: []string{"Schabowy"}},
		{Soup: "Żurek"},
		{Closed: true},
		{Soup: "Krupnik", Dishes: []string{"Gulasz"}},
	})
	require.NoError(t, err)

	require.Len(t, report.Days, DaysPerWeek)
	skipped := []Weekday{}
	for _, day := range report.Days {
		if day.Skipped {
			skipped = append(skipped, day.Weekday)
			require.Empty(t, day.DinnerIDs)
		}
	}
	require.Equal(t, []Weekday{Tuesday, Wednesday, Friday, Saturday}, skipped)
	require.Empty(t, store.dinnerIDs(Tuesday))
	require.Len(t, store.dinnerIDs(Thursday), 2)
	require.NotNil(t, store.menuInfo)

	// skipped days are still recorded
	require.Len(t, store.statuses, DaysPerWeek)
	for _, weekday := range skipped {
		require.Equal(t, db.UpsertDayStatusParams{
			WeekDay:   int64(weekday),
			NoService: true,
			UpdatedAt: syncTime.Time.Unix(),
		}, store.statuses[int64(weekday)])
	}
	require.Equal(t, db.UpsertDayStatusParams{
		WeekDay:       int64(Thursday),
		FirstDinnerID: sql.NullInt64{Int64: 3, Valid: true},
		LastDinnerID:  sql.NullInt64{Int64: 4, Valid: true},
		UpdatedAt:     syncTime.Time.Unix(),
	}, store.statuses[int64(Thursday)])
}

func TestSyncDayStatusFailure(t *testing.T) {
	store := newFakeStore()
	store.failStatus = errors.New("database is locked")

	report, err := newTestSynchronizer(store).UpdateMenu(context.Background(), expectedFixtureWeek)
	requirePersistenceError(t, err, StepUpsertDayStatus, int(Monday))
	require.Len(t, report.Days, 1)
	require.Empty(t, store.dinnerIDs(Tuesday))
	require.Nil(t, store.menuInfo)
}

func TestSyncStoreFailureKeepsEarlierDays(t *testing.T) {
	store := newFakeStore()
	store.failDinners[int64(Wednesday)] = errors.New("disk I/O error")

	report, err := newTestSynchronizer(store).UpdateMenu(context.Background(), expectedFixtureWeek)
	requirePersistenceError(t, err, StepInsertDinners, int(Wednesday))

	require.Len(t, report.Days, 2)
	require.Len(t, store.dinnerIDs(Monday), 3)
	require.Len(t, store.dinnerIDs(Tuesday), 3)
	require.Empty(t, store.dinnerIDs(Thursday))
	require.Len(t, store.links, 3*4+3*3)
	require.Len(t, store.statuses, 2)
	require.Nil(t, store.menuInfo)
}

func TestSyncLinkFailure(t *testing.T) {
	store := newFakeStore()
	store.failLinks = errors.New("constraint failed")

	_, err := newTestSynchronizer(store).UpdateMenu(context.Background(), expectedFixtureWeek)
	requirePersistenceError(t, err, StepLinkExtras, int(Monday))
	require.Len(t, store.extras, 1)
	require.Nil(t, store.menuInfo)
}

func TestSyncStandardExtrasMissing(t *testing.T) {
	store := newFakeStore()
	store.standard = store.standard[:1]

	_, err := newTestSynchronizer(store).UpdateMenu(context.Background(), expectedFixtureWeek)
	require.ErrorIs(t, err, ErrStandardExtrasMissing)
	requirePersistenceError(t, err, StepListStandardExtras, -1)
	require.Empty(t, store.dinners)
	require.Nil(t, store.menuInfo)
}

func TestSyncInvalidWeekdayWritesNothing(t *testing.T) {
	store := newFakeStore()

	_, err := newTestSynchronizer(store).Sync(context.Background(), []DayEntry{
		{Weekday: Monday, Menu: DayMenu{Soup: "Pomidorowa", Dishes: []string{"Schabowy"}}},
		{Weekday: Weekday(7), Menu: DayMenu{Soup: "Rosół", Dishes: []string{"Pierogi"}}},
	})
	require.ErrorIs(t, err, ErrInvalidWeekday)
	requirePersistenceError(t, err, StepValidate, 7)
	require.Zero(t, store.listCalls)
	require.Empty(t, store.dinners)
	require.Nil(t, store.menuInfo)
}

func setupSqliteSynchronizer(t *testing.T) (*db.Queries, Synchronizer) {
	t.Helper()
	database := testutil.SetupSeededDB(t, DefaultStandardExtras)
	qry := db.New(database)
	return qry, newTestSynchronizer(qry)
}

func TestSyncSqliteReference(t *testing.T) {
	qry, syncer := setupSqliteSynchronizer(t)
	ctx := context.Background()

	report, err := syncer.UpdateMenu(ctx, expectedFixtureWeek)
	require.NoError(t, err)

	counts, err := qry.CountRows(ctx)
	require.NoError(t, err)
	require.Equal(t, db.CountRowsRow{Dinners: 15, Extras: 6, DinnerExtras: 54}, counts)

	for _, day := range report.Days {
		if day.Skipped {
			require.Equal(t, Saturday, day.Weekday)
			continue
		}

		status, err := qry.GetDayStatus(ctx, int64(day.Weekday))
		require.NoError(t, err)
		require.False(t, status.NoService)
		stored, err := qry.ListDinnersInRange(ctx, db.ListDinnersInRangeParams{
			WeekDay: int64(day.Weekday),
			FirstID: status.FirstDinnerID.Int64,
			LastID:  status.LastDinnerID.Int64,
		})
		require.NoError(t, err)

		menu := expectedFixtureWeek[day.Weekday]
		var ids []int64
		var names []string
		for _, d := range stored {
			ids = append(ids, d.ID)
			names = append(names, d.Name)
		}
		require.Equal(t, day.DinnerIDs, ids)
		require.Equal(t, append([]string{menu.Soup}, menu.Dishes...), names)

		extras, err := qry.ListExtrasForDinner(ctx, day.DinnerIDs[0])
		require.NoError(t, err)
		if menu.ExtraOverride == nil {
			require.Len(t, extras, 3)
			continue
		}
		require.Len(t, extras, 4)
		require.Equal(t, day.OverrideExtraID, extras[3].ID)
		require.Equal(t, *menu.ExtraOverride, extras[3].Name)
	}

	info, err := qry.GetMenuInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, syncTime.Time.Unix(), info.LastUpdate)

	// override extras never become standard extras
	standard, err := GetStandardExtraIDs(ctx, qry)
	require.NoError(t, err)
	require.Equal(t, StandardExtras{Filler: 1, Beverage: 2, Salad: 3}, standard)
}

func TestUpdateMenuTwiceDuplicatesRows(t *testing.T) {
	qry, syncer := setupSqliteSynchronizer(t)
	ctx := context.Background()

	for range 2 {
		_, err := syncer.UpdateMenu(ctx, expectedFixtureWeek)
		require.NoError(t, err)
	}

	counts, err := qry.CountRows(ctx)
	require.NoError(t, err)
	require.Equal(t, db.CountRowsRow{Dinners: 30, Extras: 9, DinnerExtras: 108}, counts)
}

func TestConcurrentSyncsDoNotInterleave(t *testing.T) {
	qry, syncer := setupSqliteSynchronizer(t)
	ctx := context.Background()

	reports := make([]SyncReport, 4)
	group, groupCtx := errgroup.WithContext(ctx)
	for i := range reports {
		group.Go(func() error {
			report, err := syncer.UpdateMenu(groupCtx, expectedFixtureWeek)
			reports[i] = report
			return err
		})
	}
	require.NoError(t, group.Wait())

	for _, report := range reports {
		for _, day := range report.Days {
			if day.Skipped {
				continue
			}
			for i := 1; i < len(day.DinnerIDs); i++ {
				require.Equal(t, day.DinnerIDs[i-1]+1, day.DinnerIDs[i])
			}
			for _, id := range day.DinnerIDs {
				extras, err := qry.ListExtrasForDinner(ctx, id)
				require.NoError(t, err)
				if day.OverrideExtraID != 0 {
					require.Len(t, extras, 4)
					require.Equal(t, day.OverrideExtraID, extras[3].ID)
				} else {
					require.Len(t, extras, 3)
				}
			}
		}
	}
}
