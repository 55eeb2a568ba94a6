package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// valuesClause renders `(?, ?, ...), (?, ?, ...)` for rows of the given width.
func valuesClause(rows, width int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	return strings.TrimSuffix(strings.Repeat(row+", ", rows), ", ")
}

type InsertDinnerParams struct {
	Name      string
	Price     int64
	Image     string
	WeekDay   int64
	MaxSupply int64
	Kind      string
}

// InsertDinners inserts all rows in a single statement and returns the
// driver's last insert id. On sqlite (and libsql) that is the rowid of the
// final row of the statement, so the batch occupies (lastID-len(rows), lastID].
func (q *Queries) InsertDinners(ctx context.Context, rows []InsertDinnerParams) (int64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert dinners: no rows")
	}
	query := "insert into dinner (name, price, image, week_day, max_supply, kind) values " +
		valuesClause(len(rows), 6)
	args := make([]any, 0, len(rows)*6)
	for _, r := range rows {
		args = append(args, r.Name, r.Price, r.Image, r.WeekDay, r.MaxSupply, r.Kind)
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type InsertExtraParams struct {
	Name     string
	Price    int64
	Image    string
	Category string
}

// InsertExtras follows the same last insert id convention as InsertDinners.
func (q *Queries) InsertExtras(ctx context.Context, rows []InsertExtraParams) (int64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("insert extras: no rows")
	}
	query := "insert into extras (name, price, image, category) values " +
		valuesClause(len(rows), 4)
	args := make([]any, 0, len(rows)*4)
	for _, r := range rows {
		args = append(args, r.Name, r.Price, r.Image, r.Category)
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) InsertDinnerExtras(ctx context.Context, rows []DinnerExtra) error {
	if len(rows) == 0 {
		return nil
	}
	query := "insert into extras_dinner (dinner_id, extras_id) values " +
		valuesClause(len(rows), 2)
	args := make([]any, 0, len(rows)*2)
	for _, r := range rows {
		args = append(args, r.DinnerID, r.ExtrasID)
	}
	_, err := q.db.ExecContext(ctx, query, args...)
	return err
}

const listStandardExtras = `-- name: ListStandardExtras :many
select id, name, price, image, category from extras
where id in (select min(id) from extras group by category)
order by id
`

// ListStandardExtras returns the oldest extra of every category, which are
// the seeded standard extras. Override extras are always inserted later.
func (q *Queries) ListStandardExtras(ctx context.Context) ([]Extra, error) {
	rows, err := q.db.QueryContext(ctx, listStandardExtras)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Extra
	for rows.Next() {
		var i Extra
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.Image, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertMenuInfo = `-- name: UpsertMenuInfo :exec
insert into menu_info (id, last_update) values (?, ?)
on conflict (id) do update set last_update = excluded.last_update
`

func (q *Queries) UpsertMenuInfo(ctx context.Context, lastUpdate int64) error {
	_, err := q.db.ExecContext(ctx, upsertMenuInfo, MenuInfoID, lastUpdate)
	return err
}

const getMenuInfo = `-- name: GetMenuInfo :one
select id, last_update from menu_info where id = ?
`

func (q *Queries) GetMenuInfo(ctx context.Context) (MenuInfo, error) {
	row := q.db.QueryRowContext(ctx, getMenuInfo, MenuInfoID)
	var i MenuInfo
	err := row.Scan(&i.ID, &i.LastUpdate)
	return i, err
}

const listDinnersInRange = `-- name: ListDinnersInRange :many
select id, name, price, image, week_day, max_supply, kind from dinner
where week_day = ? and id between ? and ?
order by id
`

type ListDinnersInRangeParams struct {
	WeekDay int64
	FirstID int64
	LastID  int64
}

func (q *Queries) ListDinnersInRange(ctx context.Context, arg ListDinnersInRangeParams) ([]Dinner, error) {
	rows, err := q.db.QueryContext(ctx, listDinnersInRange, arg.WeekDay, arg.FirstID, arg.LastID)
	if err != nil {
		return nil, err
	}
	return scanDinners(rows)
}

const upsertDayStatus = `-- name: UpsertDayStatus :exec
insert into day_status (week_day, no_service, first_dinner_id, last_dinner_id, updated_at)
values (?, ?, ?, ?, ?)
on conflict (week_day) do update set
    no_service = excluded.no_service,
    first_dinner_id = excluded.first_dinner_id,
    last_dinner_id = excluded.last_dinner_id,
    updated_at = excluded.updated_at
`

type UpsertDayStatusParams struct {
	WeekDay       int64
	NoService     bool
	FirstDinnerID sql.NullInt64
	LastDinnerID  sql.NullInt64
	UpdatedAt     int64
}

func (q *Queries) UpsertDayStatus(ctx context.Context, arg UpsertDayStatusParams) error {
	_, err := q.db.ExecContext(ctx, upsertDayStatus,
		arg.WeekDay,
		arg.NoService,
		arg.FirstDinnerID,
		arg.LastDinnerID,
		arg.UpdatedAt,
	)
	return err
}

const getDayStatus = `-- name: GetDayStatus :one
select week_day, no_service, first_dinner_id, last_dinner_id, updated_at from day_status
where week_day = ?
`

func (q *Queries) GetDayStatus(ctx context.Context, weekDay int64) (DayStatus, error) {
	row := q.db.QueryRowContext(ctx, getDayStatus, weekDay)
	var i DayStatus
	err := row.Scan(
		&i.WeekDay,
		&i.NoService,
		&i.FirstDinnerID,
		&i.LastDinnerID,
		&i.UpdatedAt,
	)
	return i, err
}

const listDinnersDesc = `-- name: ListDinnersDesc :many
select id, name, price, image, week_day, max_supply, kind from dinner
order by id desc
limit ?
`

func (q *Queries) ListDinnersDesc(ctx context.Context, limit int64) ([]Dinner, error) {
	rows, err := q.db.QueryContext(ctx, listDinnersDesc, limit)
	if err != nil {
		return nil, err
	}
	return scanDinners(rows)
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

func scanDinners(rows rowsScanner) ([]Dinner, error) {
	defer rows.Close()
	var items []Dinner
	for rows.Next() {
		var i Dinner
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Price,
			&i.Image,
			&i.WeekDay,
			&i.MaxSupply,
			&i.Kind,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listExtrasForDinner = `-- name: ListExtrasForDinner :many
select e.id, e.name, e.price, e.image, e.category from extras e
inner join extras_dinner ed on ed.extras_id = e.id
where ed.dinner_id = ?
order by e.id
`

func (q *Queries) ListExtrasForDinner(ctx context.Context, dinnerID int64) ([]Extra, error) {
	rows, err := q.db.QueryContext(ctx, listExtrasForDinner, dinnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Extra
	for rows.Next() {
		var i Extra
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.Image, &i.Category); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRows = `-- name: CountRows :one
select
    (select count(*) from dinner),
    (select count(*) from extras),
    (select count(*) from extras_dinner)
`

type CountRowsRow struct {
	Dinners      int64
	Extras       int64
	DinnerExtras int64
}

func (q *Queries) CountRows(ctx context.Context) (CountRowsRow, error) {
	row := q.db.QueryRowContext(ctx, countRows)
	var i CountRowsRow
	err := row.Scan(&i.Dinners, &i.Extras, &i.DinnerExtras)
	return i, err
}

const listExtraCategories = `-- name: ListExtraCategories :many
select distinct category from extras
`

func (q *Queries) ListExtraCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listExtraCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
