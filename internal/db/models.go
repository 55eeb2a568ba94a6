package db

import "database/sql"

type Dinner struct {
	ID        int64
	Name      string
	Price     int64
	Image     string
	WeekDay   int64
	MaxSupply int64
	Kind      string
}

type Extra struct {
	ID       int64
	Name     string
	Price    int64
	Image    string
	Category string
}

type DinnerExtra struct {
	DinnerID int64
	ExtrasID int64
}

type DayStatus struct {
	WeekDay       int64
	NoService     bool
	FirstDinnerID sql.NullInt64
	LastDinnerID  sql.NullInt64
	UpdatedAt     int64
}

type MenuInfo struct {
	ID         int64
	LastUpdate int64
}
