package menu

import (
	"fmt"
	"strconv"
	"strings"

	"canteen-backend/internal/db"
)

// Weekday is a canteen service day, Monday is 0 and Saturday is 5.
type Weekday uint8

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const (
	DaysPerWeek = 6
	DaysPerHalf = 3
)

var weekdayNames = [DaysPerWeek]string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

var polishWeekdayNames = [DaysPerWeek]string{
	"poniedziałek",
	"wtorek",
	"środa",
	"czwartek",
	"piątek",
	"sobota",
}

func (w Weekday) Valid() bool {
	return w <= Saturday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("weekday(%d)", uint8(w))
	}
	return weekdayNames[w]
}

// ParseWeekday accepts a day index (0-5) or an english or polish day name.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	n, err := strconv.Atoi(s)
	if err == nil {
		// checked before the conversion, Weekday is a uint8
		if n < 0 || n >= DaysPerWeek {
			return 0, fmt.Errorf("parse weekday %q: %w", s, ErrInvalidWeekday)
		}
		return Weekday(n), nil
	}
	for i := range DaysPerWeek {
		if s == weekdayNames[i] || s == polishWeekdayNames[i] {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("parse weekday %q: %w", s, ErrInvalidWeekday)
}

// RawRow holds the normalized cell texts of one table row.
type RawRow []string

// Blank reports whether every cell of the row is empty.
func (r RawRow) Blank() bool {
	for _, cell := range r {
		if cell != "" {
			return false
		}
	}
	return true
}

// FirstMeaningful returns the first non-empty cell or "".
func (r RawRow) FirstMeaningful() string {
	for _, cell := range r {
		if cell != "" {
			return cell
		}
	}
	return ""
}

// DayMenu is the menu of one weekday as read from the source page.
type DayMenu struct {
	Soup          string   `json:"soup"`
	Dishes        []string `json:"dishes"`
	ExtraOverride *string  `json:"extraOverride,omitempty"`
	Closed        bool     `json:"closed"`
}

// NoService reports whether nothing is served on the day.
func (d DayMenu) NoService() bool {
	return d.Closed || len(d.Dishes) == 0
}

// WeeklyMenu is indexed by Weekday.
type WeeklyMenu [DaysPerWeek]DayMenu

type DayEntry struct {
	Weekday Weekday
	Menu    DayMenu
}

// Days returns the week in weekday order.
func (w WeeklyMenu) Days() []DayEntry {
	days := make([]DayEntry, 0, DaysPerWeek)
	for i, d := range w {
		days = append(days, DayEntry{Weekday: Weekday(i), Menu: d})
	}
	return days
}

type DinnerKind string

const (
	KindSoup DinnerKind = db.DINNER_KIND_SOUP
	KindMain DinnerKind = db.DINNER_KIND_MAIN
)

type ExtraCategory string

const (
	CategoryFiller   ExtraCategory = db.EXTRA_CATEGORY_FILLER
	CategoryBeverage ExtraCategory = db.EXTRA_CATEGORY_BEVERAGE
	CategorySalad    ExtraCategory = db.EXTRA_CATEGORY_SALAD
)
