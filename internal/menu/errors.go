package menu

import (
	"errors"
	"fmt"
)

var (
	ErrBadStatus             = errors.New("unexpected response status")
	ErrSentinelNotFound      = errors.New("lunch break sentinel row not found")
	ErrDayHeaderNotFound     = errors.New("monday header row not found")
	ErrEmptyHalf             = errors.New("half-week block has no rows")
	ErrColumnCount           = errors.New("unexpected column count")
	ErrOverrideSyntax        = errors.New("unrecognized override syntax")
	ErrStandardExtrasMissing = errors.New("standard extras missing")
	ErrInvalidWeekday        = errors.New("weekday out of range")
)

// FetchError is returned when the menu page could not be retrieved.
type FetchError struct {
	Url string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch menu %s: %v", e.Url, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the page does not have the expected structure.
// Half and Row are -1 when unknown.
type ParseError struct {
	Half int
	Row  int
	Err  error
}

func newParseError(half, row int, err error) *ParseError {
	return &ParseError{Half: half, Row: row, Err: err}
}

func (e *ParseError) Error() string {
	switch {
	case e.Half >= 0 && e.Row >= 0:
		return fmt.Sprintf("parse menu: half %d, row %d: %v", e.Half, e.Row, e.Err)
	case e.Half >= 0:
		return fmt.Sprintf("parse menu: half %d: %v", e.Half, e.Err)
	case e.Row >= 0:
		return fmt.Sprintf("parse menu: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("parse menu: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const (
	StepValidate           = "validate"
	StepListStandardExtras = "list-standard-extras"
	StepInsertDinners      = "insert-dinners"
	StepInsertExtra        = "insert-extra"
	StepLinkExtras         = "link-extras"
	StepUpsertDayStatus    = "upsert-day-status"
	StepUpsertMenuInfo     = "upsert-menu-info"
)

// PersistenceError is returned when a store round-trip of a synchronization
// step fails. Weekday is -1 for steps that are not tied to a day.
type PersistenceError struct {
	Step    string
	Weekday int
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Weekday >= 0 {
		return fmt.Sprintf("sync menu: %s (%s): %v", e.Step, Weekday(e.Weekday), e.Err)
	}
	return fmt.Sprintf("sync menu: %s: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
