package menu

import (
	"strings"
)

// continuationPrefixes start a cell that continues the dish above it
// ("stek" + "po tatarsku").
var continuationPrefixes = []string{
	"po ",
	"i ",
	"oraz ",
	"a'la ",
	"à la ",
	"w sosie ",
}

var closedMarkers = []string{
	"nieczynne",
	"nieczynna",
	"zamknięte",
}

// universalSideRows is the number of trailing side rows (beverage, salad)
// that never carry an override.
const universalSideRows = 2

// overrideCandidateRows is how many side rows above the universal ones are
// searched for an override.
const overrideCandidateRows = 3

const overrideSeparator = "/"

func isContinuation(cell string) bool {
	lower := strings.ToLower(cell)
	for _, prefix := range continuationPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func isClosed(cell string) bool {
	lower := marker(cell)
	for _, m := range closedMarkers {
		if lower == m {
			return true
		}
	}
	return false
}

// BuildHalf rebuilds the three day menus of a half-week block. Row 0 holds
// the soups, the following rows up to the first blank row hold dishes and
// the rows after it hold side items.
func BuildHalf(half []RawRow) ([DaysPerHalf]DayMenu, error) {
	var days [DaysPerHalf]DayMenu

	if len(half) == 0 {
		return days, newParseError(-1, -1, ErrEmptyHalf)
	}
	for i, row := range half {
		if len(row) > DaysPerHalf || (i == 0 && len(row) != DaysPerHalf) {
			return days, newParseError(-1, i, ErrColumnCount)
		}
	}

	for col, soup := range half[0] {
		soup = strings.TrimSpace(soup)
		if isClosed(soup) {
			days[col].Closed = true
			continue
		}
		days[col].Soup = soup
	}

	r := 1
	for ; r < len(half) && !half[r].Blank(); r++ {
		for col, cell := range half[r] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if isClosed(cell) {
				days[col].Closed = true
				continue
			}

			dishes := days[col].Dishes
			if isContinuation(cell) && len(dishes) > 0 {
				last := strings.TrimSpace(dishes[len(dishes)-1])
				dishes[len(dishes)-1] = last + " " + cell
				continue
			}
			days[col].Dishes = append(dishes, cell)
		}
	}

	var side []int
	for i := r + 1; i < len(half); i++ {
		if !half[i].Blank() {
			side = append(side, i)
		}
	}
	err := applyOverrides(&days, half, side)
	if err != nil {
		return days, err
	}

	for col := range days {
		if days[col].Closed {
			days[col] = DayMenu{Closed: true}
		}
	}
	return days, nil
}

// applyOverrides reads the day-specific filler from the side rows, walking
// backward from above the universal rows. The first cell of a column that
// contains the separator decides the override of that day.
func applyOverrides(days *[DaysPerHalf]DayMenu, half []RawRow, side []int) error {
	end := len(side) - universalSideRows
	if end <= 0 {
		return nil
	}
	start := max(0, end-overrideCandidateRows)

	for col := range days {
		for i := end - 1; i >= start; i-- {
			rowIdx := side[i]
			if col >= len(half[rowIdx]) {
				continue
			}
			override, ok, err := parseOverride(half[rowIdx][col])
			if err != nil {
				return newParseError(-1, rowIdx, err)
			}
			if !ok {
				continue
			}
			if override != "" {
				days[col].ExtraOverride = &override
			}
			break
		}
	}
	return nil
}

// parseOverride splits "ziemniaki / frytki" into the override "frytki", ok
// is false when the cell has no separator.
func parseOverride(cell string) (string, bool, error) {
	parts := strings.Split(cell, overrideSeparator)
	switch len(parts) {
	case 1:
		return "", false, nil
	case 2:
		return strings.TrimSpace(parts[1]), true, nil
	}
	return "", false, ErrOverrideSyntax
}
