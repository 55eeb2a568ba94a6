package menu

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	sentinelMarker = "przerwy obiadowe"
	mondayMarker   = "poniedziałek"
	thursdayMarker = "czwartek"
)

// maxColspan bounds colspan expansion, nothing in the menu table spans
// further than one half-week block.
const maxColspan = DaysPerHalf

// marker lowercases a cell for comparison against the literal row markers,
// ignoring trailing punctuation like "Czwartek:".
func marker(cell string) string {
	cell = strings.ToLower(cell)
	return strings.TrimRight(cell, ":.- ")
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, td *goquery.Selection) {
		text := NormalizeCell(nodeText(td.Get(0)))

		span := 1
		if attr, ok := td.Attr("colspan"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(attr))
			if err == nil && n > 1 {
				span = min(n, maxColspan)
			}
		}
		for range span {
			cells = append(cells, text)
		}
	})
	return cells
}

// tableRows returns the rows that belong to table itself, rows of nested
// tables are skipped.
func tableRows(table *goquery.Selection) []RawRow {
	var rows []RawRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(table) {
			return
		}
		rows = append(rows, rowCells(tr))
	})
	return rows
}

func containsSentinel(rows []RawRow) bool {
	for _, row := range rows {
		if marker(row.FirstMeaningful()) == sentinelMarker {
			return true
		}
	}
	return false
}

// selectMenuRows picks the rows of the first table holding the sentinel row.
// Menu tables are recognized by their content, never by class names. When no
// single table holds the sentinel, every row of the document is used.
func selectMenuRows(doc *goquery.Document) []RawRow {
	var rows []RawRow
	found := false
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		candidate := tableRows(table)
		if containsSentinel(candidate) {
			rows = candidate
			found = true
			return false
		}
		return true
	})
	if found {
		return rows
	}

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, rowCells(tr))
	})
	return rows
}

type halfBlock struct {
	rows []RawRow
}

// add keeps a blank row only as the terminator of a non-empty run.
func (h *halfBlock) add(row RawRow) {
	if row.Blank() && (len(h.rows) == 0 || h.rows[len(h.rows)-1].Blank()) {
		return
	}
	h.rows = append(h.rows, row)
}

func (h *halfBlock) finish() []RawRow {
	rows := h.rows
	for len(rows) > 0 && rows[len(rows)-1].Blank() {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// validateHalf checks the column shape of a half-week block and pads narrow
// rows to DaysPerHalf columns.
func validateHalf(half int, rows []RawRow) error {
	if len(rows) == 0 {
		return newParseError(half, -1, ErrEmptyHalf)
	}
	if len(rows[0]) != DaysPerHalf {
		return newParseError(half, 0, ErrColumnCount)
	}
	for i, row := range rows {
		if len(row) > DaysPerHalf {
			return newParseError(half, i, ErrColumnCount)
		}
		for len(row) < DaysPerHalf {
			row = append(row, "")
		}
		rows[i] = row
	}
	return nil
}

// ExtractRows splits the menu table of doc into the Monday-Wednesday and
// Thursday-Saturday blocks.
//
// Rows up to and including the Monday header are page chrome, the Thursday
// header separates the blocks and the lunch break row ends the menu.
func ExtractRows(doc *goquery.Document) ([]RawRow, []RawRow, error) {
	rows := selectMenuRows(doc)

	var halves [2]halfBlock
	current := 0
	sawMonday := false
	sawSentinel := false

scan:
	for _, row := range rows {
		switch m := marker(row.FirstMeaningful()); {
		case m == sentinelMarker:
			sawSentinel = true
			break scan
		case m == mondayMarker && current == 0:
			halves[0] = halfBlock{}
			sawMonday = true
		case m == thursdayMarker && current == 0:
			current = 1
		default:
			halves[current].add(row)
		}
	}

	if !sawSentinel {
		return nil, nil, newParseError(-1, -1, ErrSentinelNotFound)
	}
	if !sawMonday {
		return nil, nil, newParseError(0, -1, ErrDayHeaderNotFound)
	}

	first := halves[0].finish()
	second := halves[1].finish()
	if err := validateHalf(0, first); err != nil {
		return nil, nil, err
	}
	if err := validateHalf(1, second); err != nil {
		return nil, nil, err
	}
	return first, second, nil
}
