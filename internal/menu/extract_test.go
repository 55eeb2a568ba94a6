package menu

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func loadDocument(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func loadFixture(t *testing.T) *goquery.Document {
	t.Helper()
	content, err := os.ReadFile("testdata/kantyna.html")
	require.NoError(t, err)
	return loadDocument(t, string(content))
}

func requireParseError(t *testing.T, err error, target error) *ParseError {
	t.Helper()
	require.ErrorIs(t, err, target)
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	return perr
}

func TestExtractRowsReference(t *testing.T) {
	first, second, err := ExtractRows(loadFixture(t))
	require.NoError(t, err)

	require.Len(t, first, 9)
	require.Len(t, second, 8)

	require.Equal(t, RawRow{"Zupa pomidorowa z ryżem", "Żurek z jajkiem", "Rosół z makaronem"}, first[0])
	require.Equal(t, RawRow{"Krupnik", "Barszcz czerwony", "nieczynne"}, second[0])

	// the duplicated blank rows collapse into one terminator
	require.True(t, first[5].Blank())
	require.Equal(t, RawRow{"ziemniaki / frytki", "ziemniaki", "ziemniaki / kasza gryczana"}, first[6])

	for _, row := range append(first, second...) {
		require.Len(t, row, DaysPerHalf)
		require.NotEqual(t, "czwartek", marker(row.FirstMeaningful()))
		require.NotEqual(t, sentinelMarker, marker(row.FirstMeaningful()))
	}
}

const menuTemplate = `<html><body>
<table class="nav"><tr><td>Kantyna</td></tr></table>
<table>
<tr><td>Jadłospis</td></tr>
<tr><td>Poniedziałek</td><td>Wtorek</td><td>Środa</td></tr>
%FIRST%
<tr><td>Czwartek</td><td>Piątek</td><td>Sobota</td></tr>
<tr><td>Krupnik</td><td>Barszcz</td><td>Rosół</td></tr>
<tr><td>Gulasz</td><td>Ryba</td><td>Pierogi</td></tr>
%SENTINEL%
</table>
</body></html>`

func renderMenu(first, sentinel string) string {
	markup := strings.ReplaceAll(menuTemplate, "%FIRST%", first)
	return strings.ReplaceAll(markup, "%SENTINEL%", sentinel)
}

const defaultFirstHalf = `<tr><td>Pomidorowa</td><td>Żurek</td><td>Ogórkowa</td></tr>
<tr><td>Schabowy</td><td>Stek</td><td>Pierogi</td></tr>`

const defaultSentinel = `<tr><td colspan="3">Przerwy obiadowe</td></tr>`

func TestExtractRowsIgnoresClassNames(t *testing.T) {
	markup := strings.ReplaceAll(renderMenu(defaultFirstHalf, defaultSentinel), `class="nav"`, `class="tabela-jadlospis"`)
	first, second, err := ExtractRows(loadDocument(t, markup))
	require.NoError(t, err)
	require.Equal(t, []RawRow{
		{"Pomidorowa", "Żurek", "Ogórkowa"},
		{"Schabowy", "Stek", "Pierogi"},
	}, first)
	require.Equal(t, []RawRow{
		{"Krupnik", "Barszcz", "Rosół"},
		{"Gulasz", "Ryba", "Pierogi"},
	}, second)
}

func TestExtractRowsSentinelNotFound(t *testing.T) {
	_, _, err := ExtractRows(loadDocument(t, renderMenu(defaultFirstHalf, "")))
	requireParseError(t, err, ErrSentinelNotFound)
}

func TestExtractRowsStopsAtSentinel(t *testing.T) {
	sentinel := defaultSentinel + `<tr><td>11:45</td><td>12:50</td><td>13:55</td></tr>`
	_, second, err := ExtractRows(loadDocument(t, renderMenu(defaultFirstHalf, sentinel)))
	require.NoError(t, err)
	require.Len(t, second, 2)
}

func TestExtractRowsSoupColumnCount(t *testing.T) {
	first := `<tr><td>Pomidorowa</td><td>Żurek</td></tr>
<tr><td>Schabowy</td><td>Stek</td><td>Pierogi</td></tr>`
	_, _, err := ExtractRows(loadDocument(t, renderMenu(first, defaultSentinel)))
	perr := requireParseError(t, err, ErrColumnCount)
	require.Equal(t, 0, perr.Half)
	require.Equal(t, 0, perr.Row)
}

func TestExtractRowsTooWide(t *testing.T) {
	first := `<tr><td>Pomidorowa</td><td>Żurek</td><td>Ogórkowa</td></tr>
<tr><td>Schabowy</td><td>Stek</td><td>Pierogi</td><td>Gulasz</td></tr>`
	_, _, err := ExtractRows(loadDocument(t, renderMenu(first, defaultSentinel)))
	perr := requireParseError(t, err, ErrColumnCount)
	require.Equal(t, 1, perr.Row)
}

func TestExtractRowsPadsAndExpandsColspan(t *testing.T) {
	first := `<tr><td>Pomidorowa</td><td colspan="2">Żurek</td></tr>
<tr><td>Schabowy</td></tr>`
	rows, _, err := ExtractRows(loadDocument(t, renderMenu(first, defaultSentinel)))
	require.NoError(t, err)
	require.Equal(t, []RawRow{
		{"Pomidorowa", "Żurek", "Żurek"},
		{"Schabowy", "", ""},
	}, rows)
}

func TestExtractRowsMissingMondayHeader(t *testing.T) {
	markup := strings.ReplaceAll(
		renderMenu(defaultFirstHalf, defaultSentinel),
		"<tr><td>Poniedziałek</td><td>Wtorek</td><td>Środa</td></tr>",
		"",
	)
	_, _, err := ExtractRows(loadDocument(t, markup))
	requireParseError(t, err, ErrDayHeaderNotFound)
}

func TestExtractRowsEmptySecondHalf(t *testing.T) {
	markup := `<table>
<tr><td>Poniedziałek</td><td>Wtorek</td><td>Środa</td></tr>
<tr><td>Pomidorowa</td><td>Żurek</td><td>Ogórkowa</td></tr>
<tr><td>Czwartek</td><td>Piątek</td><td>Sobota</td></tr>
<tr><td></td><td></td><td></td></tr>
<tr><td>Przerwy obiadowe:</td></tr>
</table>`
	_, _, err := ExtractRows(loadDocument(t, markup))
	perr := requireParseError(t, err, ErrEmptyHalf)
	require.Equal(t, 1, perr.Half)
}

func TestExtractRowsSkipsNestedTables(t *testing.T) {
	markup := `<table>
<tr><td>Poniedziałek</td><td>Wtorek</td><td>Środa</td></tr>
<tr><td>Pomidorowa</td><td>Żurek</td><td>Ogórkowa</td></tr>
<tr><td>Schabowy <table><tr><td>x</td><td>y</td><td>z</td><td>w</td></tr></table></td><td>Stek</td><td>Pierogi</td></tr>
<tr><td>Czwartek</td><td>Piątek</td><td>Sobota</td></tr>
<tr><td>Krupnik</td><td>Barszcz</td><td>Rosół</td></tr>
<tr><td>Przerwy obiadowe</td></tr>
</table>`
	first, _, err := ExtractRows(loadDocument(t, markup))
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Len(t, first[1], DaysPerHalf)
}
