package menu

import (
	"regexp"
	"strings"
	"unicode"

	"canteen-backend/internal/db"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// prices are in grosze
const (
	SoupPrice        int64 = 600
	MainPrice        int64 = 1800
	OverridePrice    int64 = 0
	DefaultMaxSupply int64 = 100
)

// PriceFor returns the fixed price tier of a dinner kind.
func PriceFor(kind DinnerKind) int64 {
	if kind == KindSoup {
		return SoupPrice
	}
	return MainPrice
}

// DefaultStandardExtras are seeded when the store has no extras of a category.
var DefaultStandardExtras = []db.InsertExtraParams{
	{Name: "ziemniaki", Price: 0, Image: ImageSlug("ziemniaki"), Category: string(CategoryFiller)},
	{Name: "kompot", Price: 0, Image: ImageSlug("kompot"), Category: string(CategoryBeverage)},
	{Name: "surówka", Price: 0, Image: ImageSlug("surówka"), Category: string(CategorySalad)},
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// polish ł has no canonical decomposition
var strokeReplacer = strings.NewReplacer("ł", "l", "Ł", "l")

// ImageSlug derives the image reference of a dish from its name,
// "Żurek z jajkiem" becomes "zurek-z-jajkiem.jpg".
func ImageSlug(name string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	slug, _, err := transform.String(stripMarks, strokeReplacer.Replace(name))
	if err != nil {
		slug = name
	}
	slug = slugInvalid.ReplaceAllString(strings.ToLower(slug), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "dish"
	}
	return slug + ".jpg"
}
