package booking

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"booking-scraper/models"
)

// Rounding decides how the result count is turned into a page count.
type Rounding int

const (
	// RoundUp never drops a partially filled final page.
	RoundUp Rounding = iota
	// RoundNearest reproduces historical output: it rounds half to even and
	// may skip the last page or request an empty one.
	RoundNearest
)

// ParseRounding maps the PAGE_ROUNDING setting to a Rounding.
func ParseRounding(s string) Rounding {
	if s == "round" {
		return RoundNearest
	}
	return RoundUp
}

// FirstPage decides what becomes of the offset 0 page fetched to count
// the results.
type FirstPage int

const (
	// SkipFirstPage only counts on the offset 0 page and crawls offsets
	// 25, 50 ... count×25, as historical runs did.
	SkipFirstPage FirstPage = iota
	// ReuseFirstPage crawls offsets 0 ... (count-1)×25 and takes page 0
	// from the count fetch.
	ReuseFirstPage
)

// ParseFirstPage maps the FIRST_PAGE setting to a FirstPage.
func ParseFirstPage(s string) FirstPage {
	if s == "reuse" {
		return ReuseFirstPage
	}
	return SkipFirstPage
}

// PageOffset returns the result offset of page index i.
func (m FirstPage) PageOffset(i int) int {
	if m == ReuseFirstPage {
		return i * models.PageSize
	}
	return (i + 1) * models.PageSize
}

var digitsRegexp = regexp.MustCompile(`\d+`)

// BuildURL returns the search results URL for q. Dates are not checked
// against each other.
func BuildURL(q models.SearchQuery) string {
	return fmt.Sprintf(searchURLTemplate,
		int(q.CheckIn.Month()), q.CheckIn.Day(), q.CheckIn.Year(),
		int(q.CheckOut.Month()), q.CheckOut.Day(), q.CheckOut.Year(),
		q.PartySize,
		url.QueryEscape(q.Destination),
		q.Offset,
	)
}

// TotalResults reads the result count from the last results header of the
// first page. ok is false when the header is missing or carries no number.
func TotalResults(doc *goquery.Document) (total int, ok bool) {
	headers := doc.Find(ResultsHeaderSelector)
	if headers.Length() == 0 {
		return 0, false
	}

	text := strings.NewReplacer("\u00a0", "", "\u202f", "").Replace(headers.Last().Text())
	match := digitsRegexp.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CountPages returns how many result pages to crawl, 0 meaning no results.
func CountPages(doc *goquery.Document, rounding Rounding) int {
	total, ok := TotalResults(doc)
	if !ok || total <= 0 {
		return 0
	}

	pages := float64(total) / models.PageSize
	if rounding == RoundNearest {
		return int(math.RoundToEven(pages))
	}
	return int(math.Ceil(pages))
}
