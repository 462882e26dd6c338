package booking

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"booking-scraper/models"
)

// Field names an attribute that can be pulled out of booking.com markup.
type Field int

const (
	FieldName Field = iota
	FieldRating
	FieldPrice
	FieldImage
	FieldLink
	FieldImportantFacilities
	FieldNeighborhoodStructures
	FieldServicesOffered
	FieldAddress
	FieldStars
	FieldOpenDate
)

var (
	openDateRegexp = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	firstNumRegexp = regexp.MustCompile(`\d+`)
)

// Source is the set of lookups a piece of markup supports. Fields a source
// does not carry yield "" / false / nil instead of an error.
type Source interface {
	Text(f Field) (string, bool)
	List(f Field) []string
	Coordinates() (models.Coordinates, bool)
}

// tableSource is implemented by sources that carry the tabular hotel page
// blocks (room table, score breakdowns).
type tableSource interface {
	Apartments() []models.Apartment
	CategoryScores() []models.CategoryScore
	ReviewBuckets() []models.ReviewBucket
}

// ListingFragment is one hotel card of a search results page.
type ListingFragment struct {
	sel *goquery.Selection
}

// NewListingFragment wraps a card selection.
func NewListingFragment(sel *goquery.Selection) *ListingFragment {
	return &ListingFragment{sel: sel}
}

// Listings returns every hotel card on a results page.
func Listings(doc *goquery.Document) []*ListingFragment {
	var out []*ListingFragment
	doc.Find(ListingSelector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, NewListingFragment(s))
	})
	return out
}

func (l *ListingFragment) Text(f Field) (string, bool) {
	switch f {
	case FieldName:
		return firstText(l.sel, NameSelector)
	case FieldRating:
		return firstText(l.sel, RatingSelector)
	case FieldPrice:
		if v, ok := firstText(l.sel, PriceSelector); ok {
			return v, true
		}
		return firstText(l.sel, PriceFallbackSelector)
	case FieldImage:
		return firstAttr(l.sel, ImageSelector, "src")
	case FieldLink:
		return firstAttr(l.sel, LinkSelector, "href")
	}
	return "", false
}

func (l *ListingFragment) List(Field) []string { return nil }

func (l *ListingFragment) Coordinates() (models.Coordinates, bool) {
	return models.Coordinates{}, false
}

// DetailPage is a parsed hotel page.
type DetailPage struct {
	doc *goquery.Document
}

// NewDetailPage wraps a parsed hotel page.
func NewDetailPage(doc *goquery.Document) *DetailPage {
	return &DetailPage{doc: doc}
}

func (d *DetailPage) Text(f Field) (string, bool) {
	root := d.doc.Selection
	switch f {
	case FieldName:
		return firstText(root, TitleSelector)
	case FieldAddress:
		return firstText(root, AddressSelector)
	case FieldStars:
		title, ok := firstAttr(root, StarsSelector, "title")
		if !ok {
			return "", false
		}
		if n := firstNumRegexp.FindString(title); n != "" {
			return n, true
		}
		return "", false
	case FieldOpenDate:
		text, ok := firstText(root, DescriptionSelector)
		if !ok {
			return "", false
		}
		if date := openDateRegexp.FindString(text); date != "" {
			return date, true
		}
		return "", false
	}
	return "", false
}

func (d *DetailPage) List(f Field) []string {
	root := d.doc.Selection
	switch f {
	case FieldImportantFacilities:
		return allText(root, ImportantFacilitySelector)
	case FieldNeighborhoodStructures:
		return allText(root, NeighborhoodSelector)
	case FieldServicesOffered:
		return allText(root, ServicesSelector)
	}
	return nil
}

// Coordinates reads the "lat,lng" pair stored on the static map element.
func (d *DetailPage) Coordinates() (models.Coordinates, bool) {
	raw, ok := firstAttr(d.doc.Selection, MapSelector, MapCoordinatesAttr)
	if !ok {
		return models.Coordinates{}, false
	}
	lat, lng, found := strings.Cut(raw, ",")
	if !found {
		return models.Coordinates{}, false
	}
	return models.Coordinates{
		Latitude:  strings.TrimSpace(lat),
		Longitude: strings.TrimSpace(lng),
	}, true
}

func (d *DetailPage) Apartments() []models.Apartment {
	var out []models.Apartment
	d.doc.Find(RoomRowSelector).Each(func(_ int, row *goquery.Selection) {
		roomType, _ := firstText(row, RoomTypeSelector)
		price, _ := firstText(row, RoomPriceSelector)
		if roomType == "" && price == "" {
			return
		}
		occupancy, _ := firstText(row, RoomOccupancySelector)
		out = append(out, models.Apartment{
			Type:  roomType,
			Price: price,
			Beds:  firstNumRegexp.FindString(occupancy),
		})
	})
	return out
}

func (d *DetailPage) CategoryScores() []models.CategoryScore {
	var out []models.CategoryScore
	d.doc.Find(SubscoreSelector).Each(func(_ int, s *goquery.Selection) {
		category, ok := firstText(s, SubscoreTitleSelector)
		if !ok {
			return
		}
		score, _ := firstText(s, SubscoreValueSelector)
		out = append(out, models.CategoryScore{Category: category, Score: score})
	})
	return out
}

func (d *DetailPage) ReviewBuckets() []models.ReviewBucket {
	var out []models.ReviewBucket
	d.doc.Find(ReviewBucketSelector).Each(func(_ int, s *goquery.Selection) {
		label, ok := firstText(s, ReviewBucketNameSelector)
		if !ok {
			return
		}
		count, _ := firstText(s, ReviewBucketValueSelector)
		out = append(out, models.ReviewBucket{Label: label, Count: count})
	})
	return out
}

// ExtractListing builds a ListingRecord from src. Missing fields stay at
// their defaults; Details is filled in by the crawler.
func ExtractListing(src Source) models.ListingRecord {
	name, _ := src.Text(FieldName)
	rating, _ := src.Text(FieldRating)
	price, _ := src.Text(FieldPrice)
	image, _ := src.Text(FieldImage)
	link, _ := src.Text(FieldLink)

	return models.ListingRecord{
		Name:   name,
		Rating: rating,
		Price:  models.StringPtr(price),
		Image:  models.StringPtr(image),
		Link:   models.StringPtr(link),
	}
}

// ExtractDetail builds a DetailRecord from src.
func ExtractDetail(src Source) models.DetailRecord {
	rec := models.DetailRecord{
		ImportantFacilities:    nonNil(src.List(FieldImportantFacilities)),
		NeighborhoodStructures: nonNil(src.List(FieldNeighborhoodStructures)),
		ServicesOffered:        nonNil(src.List(FieldServicesOffered)),
	}
	if c, ok := src.Coordinates(); ok {
		rec.Coordinates = &c
	}
	rec.Address, _ = src.Text(FieldAddress)
	rec.Stars, _ = src.Text(FieldStars)
	rec.OpenDate, _ = src.Text(FieldOpenDate)

	if ts, ok := src.(tableSource); ok {
		rec.Apartments = ts.Apartments()
		rec.ExtendedRating = ts.CategoryScores()
		rec.ReviewRating = ts.ReviewBuckets()
	}
	return rec
}

func firstText(sel *goquery.Selection, selector string) (string, bool) {
	found := sel.Find(selector)
	if found.Length() == 0 {
		return "", false
	}
	text := normaliseText(found.First().Text())
	return text, text != ""
}

func firstAttr(sel *goquery.Selection, selector, attr string) (string, bool) {
	val, ok := sel.Find(selector).First().Attr(attr)
	if !ok {
		return "", false
	}
	val = strings.TrimSpace(val)
	return val, val != ""
}

func allText(sel *goquery.Selection, selector string) []string {
	var out []string
	sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := normaliseText(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// normaliseText composes the text to NFC, strips leading/trailing
// whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
