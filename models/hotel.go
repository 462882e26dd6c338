package models

import "time"

// PageSize is the number of listings booking.com returns per result page.
const PageSize = 25

// SearchQuery describes one result page request. Everything except Offset
// stays fixed for the duration of a crawl.
type SearchQuery struct {
	Destination string
	CheckIn     time.Time
	CheckOut    time.Time
	PartySize   int
	Offset      int
}

// WithOffset returns a copy of q pointing at another result offset.
func (q SearchQuery) WithOffset(offset int) SearchQuery {
	q.Offset = offset
	return q
}

// ListingRecord holds one hotel entry from a search results page.
// Rating keeps the site's localized form ("8,7"); it is "" when missing.
// Optional fields are nil when the markup did not carry them.
type ListingRecord struct {
	Name    string        `json:"name"`
	Rating  string        `json:"rating"`
	Price   *string       `json:"price"`
	Image   *string       `json:"image"`
	Link    *string       `json:"link"`
	Details *DetailRecord `json:"details,omitempty"`
}

// DetailRecord holds the attributes read from a hotel's own page.
type DetailRecord struct {
	Coordinates            *Coordinates `json:"coordinates"`
	ImportantFacilities    []string     `json:"important_facilities"`
	NeighborhoodStructures []string     `json:"neighborhood_structures"`
	ServicesOffered        []string     `json:"services_offered"`

	Address        string          `json:"address,omitempty"`
	Stars          string          `json:"star,omitempty"`
	OpenDate       string          `json:"open_date,omitempty"`
	ExtendedRating []CategoryScore `json:"extended_rating,omitempty"`
	ReviewRating   []ReviewBucket  `json:"review_rating,omitempty"`
	Apartments     []Apartment     `json:"apartaments,omitempty"`
}

// Coordinates are kept as the raw strings found in the page.
type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// CategoryScore is one line of the per-category guest score block
// (staff, cleanliness, location...).
type CategoryScore struct {
	Category string `json:"category"`
	Score    string `json:"score"`
}

// ReviewBucket is one bar of the review score distribution.
type ReviewBucket struct {
	Label string `json:"label"`
	Count string `json:"count"`
}

// Apartment is one room offer from the availability table.
type Apartment struct {
	Type  string `json:"type"`
	Price string `json:"price"`
	Beds  string `json:"beds"`
}

// CrawlResult is the page-ordered output of a crawl.
type CrawlResult [][]ListingRecord

// Listings returns the number of listings across all pages.
func (r CrawlResult) Listings() int {
	n := 0
	for _, page := range r {
		n += len(page)
	}
	return n
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
