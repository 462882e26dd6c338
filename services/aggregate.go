package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mmcloughlin/geohash"

	"booking-scraper/models"
)

const (
	histogramBins = 100
	ratingMax     = 10.0

	// OtherStars is the price bucket for hotels without a 1-5 star category.
	OtherStars = "other"
	// NoStars is the facility bucket for hotels without a star category.
	NoStars = "-"

	closedFacility = "Временно не работает"
)

// StarBuckets is the fixed order of star price buckets.
var StarBuckets = []string{OtherStars, "1", "2", "3", "4", "5"}

// RatingsFromResult parses every listing rating, skipping blanks and
// unparseable values.
func RatingsFromResult(result models.CrawlResult) []float64 {
	var raw []string
	for _, page := range result {
		for _, l := range page {
			raw = append(raw, l.Rating)
		}
	}
	return RatingsFromStrings(raw)
}

// RatingsFromStrings parses raw scores, skipping blanks and unparseable values.
func RatingsFromStrings(raw []string) []float64 {
	out := make([]float64, 0, len(raw))
	for _, s := range raw {
		if v, err := ParseRating(s); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// RatingHistogram counts ratings in 100 equal bins over [0, 10]. The last
// bin is closed so a perfect 10 is counted. Out of range values are ignored.
func RatingHistogram(ratings []float64) []models.HistogramBin {
	width := ratingMax / histogramBins
	bins := make([]models.HistogramBin, histogramBins)
	for i := range bins {
		bins[i].Low = round2(float64(i) * width)
		bins[i].High = round2(float64(i+1) * width)
	}

	for _, r := range ratings {
		if r < 0 || r > ratingMax {
			continue
		}
		i := int(math.Floor(r/width + 1e-9))
		if i >= histogramBins {
			i = histogramBins - 1
		}
		bins[i].Count++
	}
	return bins
}

// ScoreGroups splits ratings into [1, 5), [5, 8) and [8, 10].
func ScoreGroups(ratings []float64) models.ScoreGroups {
	var g models.ScoreGroups
	for _, r := range ratings {
		switch {
		case r >= 1 && r < 5:
			g.Low = append(g.Low, r)
		case r >= 5 && r < 8:
			g.Medium = append(g.Medium, r)
		case r >= 8 && r <= 10:
			g.High = append(g.High, r)
		}
	}
	return g
}

// OpeningYears counts hotels per registration year, ascending. Empty and
// malformed dates are skipped.
func OpeningYears(dates []string) []models.YearCount {
	counts := make(map[int]int)
	for _, d := range dates {
		year, err := ParseOpenYear(d)
		if err != nil {
			continue
		}
		counts[year]++
	}

	out := make([]models.YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, models.YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// OpenDatesFromResult returns the open date of every listing with details.
func OpenDatesFromResult(result models.CrawlResult) []string {
	var out []string
	for _, page := range result {
		for _, l := range page {
			if l.Details != nil {
				out = append(out, l.Details.OpenDate)
			}
		}
	}
	return out
}

// FacilityLabel folds a raw facility name onto its canonical label.
// ok is false for blanks and temporarily closed facilities.
func FacilityLabel(raw string) (label string, ok bool) {
	f := strings.TrimSpace(strings.ReplaceAll(raw, "\n", ""))
	if f == "" || strings.Contains(f, closedFacility) {
		return "", false
	}

	switch {
	case strings.Contains(f, "фитнес-центр"), strings.Contains(f, "Фитнес-центр"):
		return "Фитнес-центр", true
	case strings.Contains(f, "Парковка"), strings.Contains(f, "парковка"):
		return "Парковка", true
	case strings.Contains(f, "завтрак"):
		return "Завтрак", true
	case strings.Contains(f, "Wi-Fi"):
		return "Wi-Fi", true
	case strings.Contains(f, "бассейн"):
		return "Бассейн", true
	}
	return f, true
}

// FacilityRowsFromResult returns one comma-joined facility block per
// listing with details, as the store keeps them.
func FacilityRowsFromResult(result models.CrawlResult) []models.FacilityRow {
	var out []models.FacilityRow
	for _, page := range result {
		for _, l := range page {
			if l.Details == nil || len(l.Details.ImportantFacilities) == 0 {
				continue
			}
			out = append(out, models.FacilityRow{
				Facilities: strings.Join(l.Details.ImportantFacilities, ","),
				Star:       l.Details.Stars,
			})
		}
	}
	return out
}

// FacilityFrequency counts canonical facility labels, most frequent first.
func FacilityFrequency(rows []models.FacilityRow) []models.FacilityCount {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, raw := range strings.Split(row.Facilities, ",") {
			if label, ok := FacilityLabel(raw); ok {
				counts[label]++
			}
		}
	}
	return sortedFacilities(counts)
}

// FacilityFrequencyByStars counts canonical facility labels per star
// category. Hotels without a category are grouped under NoStars.
func FacilityFrequencyByStars(rows []models.FacilityRow) map[string]models.FacilityStats {
	out := make(map[string]models.FacilityStats)
	for _, row := range rows {
		star := strings.TrimSpace(row.Star)
		if star == "" {
			star = NoStars
		}

		stats, ok := out[star]
		if !ok {
			stats = models.FacilityStats{Counts: make(map[string]int)}
		}
		for _, raw := range strings.Split(row.Facilities, ",") {
			if label, ok := FacilityLabel(raw); ok {
				stats.Counts[label]++
			}
		}
		stats.Hotels++
		out[star] = stats
	}
	return out
}

func sortedFacilities(counts map[string]int) []models.FacilityCount {
	out := make([]models.FacilityCount, 0, len(counts))
	for f, n := range counts {
		out = append(out, models.FacilityCount{Facility: f, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Facility < out[j].Facility
	})
	return out
}

// ApartmentRowsFromResult flattens the apartment offers of every listing.
func ApartmentRowsFromResult(result models.CrawlResult) []models.ApartmentPriceRow {
	var out []models.ApartmentPriceRow
	for _, page := range result {
		for _, l := range page {
			if l.Details == nil {
				continue
			}
			for _, a := range l.Details.Apartments {
				out = append(out, models.ApartmentPriceRow{
					HotelName: l.Name,
					Price:     a.Price,
					Beds:      a.Beds,
					Star:      l.Details.Stars,
				})
			}
		}
	}
	return out
}

type hotelPrices struct {
	star  string
	min   int
	max   int
	sum   int
	count int
}

// groupPrices folds apartment rows per hotel, in first-seen order.
func groupPrices(rows []models.ApartmentPriceRow) ([]*hotelPrices, error) {
	byName := make(map[string]*hotelPrices)
	var order []*hotelPrices

	for _, row := range rows {
		price, err := ParsePrice(row.Price)
		if err != nil {
			return nil, fmt.Errorf("hotel %q: %w", row.HotelName, err)
		}

		h, ok := byName[row.HotelName]
		if !ok {
			h = &hotelPrices{min: price, max: price}
			byName[row.HotelName] = h
			order = append(order, h)
		}
		h.min = min(h.min, price)
		h.max = max(h.max, price)
		h.sum += price
		h.count++
		h.star = starBucket(row.Star)
	}
	return order, nil
}

// CityPrices summarises apartment prices of one city's hotels. Averages of
// per-hotel minimum and maximum are taken over hotels, the overall average
// over apartments.
func CityPrices(rows []models.ApartmentPriceRow) (models.CityPriceSummary, error) {
	hotels, err := groupPrices(rows)
	if err != nil {
		return models.CityPriceSummary{}, err
	}
	if len(hotels) == 0 {
		return models.CityPriceSummary{}, nil
	}

	s := models.CityPriceSummary{Hotels: len(hotels), MinPrice: hotels[0].min, MaxPrice: hotels[0].max}
	sum, sumMin, sumMax := 0, 0, 0
	for _, h := range hotels {
		s.MinPrice = min(s.MinPrice, h.min)
		s.MaxPrice = max(s.MaxPrice, h.max)
		s.Apartments += h.count
		sum += h.sum
		sumMin += h.min
		sumMax += h.max
	}

	s.AvgPrice = roundInt(float64(sum) / float64(s.Apartments))
	s.AvgMin = roundInt(float64(sumMin) / float64(s.Hotels))
	s.AvgMax = roundInt(float64(sumMax) / float64(s.Hotels))
	return s, nil
}

// CityPricesByStars summarises apartment prices per star bucket, in
// StarBuckets order. Buckets without apartments are left out.
func CityPricesByStars(rows []models.ApartmentPriceRow) ([]models.StarPriceSummary, error) {
	hotels, err := groupPrices(rows)
	if err != nil {
		return nil, err
	}

	var out []models.StarPriceSummary
	for _, star := range StarBuckets {
		s := models.StarPriceSummary{Star: star}
		sum := 0
		for _, h := range hotels {
			if h.star != star {
				continue
			}
			if s.Apartments == 0 {
				s.MinPrice, s.MaxPrice = h.min, h.max
			}
			s.MinPrice = min(s.MinPrice, h.min)
			s.MaxPrice = max(s.MaxPrice, h.max)
			s.Apartments += h.count
			sum += h.sum
		}
		if s.Apartments == 0 {
			continue
		}

		s.AvgPrice = round2(float64(sum) / float64(s.Apartments))
		s.Range = priceRange(s.MinPrice, s.MaxPrice, s.AvgPrice)
		out = append(out, s)
	}
	return out, nil
}

// priceRange shows min and max as a percentage of avg. Free offers make
// the average zero, which has no meaningful range.
func priceRange(minPrice, maxPrice int, avg float64) string {
	if avg == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f%% - %.2f%%", float64(minPrice)/avg*100, float64(maxPrice)/avg*100)
}

func starBucket(raw string) string {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 5 {
		return OtherStars
	}
	return strconv.Itoa(n)
}

// CoordinatesFromResult returns the name and raw coordinates of every
// listing whose hotel page carried a map.
func CoordinatesFromResult(result models.CrawlResult) []models.CoordinateRow {
	var out []models.CoordinateRow
	for _, page := range result {
		for _, l := range page {
			if l.Details == nil || l.Details.Coordinates == nil {
				continue
			}
			out = append(out, models.CoordinateRow{
				Name:      l.Name,
				Latitude:  l.Details.Coordinates.Latitude,
				Longitude: l.Details.Coordinates.Longitude,
			})
		}
	}
	return out
}

// MapMarkers converts coordinate rows to markers. Rows that do not parse
// are skipped and counted.
func MapMarkers(rows []models.CoordinateRow) (markers []models.MapMarker, skipped int) {
	for _, row := range rows {
		lat, lng, err := ParseCoordinates(row.Latitude, row.Longitude)
		if err != nil {
			skipped++
			continue
		}
		markers = append(markers, models.MapMarker{
			Name:      row.Name,
			Latitude:  lat,
			Longitude: lng,
			Geohash:   geohash.Encode(lat, lng),
		})
	}
	return markers, skipped
}

func round2(f float64) float64 {
	return math.RoundToEven(f*100) / 100
}

func roundInt(f float64) int {
	return int(math.RoundToEven(f))
}
