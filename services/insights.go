package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"booking-scraper/models"
	"booking-scraper/utils"
)

const topN = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises a crawl result.
func (s *InsightService) Generate(result models.CrawlResult) *models.InsightReport {
	report := &models.InsightReport{Pages: len(result)}

	type rated struct {
		listing models.ListingRecord
		rating  float64
	}
	var ratedListings []rated

	for _, page := range result {
		for _, l := range page {
			report.TotalListings++
			if l.Details != nil {
				report.WithDetails++
			}
			if v, err := ParseRating(l.Rating); err == nil {
				ratedListings = append(ratedListings, rated{l, v})
			}
		}
	}

	if len(ratedListings) > 0 {
		report.RatedListings = len(ratedListings)
		report.MinRating = ratedListings[0].rating
		report.MaxRating = ratedListings[0].rating
		var total float64
		ratings := make([]float64, 0, len(ratedListings))
		for _, r := range ratedListings {
			total += r.rating
			report.MinRating = min(report.MinRating, r.rating)
			report.MaxRating = max(report.MaxRating, r.rating)
			ratings = append(ratings, r.rating)
		}
		report.AverageRating = round2(total / float64(len(ratedListings)))
		report.Scores = ScoreGroups(ratings)
	}

	sort.SliceStable(ratedListings, func(i, j int) bool {
		return ratedListings[i].rating > ratedListings[j].rating
	})
	for i := 0; i < len(ratedListings) && i < topN; i++ {
		report.TopRated = append(report.TopRated, ratedListings[i].listing)
	}

	markers, skipped := MapMarkers(CoordinatesFromResult(result))
	report.MarkersOnMap = len(markers)
	report.SkippedMarkers = skipped
	if skipped > 0 {
		s.logger.Debug("[insights] %d hotels skipped on the map, coordinates did not parse", skipped)
	}

	facilities := FacilityFrequency(FacilityRowsFromResult(result))
	if len(facilities) > topN {
		facilities = facilities[:topN]
	}
	report.TopFacilities = facilities

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(os.Stdout, r)
}

// Fprint writes the console summary to w.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 BOOKING SCRAPE INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Result pages           : \033[1m%d\033[0m\n", r.Pages)
	fmt.Fprintf(w, "  Total listings scraped : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  With hotel page        : \033[1m%d\033[0m\n", r.WithDetails)
	fmt.Fprintf(w, "  Hotels on map          : \033[1m%d\033[0m (%d skipped)\n", r.MarkersOnMap, r.SkippedMarkers)
	fmt.Fprintln(w)

	// Ratings
	fmt.Fprintf(w, "\033[1;33m  Guest Ratings\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.RatedListings > 0 {
		fmt.Fprintf(w, "  Rated listings : \033[1m%d\033[0m\n", r.RatedListings)
		fmt.Fprintf(w, "  Average rating : \033[1;32m%.2f\033[0m\n", r.AverageRating)
		fmt.Fprintf(w, "  Minimum rating : \033[1;32m%.1f\033[0m\n", r.MinRating)
		fmt.Fprintf(w, "  Maximum rating : \033[1;32m%.1f\033[0m\n", r.MaxRating)
		fmt.Fprintf(w, "  [1-5) %d   [5-8) %d   [8-10] %d\n",
			len(r.Scores.Low), len(r.Scores.Medium), len(r.Scores.High))
	} else {
		fmt.Fprintf(w, "  No rating data available\n")
	}
	fmt.Fprintln(w)

	// ── TOP 5 HIGHEST RATED ──────────────────────────────────────────────
	fmt.Fprintf(w, "\033[1;33m  Top %d Highest Rated Hotels\033[0m\n", topN)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated listings found\n")
	} else {
		for i, l := range r.TopRated {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%s ★\033[0m\n",
				i+1, truncate(l.Name, 38), l.Rating)
		}
	}
	fmt.Fprintln(w)

	// Facilities
	fmt.Fprintf(w, "\033[1;33m  Most Common Facilities\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopFacilities) == 0 {
		fmt.Fprintf(w, "  No facility data\n")
	} else {
		for _, f := range r.TopFacilities {
			fmt.Fprintf(w, "  %-30s (%d)\n", truncate(f.Facility, 28), f.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
