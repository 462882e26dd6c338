package services

import (
	"context"
	"fmt"
	"sort"

	"booking-scraper/models"
	"booking-scraper/storage"
)

// FacilityChartLimit is how many facilities the facilities chart shows.
const FacilityChartLimit = 20

// StoreReport redraws every chart and the hotel map from what the store
// holds across all ingested crawls. Price charts are limited to city.
func (r *Reporter) StoreReport(ctx context.Context, store storage.HotelReader, city, mapName string) error {
	scores, err := store.Ratings(ctx)
	if err != nil {
		return fmt.Errorf("store report: ratings: %w", err)
	}
	ratings := RatingsFromStrings(scores)
	if _, err := r.RatingHistogram(RatingHistogram(ratings)); err != nil {
		return err
	}
	if _, err := r.ScorePie(ScoreGroups(ratings)); err != nil {
		return err
	}

	dates, err := store.OpenDates(ctx)
	if err != nil {
		return fmt.Errorf("store report: open dates: %w", err)
	}
	if _, err := r.OpeningYears(OpeningYears(dates)); err != nil {
		return err
	}

	facilities, err := store.FacilityRows(ctx)
	if err != nil {
		return fmt.Errorf("store report: facilities: %w", err)
	}
	if _, err := r.Facilities(FacilityFrequency(facilities), FacilityChartLimit); err != nil {
		return err
	}
	r.logFacilitiesByStars(FacilityFrequencyByStars(facilities))

	rows, err := store.ApartmentPrices(ctx, city)
	if err != nil {
		return fmt.Errorf("store report: prices: %w", err)
	}
	if summary, err := CityPrices(rows); err != nil {
		r.logger.Warn("[reporter] City prices skipped: %v", err)
	} else {
		r.logger.Info("[reporter] %s prices: min %d | avg-min %d | avg %d | avg-max %d | max %d (%d hotels)",
			city, summary.MinPrice, summary.AvgMin, summary.AvgPrice, summary.AvgMax, summary.MaxPrice, summary.Hotels)
	}
	if byStars, err := CityPricesByStars(rows); err != nil {
		r.logger.Warn("[reporter] City prices by stars skipped: %v", err)
	} else if _, err := r.PricesByStars(city, byStars); err != nil {
		return err
	}

	inCity, err := store.HotelsInCity(ctx, city)
	if err != nil {
		return fmt.Errorf("store report: hotels in %s: %w", city, err)
	}
	r.logger.Info("[reporter] %d rated hotels stored for %s", len(inCity), city)

	coords, err := store.HotelCoordinates(ctx)
	if err != nil {
		return fmt.Errorf("store report: coordinates: %w", err)
	}
	markers, skipped := MapMarkers(coords)
	if skipped > 0 {
		r.logger.Debug("[reporter] %d stored hotels without usable coordinates", skipped)
	}
	if _, err := r.Map(mapName, markers); err != nil {
		return err
	}
	return nil
}

func (r *Reporter) logFacilitiesByStars(byStars map[string]models.FacilityStats) {
	stars := make([]string, 0, len(byStars))
	for star := range byStars {
		stars = append(stars, star)
	}
	sort.Strings(stars)

	for _, star := range stars {
		stats := byStars[star]
		top := sortedFacilities(stats.Counts)
		if len(top) == 0 {
			continue
		}
		r.logger.Info("[reporter] %s stars: %d hotels, most common facility %s (%d)",
			star, stats.Hotels, top[0].Facility, top[0].Count)
	}
}
