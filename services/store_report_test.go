package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-scraper/models"
)

// fakeReader serves a crawl result the way the hotel store would.
type fakeReader struct {
	result     models.CrawlResult
	cities     []string
	ratingsErr error
}

func (f *fakeReader) OpenDates(context.Context) ([]string, error) {
	return OpenDatesFromResult(f.result), nil
}

func (f *fakeReader) Ratings(context.Context) ([]string, error) {
	if f.ratingsErr != nil {
		return nil, f.ratingsErr
	}
	var out []string
	for _, page := range f.result {
		for _, l := range page {
			if l.Rating != "" {
				out = append(out, l.Rating)
			}
		}
	}
	return out, nil
}

func (f *fakeReader) HotelCoordinates(context.Context) ([]models.CoordinateRow, error) {
	return CoordinatesFromResult(f.result), nil
}

func (f *fakeReader) HotelsInCity(_ context.Context, city string) ([]models.CityHotelRow, error) {
	f.cities = append(f.cities, city)
	return []models.CityHotelRow{{Name: "Гостиница Москва", Score: "8,7", City: city}}, nil
}

func (f *fakeReader) FacilityRows(context.Context) ([]models.FacilityRow, error) {
	return FacilityRowsFromResult(f.result), nil
}

func (f *fakeReader) ApartmentPrices(_ context.Context, city string) ([]models.ApartmentPriceRow, error) {
	f.cities = append(f.cities, city)
	return ApartmentRowsFromResult(f.result), nil
}

func TestStoreReportDrawsEveryChart(t *testing.T) {
	r := newTestReporter(t)
	reader := &fakeReader{result: sampleResult()}

	require.NoError(t, r.StoreReport(context.Background(), reader, "Москва", "DisplayAllHotels"))

	assert.Equal(t, []string{"Москва", "Москва"}, reader.cities)
	for _, name := range []string{
		RatingChart, ScorePieChart, OpenYearChart, FacilitiesChart,
		"Prices_by_stars_Москва", "map_DisplayAllHotels",
	} {
		info, err := os.Stat(filepath.Join(r.dir, name+".html"))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	facilities, err := os.ReadFile(filepath.Join(r.dir, FacilitiesChart+".html"))
	require.NoError(t, err)
	assert.Contains(t, string(facilities), "Парковка")

	page, err := os.ReadFile(filepath.Join(r.dir, "map_DisplayAllHotels.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Гостиница Москва")
}

func TestStoreReportStopsOnReadError(t *testing.T) {
	r := newTestReporter(t)
	boom := errors.New("connection refused")
	reader := &fakeReader{result: sampleResult(), ratingsErr: boom}

	err := r.StoreReport(context.Background(), reader, "Москва", "DisplayAllHotels")
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(filepath.Join(r.dir, RatingChart+".html"))
	assert.True(t, os.IsNotExist(statErr))
}
