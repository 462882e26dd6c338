package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-scraper/config"
	"booking-scraper/models"
	"booking-scraper/services"
	"booking-scraper/storage"
	"booking-scraper/utils"
)

func testResult() models.CrawlResult {
	return models.CrawlResult{{
		{
			Name:   "Гостиница Москва",
			Rating: "8,7",
			Link:   models.StringPtr("/hotel/ru/moskva.ru.html"),
			Details: &models.DetailRecord{
				Coordinates:         &models.Coordinates{Latitude: "55.75", Longitude: "37.61"},
				ImportantFacilities: []string{"Платная парковка"},
				Stars:               "5",
				OpenDate:            "12/03/2011",
				Apartments:          []models.Apartment{{Type: "Стандартный", Price: "5 000 руб.", Beds: "1"}},
			},
		},
		{Name: "Без ссылки", Rating: "7,1"},
	}}
}

type fakeWriter struct {
	err    error
	closed bool
}

func (f *fakeWriter) WriteResult(models.CrawlResult) error { return f.err }

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestWriteResultClosesWriter(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, writeResult(w, testResult()))
	assert.True(t, w.closed)

	boom := errors.New("disk full")
	w = &fakeWriter{err: boom}
	assert.ErrorIs(t, writeResult(w, testResult()), boom)
	assert.True(t, w.closed, "closed on failure too")
}

func TestSyncStoreReportsFromStore(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Destination: "Москва",
		MapName:     "DisplayAllHotels",
		DBDriver:    storage.DriverSQLite,
		DBDSN:       filepath.Join(dir, "hotels.db"),
	}
	logger := utils.NewDiscardLogger()
	reporter, err := services.NewReporter(filepath.Join(dir, "Charts"), logger)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, syncStore(ctx, reporter, cfg, logger, testResult()))
	require.NoError(t, syncStore(ctx, reporter, cfg, logger, testResult()), "a second run ingests nothing new")

	for _, name := range []string{services.RatingChart, services.FacilitiesChart, "Prices_by_stars_Москва", "map_DisplayAllHotels"} {
		_, err := os.Stat(filepath.Join(dir, "Charts", name+".html"))
		assert.NoError(t, err, name)
	}

	store, err := storage.OpenHotelStore(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	require.NoError(t, err)
	defer store.Close()
	hotels, err := store.Hotels(ctx)
	require.NoError(t, err)
	assert.Len(t, hotels, 2)
}
