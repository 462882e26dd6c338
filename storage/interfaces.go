package storage

import (
	"context"

	"booking-scraper/models"
)

// ResultWriter is the interface for exporting crawl output.
type ResultWriter interface {
	WriteResult(result models.CrawlResult) error
	Close() error
}

// HotelReader is the read side of the hotel store used by reports.
type HotelReader interface {
	OpenDates(ctx context.Context) ([]string, error)
	Ratings(ctx context.Context) ([]string, error)
	HotelCoordinates(ctx context.Context) ([]models.CoordinateRow, error)
	HotelsInCity(ctx context.Context, city string) ([]models.CityHotelRow, error)
	FacilityRows(ctx context.Context) ([]models.FacilityRow, error)
	ApartmentPrices(ctx context.Context, city string) ([]models.ApartmentPriceRow, error)
}

var (
	_ ResultWriter = (*CSVWriter)(nil)
	_ HotelReader  = (*HotelStore)(nil)
)
