package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"booking-scraper/models"
)

// CSVWriter exports a crawl result as one row per listing.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"page", "name", "rating", "price", "image", "link",
		"latitude", "longitude", "star", "open_date", "important_facilities",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteResult appends every listing of result, numbering pages from 1.
func (c *CSVWriter) WriteResult(result models.CrawlResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, page := range result {
		for _, l := range page {
			row := []string{
				strconv.Itoa(i + 1),
				l.Name,
				l.Rating,
				models.Deref(l.Price),
				models.Deref(l.Image),
				models.Deref(l.Link),
				"", "", "", "", "",
			}
			if d := l.Details; d != nil {
				if d.Coordinates != nil {
					row[6] = d.Coordinates.Latitude
					row[7] = d.Coordinates.Longitude
				}
				row[8] = d.Stars
				row[9] = d.OpenDate
				row[10] = strings.Join(d.ImportantFacilities, ",")
			}
			if err := c.writer.Write(row); err != nil {
				return fmt.Errorf("csv: write row: %w", err)
			}
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
