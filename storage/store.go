package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"booking-scraper/models"
	"booking-scraper/utils"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// TableNames lists every table keyed by hotel_id, hotels first.
var TableNames = []string{
	"hotels", "coordinates", "important_facilities",
	"neighborhood_structures", "services_offered",
	"extended_rating", "review_rating", "apartaments",
}

// HotelStore keeps crawled hotels in a relational database.
type HotelStore struct {
	db     *sql.DB
	driver string
	logger *utils.Logger
}

// OpenHotelStore connects to the database and waits until it answers.
// Call Migrate before the first Ingest.
func OpenHotelStore(ctx context.Context, driver, dsn string, logger *utils.Logger) (*HotelStore, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if driver == DriverSQLite {
		// an in-memory database lives on a single connection
		db.SetMaxOpenConns(1)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("store: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping failed after retries: %w", err)
	}

	return &HotelStore{db: db, driver: driver, logger: logger}, nil
}

// Close releases the connection pool.
func (s *HotelStore) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist yet.
func (s *HotelStore) Migrate(ctx context.Context) error {
	idColumn := "SERIAL PRIMARY KEY"
	if s.driver == DriverSQLite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hotels (
			hotel_id  ` + idColumn + `,
			name      TEXT NOT NULL,
			city      TEXT NOT NULL DEFAULT '',
			address   TEXT NOT NULL DEFAULT '',
			star      TEXT NOT NULL DEFAULT '',
			score     TEXT NOT NULL DEFAULT '',
			open_date TEXT NOT NULL DEFAULT '',
			link      TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS coordinates (
			hotel_id  INTEGER NOT NULL,
			latitude  TEXT NOT NULL,
			longitude TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS important_facilities (
			hotel_id             INTEGER NOT NULL,
			important_facilities TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS neighborhood_structures (
			hotel_id  INTEGER NOT NULL,
			structure TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS services_offered (
			hotel_id INTEGER NOT NULL,
			service  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS extended_rating (
			hotel_id INTEGER NOT NULL,
			category TEXT NOT NULL,
			score    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS review_rating (
			hotel_id INTEGER NOT NULL,
			label    TEXT NOT NULL,
			count    TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS apartaments (
			hotel_id          INTEGER NOT NULL,
			apartament_type   TEXT NOT NULL,
			apartaments_price TEXT NOT NULL,
			hotel_beds        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_hotels_identity ON hotels(name, city, open_date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Ingest stores every listing of result under city. Hotels already present
// with the same (name, city, open date) are skipped. It returns the number
// of hotels inserted.
func (s *HotelStore) Ingest(ctx context.Context, result models.CrawlResult, city string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: ingest: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, skipped := 0, 0
	for _, page := range result {
		for _, l := range page {
			openDate := ""
			if l.Details != nil {
				openDate = l.Details.OpenDate
			}

			exists, err := s.hotelExists(ctx, tx, l.Name, city, openDate)
			if err != nil {
				return 0, err
			}
			if exists {
				skipped++
				continue
			}

			if err := s.insertHotel(ctx, tx, l, city); err != nil {
				return 0, fmt.Errorf("store: ingest %q: %w", l.Name, err)
			}
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: ingest: commit: %w", err)
	}
	s.logger.Info("[store] Ingested %d hotels for %s, %d already stored", inserted, city, skipped)
	return inserted, nil
}

func (s *HotelStore) insertHotel(ctx context.Context, tx *sql.Tx, l models.ListingRecord, city string) error {
	d := l.Details
	if d == nil {
		d = &models.DetailRecord{}
	}

	var id int64
	err := tx.QueryRowContext(ctx, s.rebind(`
		INSERT INTO hotels (name, city, address, star, score, open_date, link)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING hotel_id`),
		l.Name, city, d.Address, d.Stars, l.Rating, d.OpenDate, models.Deref(l.Link),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert hotel: %w", err)
	}

	exec := func(query string, args ...interface{}) error {
		_, err := tx.ExecContext(ctx, s.rebind(query), append([]interface{}{id}, args...)...)
		return err
	}

	if d.Coordinates != nil {
		if err := exec(`INSERT INTO coordinates (hotel_id, latitude, longitude) VALUES (?, ?, ?)`,
			d.Coordinates.Latitude, d.Coordinates.Longitude); err != nil {
			return fmt.Errorf("insert coordinates: %w", err)
		}
	}
	if len(d.ImportantFacilities) > 0 {
		if err := exec(`INSERT INTO important_facilities (hotel_id, important_facilities) VALUES (?, ?)`,
			strings.Join(d.ImportantFacilities, ",")); err != nil {
			return fmt.Errorf("insert facilities: %w", err)
		}
	}
	for _, v := range d.NeighborhoodStructures {
		if err := exec(`INSERT INTO neighborhood_structures (hotel_id, structure) VALUES (?, ?)`, v); err != nil {
			return fmt.Errorf("insert neighborhood: %w", err)
		}
	}
	for _, v := range d.ServicesOffered {
		if err := exec(`INSERT INTO services_offered (hotel_id, service) VALUES (?, ?)`, v); err != nil {
			return fmt.Errorf("insert service: %w", err)
		}
	}
	for _, v := range d.ExtendedRating {
		if err := exec(`INSERT INTO extended_rating (hotel_id, category, score) VALUES (?, ?, ?)`,
			v.Category, v.Score); err != nil {
			return fmt.Errorf("insert extended rating: %w", err)
		}
	}
	for _, v := range d.ReviewRating {
		if err := exec(`INSERT INTO review_rating (hotel_id, label, count) VALUES (?, ?, ?)`,
			v.Label, v.Count); err != nil {
			return fmt.Errorf("insert review rating: %w", err)
		}
	}
	for _, v := range d.Apartments {
		if err := exec(`INSERT INTO apartaments (hotel_id, apartament_type, apartaments_price, hotel_beds) VALUES (?, ?, ?, ?)`,
			v.Type, v.Price, v.Beds); err != nil {
			return fmt.Errorf("insert apartment: %w", err)
		}
	}
	return nil
}

// HotelExists reports whether a hotel with this identity is stored.
func (s *HotelStore) HotelExists(ctx context.Context, name, city, openDate string) (bool, error) {
	return s.hotelExists(ctx, s.db, name, city, openDate)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *HotelStore) hotelExists(ctx context.Context, q queryer, name, city, openDate string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, s.rebind(`
		SELECT EXISTS(SELECT 1 FROM hotels WHERE name = ? AND city = ? AND open_date = ?)`),
		name, city, openDate,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: hotel exists: %w", err)
	}
	return exists, nil
}

// OpenDates returns the raw "on booking.com since" date of every hotel.
// Hotels without one yield "".
func (s *HotelStore) OpenDates(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "open dates", `SELECT open_date FROM hotels ORDER BY hotel_id`)
}

// Ratings returns the raw score of every rated hotel.
func (s *HotelStore) Ratings(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "ratings", `SELECT score FROM hotels WHERE score <> '' ORDER BY hotel_id`)
}

// HotelCoordinates returns (name, latitude, longitude) for every located hotel.
func (s *HotelStore) HotelCoordinates(ctx context.Context) ([]models.CoordinateRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.name, c.latitude, c.longitude
		FROM hotels h
		INNER JOIN coordinates c ON h.hotel_id = c.hotel_id
		ORDER BY h.hotel_id`)
	if err != nil {
		return nil, fmt.Errorf("store: coordinates: %w", err)
	}
	defer rows.Close()

	var out []models.CoordinateRow
	for rows.Next() {
		var r models.CoordinateRow
		if err := rows.Scan(&r.Name, &r.Latitude, &r.Longitude); err != nil {
			return nil, fmt.Errorf("store: coordinates: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HotelsInCity returns rated hotels whose city contains city.
func (s *HotelStore) HotelsInCity(ctx context.Context, city string) ([]models.CityHotelRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT name, score, city FROM hotels
		WHERE city LIKE ? AND score <> ''
		ORDER BY hotel_id`), "%"+city+"%")
	if err != nil {
		return nil, fmt.Errorf("store: hotels in city: %w", err)
	}
	defer rows.Close()

	var out []models.CityHotelRow
	for rows.Next() {
		var r models.CityHotelRow
		if err := rows.Scan(&r.Name, &r.Score, &r.City); err != nil {
			return nil, fmt.Errorf("store: hotels in city: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FacilityRows returns each hotel's comma-joined important facilities with
// its star category.
func (s *HotelStore) FacilityRows(ctx context.Context) ([]models.FacilityRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.important_facilities, h.star
		FROM important_facilities f
		INNER JOIN hotels h ON f.hotel_id = h.hotel_id
		ORDER BY h.hotel_id`)
	if err != nil {
		return nil, fmt.Errorf("store: facilities: %w", err)
	}
	defer rows.Close()

	var out []models.FacilityRow
	for rows.Next() {
		var r models.FacilityRow
		if err := rows.Scan(&r.Facilities, &r.Star); err != nil {
			return nil, fmt.Errorf("store: facilities: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ApartmentPrices returns every apartment offer of hotels whose city
// contains city.
func (s *HotelStore) ApartmentPrices(ctx context.Context, city string) ([]models.ApartmentPriceRow, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT h.name, a.apartaments_price, a.hotel_beds, h.star
		FROM hotels h
		INNER JOIN apartaments a ON h.hotel_id = a.hotel_id
		WHERE h.city LIKE ?
		ORDER BY h.hotel_id`), "%"+city+"%")
	if err != nil {
		return nil, fmt.Errorf("store: apartment prices: %w", err)
	}
	defer rows.Close()

	var out []models.ApartmentPriceRow
	for rows.Next() {
		var r models.ApartmentPriceRow
		if err := rows.Scan(&r.HotelName, &r.Price, &r.Beds, &r.Star); err != nil {
			return nil, fmt.Errorf("store: apartment prices: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Hotels returns every stored hotel row.
func (s *HotelStore) Hotels(ctx context.Context) ([]models.HotelRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT hotel_id, name, city, open_date, star, score FROM hotels ORDER BY hotel_id`)
	if err != nil {
		return nil, fmt.Errorf("store: hotels: %w", err)
	}
	defer rows.Close()

	var out []models.HotelRow
	for rows.Next() {
		var r models.HotelRow
		if err := rows.Scan(&r.ID, &r.Name, &r.City, &r.OpenDate, &r.Star, &r.Score); err != nil {
			return nil, fmt.Errorf("store: hotels: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RemoveDuplicates keeps the lowest hotel_id of every (name, city, open
// date) group and deletes the other hotels from all tables. It returns the
// number of hotels removed.
func (s *HotelStore) RemoveDuplicates(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: dedup: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT hotel_id FROM hotels
		WHERE hotel_id NOT IN (
			SELECT MIN(hotel_id) FROM hotels GROUP BY name, city, open_date
		)`)
	if err != nil {
		return 0, fmt.Errorf("store: dedup: select: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("store: dedup: scan: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("store: dedup: select: %w", err)
	}

	for _, id := range ids {
		for _, table := range TableNames {
			query := s.rebind("DELETE FROM " + table + " WHERE hotel_id = ?")
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return 0, fmt.Errorf("store: dedup: delete %s %d: %w", table, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: dedup: commit: %w", err)
	}
	s.logger.Info("[store] %d duplicate hotels removed", len(ids))
	return len(ids), nil
}

func (s *HotelStore) queryStrings(ctx context.Context, what, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", what, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("store: %s: scan: %w", what, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders as $1, $2... for postgres.
func (s *HotelStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
