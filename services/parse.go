package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrEmpty marks a value that was absent in the source markup.
	ErrEmpty = errors.New("empty value")
	// ErrMalformed marks a value present but not in the expected form.
	ErrMalformed = errors.New("malformed value")

	priceRegexp = regexp.MustCompile(`\d[\d\s,\x{00a0}\x{202f}]*`)
)

// ParseRating converts a localized rating ("8,7") to a number.
func ParseRating(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("rating: %w", ErrEmpty)
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("rating %q: %w", raw, ErrMalformed)
	}
	return v, nil
}

// ParseCoordinates converts a raw latitude/longitude pair to floats.
func ParseCoordinates(lat, lng string) (float64, float64, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return 0, 0, fmt.Errorf("coordinates: %w", ErrEmpty)
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return 0, 0, fmt.Errorf("latitude %q: %w", lat, ErrMalformed)
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil || lo < -180 || lo > 180 {
		return 0, 0, fmt.Errorf("longitude %q: %w", lng, ErrMalformed)
	}
	return la, lo, nil
}

// ParsePrice reads a whole-currency price such as "5 000 руб." or
// "€ 1,250". The first run of digits is taken, with space and comma group
// separators removed.
func ParsePrice(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("price: %w", ErrEmpty)
	}

	run := priceRegexp.FindString(s)
	if run == "" {
		return 0, fmt.Errorf("price %q: %w", raw, ErrMalformed)
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, run)

	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", raw, ErrMalformed)
	}
	return v, nil
}

// ParseOpenYear extracts the year from a dd/mm/yyyy date.
func ParseOpenYear(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("open date: %w", ErrEmpty)
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return 0, fmt.Errorf("open date %q: %w", raw, ErrMalformed)
	}
	return t.Year(), nil
}
