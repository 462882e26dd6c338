package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr error
	}{
		{"8,7", 8.7, nil},
		{" 9.1 ", 9.1, nil},
		{"10", 10, nil},
		{"", 0, ErrEmpty},
		{"хорошо", 0, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRating(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	lat, lng, err := ParseCoordinates("55.75", "37.61")
	require.NoError(t, err)
	assert.Equal(t, 55.75, lat)
	assert.Equal(t, 37.61, lng)

	_, _, err = ParseCoordinates("N/A", "")
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = ParseCoordinates("N/A", "37.61")
	assert.ErrorIs(t, err, ErrMalformed)

	_, _, err = ParseCoordinates("95", "37.61")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr error
	}{
		{"100", 100, nil},
		{"5 000 руб.", 5000, nil},
		{"руб. 12 350", 12350, nil},
		{"€ 1,250", 1250, nil},
		{"", 0, ErrEmpty},
		{"по запросу", 0, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOpenYear(t *testing.T) {
	year, err := ParseOpenYear("12/03/2011")
	require.NoError(t, err)
	assert.Equal(t, 2011, year)

	year, err = ParseOpenYear("1/9/2019")
	require.NoError(t, err)
	assert.Equal(t, 2019, year)

	_, err = ParseOpenYear("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = ParseOpenYear("2011-03-12")
	assert.ErrorIs(t, err, ErrMalformed)
}
