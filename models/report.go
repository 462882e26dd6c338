package models

// HistogramBin counts values falling into [Low, High).
type HistogramBin struct {
	Low   float64
	High  float64
	Count int
}

// ScoreGroups splits ratings into the three bands used by the pie chart.
type ScoreGroups struct {
	Low    []float64 // [1, 5)
	Medium []float64 // [5, 8)
	High   []float64 // [8, 10]
}

// YearCount is the number of hotels registered in a given year.
type YearCount struct {
	Year  int
	Count int
}

// FacilityCount is a canonical facility label with its frequency.
type FacilityCount struct {
	Facility string
	Count    int
}

// FacilityStats groups facility frequencies for one star bucket.
type FacilityStats struct {
	Hotels int
	Counts map[string]int
}

// CityPriceSummary summarises apartment prices of all hotels in a city.
type CityPriceSummary struct {
	Hotels     int
	Apartments int
	MinPrice   int
	AvgMin     int
	AvgPrice   int
	AvgMax     int
	MaxPrice   int
}

// StarPriceSummary summarises apartment prices for one star bucket.
// Range renders min/avg and max/avg as percentages.
type StarPriceSummary struct {
	Star       string
	Apartments int
	MinPrice   int
	AvgPrice   float64
	MaxPrice   int
	Range      string
}

// MapMarker is a hotel position ready for rendering.
type MapMarker struct {
	Name      string
	Latitude  float64
	Longitude float64
	Geohash   string
}

// InsightReport holds the console summary of a dataset.
type InsightReport struct {
	Pages          int
	TotalListings  int
	WithDetails    int
	RatedListings  int
	AverageRating  float64
	MinRating      float64
	MaxRating      float64
	TopRated       []ListingRecord
	Scores         ScoreGroups
	MarkersOnMap   int
	SkippedMarkers int
	TopFacilities  []FacilityCount
}
