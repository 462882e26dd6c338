package models

// HotelRow is one row of the hotels table.
type HotelRow struct {
	ID       int64
	Name     string
	City     string
	OpenDate string
	Star     string
	Score    string
}

// CoordinateRow joins a hotel name with its raw coordinates.
type CoordinateRow struct {
	Name      string
	Latitude  string
	Longitude string
}

// FacilityRow is a comma-joined important facilities block with the
// owning hotel's star category.
type FacilityRow struct {
	Facilities string
	Star       string
}

// ApartmentPriceRow is one apartment offer joined with its hotel.
type ApartmentPriceRow struct {
	HotelName string
	Price     string
	Beds      string
	Star      string
}

// CityHotelRow is a rated hotel located in a city.
type CityHotelRow struct {
	Name  string
	Score string
	City  string
}
