package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-scraper/models"
)

func TestExtractListing(t *testing.T) {
	doc := parse(t, resultsPage("1", card("Метрополь", "8,7", "RUB 12 500", "/hotel/ru/metropol.ru.html")))
	fragments := Listings(doc)
	require.Len(t, fragments, 1)

	rec := ExtractListing(fragments[0])

	assert.Equal(t, "Метрополь", rec.Name)
	assert.Equal(t, "8,7", rec.Rating, "rating keeps the localized decimal comma")
	assert.Equal(t, "RUB 12 500", models.Deref(rec.Price))
	assert.Equal(t, "https://cf.bstatic.com/images/Метрополь.jpg", models.Deref(rec.Image))
	assert.Equal(t, "/hotel/ru/metropol.ru.html", models.Deref(rec.Link))
	assert.Nil(t, rec.Details)
}

func TestExtractListingMissingFields(t *testing.T) {
	doc := parse(t, resultsPage("1", card("Хостел", "", "", "")))
	rec := ExtractListing(Listings(doc)[0])

	assert.Equal(t, "Хостел", rec.Name)
	assert.Equal(t, "", rec.Rating, "missing rating defaults to empty string")
	assert.Nil(t, rec.Price)
	assert.Nil(t, rec.Link)
}

func TestExtractListingPriceFallback(t *testing.T) {
	markup := `<div id="hotellist_inner"><div class="sr_item sr_item_new">
		<span class="sr-hotel__name">A</span>
		<span class="prco-valign-middle-helper"> 3 100 руб. </span>
	</div></div>`
	rec := ExtractListing(Listings(parse(t, markup))[0])
	assert.Equal(t, "3 100 руб.", models.Deref(rec.Price))
}

func TestListingFragmentHasNoDetailFields(t *testing.T) {
	doc := parse(t, resultsPage("1", card("A", "9,0", "100", "/a")))
	fragment := Listings(doc)[0]

	_, ok := fragment.Coordinates()
	assert.False(t, ok)
	assert.Empty(t, fragment.List(FieldImportantFacilities))
	_, ok = fragment.Text(FieldOpenDate)
	assert.False(t, ok)

	rec := ExtractDetail(fragment)
	assert.Nil(t, rec.Coordinates)
	assert.Equal(t, []string{}, rec.ImportantFacilities)
}

func TestExtractDetail(t *testing.T) {
	rec := ExtractDetail(NewDetailPage(parse(t, hotelPage)))

	require.NotNil(t, rec.Coordinates)
	assert.Equal(t, models.Coordinates{Latitude: "55.75", Longitude: "37.61"}, *rec.Coordinates)
	assert.Equal(t, []string{"Бесплатный Wi-Fi", "Платная парковка"}, rec.ImportantFacilities)
	assert.Equal(t, []string{"Большой театр", "Красная площадь"}, rec.NeighborhoodStructures)
	assert.Equal(t, []string{"Трансфер", "Прачечная"}, rec.ServicesOffered)
	assert.Equal(t, "Театральный проезд 2, Москва, Россия", rec.Address)
	assert.Equal(t, "5", rec.Stars)
	assert.Equal(t, "12/03/2011", rec.OpenDate)
	assert.Equal(t, []models.CategoryScore{{Category: "Персонал", Score: "9,4"}, {Category: "Чистота", Score: "9,1"}}, rec.ExtendedRating)
	assert.Equal(t, []models.ReviewBucket{{Label: "Превосходно", Count: "812"}}, rec.ReviewRating)
	assert.Equal(t, []models.Apartment{
		{Type: "Стандартный номер", Price: "12 500", Beds: "2"},
		{Type: "Люкс", Price: "40 000", Beds: "4"},
	}, rec.Apartments)
}

func TestExtractDetailEmptyPage(t *testing.T) {
	rec := ExtractDetail(NewDetailPage(parse(t, `<html><body><p>captcha</p></body></html>`)))

	assert.Nil(t, rec.Coordinates)
	assert.Equal(t, []string{}, rec.ImportantFacilities)
	assert.Equal(t, []string{}, rec.NeighborhoodStructures)
	assert.Equal(t, []string{}, rec.ServicesOffered)
	assert.Empty(t, rec.Stars)
	assert.Empty(t, rec.Apartments)
}

func TestDetailCoordinatesWithoutComma(t *testing.T) {
	page := NewDetailPage(parse(t, `<a id="hotel_sidebar_static_map" data-atlas-latlng="55.75"></a>`))
	_, ok := page.Coordinates()
	assert.False(t, ok)
}

func TestResolveLink(t *testing.T) {
	assert.Equal(t, "https://www.booking.com/hotel/ru/a.ru.html?aid=1",
		ResolveLink("\n/hotel/ru/a.ru.html?aid=1\n"))
	assert.Equal(t, "https://secure.booking.com/hotel/b.html",
		ResolveLink("https://secure.booking.com/hotel/b.html"))
}

func TestNormaliseText(t *testing.T) {
	// "й" written as "и" plus a combining breve
	decomposed := "  Ча\u0438\u0306ка\n\t Отель  "

	assert.Equal(t, "Ча\u0439ка Отель", normaliseText(decomposed))
}
