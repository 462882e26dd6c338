package booking

// CSS selectors for booking.com search results and hotel pages.
const (
	// Search results
	ResultsHeaderSelector = "div.sr_header"
	ListingSelector       = "#hotellist_inner div.sr_item.sr_item_new"
	NameSelector          = ".sr-hotel__name"
	RatingSelector        = ".bui-review-score__badge"
	PriceSelector         = ".bui-price-display__value"
	PriceFallbackSelector = ".prco-valign-middle-helper"
	ImageSelector         = "img.hotel_image"
	LinkSelector          = "a.hotel_name_link"

	// Hotel page
	MapSelector               = "#hotel_sidebar_static_map"
	MapCoordinatesAttr        = "data-atlas-latlng"
	TitleSelector             = "#hp_hotel_name"
	AddressSelector           = ".hp_address_subtitle"
	StarsSelector             = ".hp__hotel_ratings__stars"
	DescriptionSelector       = "#property_description_content"
	ImportantFacilitySelector = ".hp_desc_important_facilities .important_facility"
	NeighborhoodSelector      = ".hp_location_block__section_container .bui-list__description"
	ServicesSelector          = ".facilitiesChecklistSection li"
	SubscoreSelector          = ".v2_review-scores__subscore"
	SubscoreTitleSelector     = ".c-score-bar__title"
	SubscoreValueSelector     = ".c-score-bar__score"
	ReviewBucketSelector      = "#review_list_score_breakdown li"
	ReviewBucketNameSelector  = ".review_score_name"
	ReviewBucketValueSelector = ".review_score_value"
	RoomRowSelector           = "#hprt-table tbody tr"
	RoomTypeSelector          = ".hprt-roomtype-icon-link"
	RoomPriceSelector         = ".bui-price-display__value"
	RoomOccupancySelector     = ".hprt-occupancy-occupancy-info"
)

const (
	// BookingOrigin prefixes the relative links found on result pages.
	BookingOrigin = "https://www.booking.com"

	searchURLTemplate = "https://www.booking.com/searchresults.ru.html?checkin_month=%d" +
		"&checkin_monthday=%d" +
		"&checkin_year=%d" +
		"&checkout_month=%d" +
		"&checkout_monthday=%d" +
		"&checkout_year=%d" +
		"&group_adults=%d" +
		"&group_children=0&order=price" +
		"&ss=%%2C%%20%s" +
		"&offset=%d"
)
