package booking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func resultsPage(total string, cards ...string) string {
	header := ""
	if total != "" {
		header = `<div class="sr_header"><h1>Россия: найдено ` + total + ` вариантов</h1></div>`
	}
	return `<html><body>` + header +
		`<div id="hotellist_inner">` + strings.Join(cards, "\n") + `</div></body></html>`
}

func card(name, rating, price, link string) string {
	var b strings.Builder
	b.WriteString(`<div class="sr_item sr_item_new">`)
	b.WriteString(`<img class="hotel_image" src="https://cf.bstatic.com/images/` + name + `.jpg">`)
	fmt.Fprintf(&b, `<span class="sr-hotel__name">
		%s
	</span>`, name)
	if rating != "" {
		fmt.Fprintf(&b, `<div class="bui-review-score__badge">%s</div>`, rating)
	}
	if price != "" {
		fmt.Fprintf(&b, `<div class="bui-price-display__value">%s</div>`, price)
	}
	if link != "" {
		fmt.Fprintf(&b, `<a class="hotel_name_link" href="
%s
">%s</a>`, link, name)
	}
	b.WriteString(`</div>`)
	return b.String()
}

const hotelPage = `<html><body>
<h2 id="hp_hotel_name">Отель Метрополь</h2>
<span class="hp__hotel_ratings__stars" title="5-звездочный отель"></span>
<span class="hp_address_subtitle"> Театральный проезд 2, Москва, Россия </span>
<div id="property_description_content"><p>Партнер Booking.com с 12/03/2011</p></div>
<a id="hotel_sidebar_static_map" data-atlas-latlng="55.75,37.61"></a>
<div class="hp_desc_important_facilities">
  <div class="important_facility">Бесплатный Wi-Fi</div>
  <div class="important_facility"> Платная парковка </div>
  <div class="important_facility"></div>
</div>
<div class="hp_location_block__section_container">
  <div class="bui-list__description">Большой театр</div>
  <div class="bui-list__description">Красная площадь</div>
</div>
<div class="facilitiesChecklistSection"><ul><li>Трансфер</li><li>Прачечная</li></ul></div>
<div class="v2_review-scores__subscore"><span class="c-score-bar__title">Персонал</span><span class="c-score-bar__score">9,4</span></div>
<div class="v2_review-scores__subscore"><span class="c-score-bar__title">Чистота</span><span class="c-score-bar__score">9,1</span></div>
<ul id="review_list_score_breakdown">
  <li><span class="review_score_name">Превосходно</span><span class="review_score_value">812</span></li>
</ul>
<table id="hprt-table"><tbody>
  <tr><td><a class="hprt-roomtype-icon-link">Стандартный номер</a></td>
      <td><span class="hprt-occupancy-occupancy-info">Макс. людей: 2</span></td>
      <td><div class="bui-price-display__value">12 500</div></td></tr>
  <tr><td><a class="hprt-roomtype-icon-link">Люкс</a></td>
      <td><span class="hprt-occupancy-occupancy-info">Макс. людей: 4</span></td>
      <td><div class="bui-price-display__value">40 000</div></td></tr>
</tbody></table>
</body></html>`

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}
