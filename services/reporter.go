package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"booking-scraper/models"
	"booking-scraper/utils"
)

// Chart file names, without extension.
const (
	RatingChart     = "Number_of_hotels_by_rating"
	OpenYearChart   = "Number_of_hotels_by_year_of_registration_on_booking"
	ScorePieChart   = "Pie_chart_from_scores"
	FacilitiesChart = "Important_facilities"
	starPricePrefix = "Prices_by_stars_"
)

// renderer is implemented by every go-echarts chart.
type renderer interface {
	Render(w io.Writer) error
}

// Reporter renders charts and maps as HTML files in one directory.
type Reporter struct {
	dir    string
	logger *utils.Logger
}

// NewReporter creates the output directory if needed.
func NewReporter(dir string, logger *utils.Logger) (*Reporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("reporter: create dir: %w", err)
	}
	return &Reporter{dir: dir, logger: logger}, nil
}

// RatingHistogram draws the number of hotels per rating bin.
func (r *Reporter) RatingHistogram(bins []models.HistogramBin) (string, error) {
	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = strconv.FormatFloat(b.Low, 'f', 1, 64)
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: RatingChart}),
		charts.WithTitleOpts(opts.Title{Title: "Histogram of the number of hotels from their rating"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hotel rating"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count of hotels"}),
	)
	bar.SetXAxis(labels).AddSeries("hotels", data)

	return r.write(RatingChart, bar)
}

// OpeningYears draws hotel registrations per year.
func (r *Reporter) OpeningYears(years []models.YearCount) (string, error) {
	labels := make([]string, len(years))
	data := make([]opts.BarData, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y.Year)
		data[i] = opts.BarData{Value: y.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: OpenYearChart}),
		charts.WithTitleOpts(opts.Title{Title: "Hotel opening history histogram"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Opening year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count of hotels"}),
	)
	bar.SetXAxis(labels).AddSeries("hotels", data)

	return r.write(OpenYearChart, bar)
}

// ScorePie draws the share of each rating band.
func (r *Reporter) ScorePie(groups models.ScoreGroups) (string, error) {
	bands := []struct {
		label string
		n     int
	}{
		{"[1-5)", len(groups.Low)},
		{"[5-8)", len(groups.Medium)},
		{"[8-10]", len(groups.High)},
	}
	total := len(groups.Low) + len(groups.Medium) + len(groups.High)

	data := make([]opts.PieData, 0, len(bands))
	for _, b := range bands {
		share := 0.0
		if total > 0 {
			share = float64(b.n) / float64(total) * 100
		}
		data = append(data, opts.PieData{
			Name:  fmt.Sprintf("%s, %.2f%%", b.label, share),
			Value: b.n,
		})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: ScorePieChart}),
		charts.WithTitleOpts(opts.Title{Title: "Hotels by score group"}),
		charts.WithColorsOpts(opts.Colors{"#FD6787", "#FFF44C", "#288EEB"}),
	)
	pie.AddSeries("scores", data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: true, Formatter: "({c})"}),
	)

	return r.write(ScorePieChart, pie)
}

// Facilities draws the most frequent important facilities.
func (r *Reporter) Facilities(counts []models.FacilityCount, limit int) (string, error) {
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Facility
		data[i] = opts.BarData{Value: c.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: FacilitiesChart}),
		charts.WithTitleOpts(opts.Title{Title: "Most common important facilities"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count of hotels"}),
	)
	bar.SetXAxis(labels).AddSeries("hotels", data)

	return r.write(FacilitiesChart, bar)
}

// PricesByStars draws minimum, average and maximum apartment price per
// star bucket of a city.
func (r *Reporter) PricesByStars(city string, summaries []models.StarPriceSummary) (string, error) {
	labels := make([]string, len(summaries))
	minData := make([]opts.BarData, len(summaries))
	avgData := make([]opts.BarData, len(summaries))
	maxData := make([]opts.BarData, len(summaries))
	for i, s := range summaries {
		labels[i] = s.Star
		minData[i] = opts.BarData{Value: s.MinPrice}
		avgData[i] = opts.BarData{Value: s.AvgPrice}
		maxData[i] = opts.BarData{Value: s.MaxPrice}
	}

	name := starPricePrefix + city
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: name}),
		charts.WithTitleOpts(opts.Title{Title: "Apartment prices by stars: " + city}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Stars"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price"}),
	)
	bar.SetXAxis(labels).
		AddSeries("min", minData).
		AddSeries("avg", avgData).
		AddSeries("max", maxData)

	return r.write(name, bar)
}

func (r *Reporter) write(name string, chart renderer) (string, error) {
	path := filepath.Join(r.dir, name+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("reporter: create %q: %w", path, err)
	}
	if err := chart.Render(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("reporter: render %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("reporter: close %q: %w", path, err)
	}
	r.logger.Info("[reporter] Wrote %s", path)
	return path, nil
}
