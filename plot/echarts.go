package plot

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

// Coordinate is one mappable service request.
type Coordinate struct {
	Longitude float64
	Latitude  float64
	Label     string
}

// RenderInteractivePage writes interactive_report.html: borough medians,
// monthly volume lines per borough, and a coordinate scatter of a request
// sample. This is the browsable counterpart to the static PNGs.
func RenderInteractivePage(outputDir string, byBorough map[string]models.AggregateStat, seasonality []models.BoroughSeasonality, coords []Coordinate) error {
	page := components.NewPage()
	page.AddCharts(
		boroughMedianBar(byBorough),
		monthlyVolumeLine(seasonality),
		requestScatter(coords),
	)
	f, err := os.Create(filepath.Join(outputDir, "interactive_report.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

func boroughMedianBar(byBorough map[string]models.AggregateStat) *charts.Bar {
	boroughs := make([]string, 0, len(byBorough))
	for b := range byBorough {
		boroughs = append(boroughs, b)
	}
	sort.Strings(boroughs)

	data := make([]opts.BarData, len(boroughs))
	for i, b := range boroughs {
		data[i] = opts.BarData{Value: byBorough[b].Median}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Median response time by borough (days)"}),
	)
	bar.SetXAxis(boroughs).AddSeries("median days", data)
	return bar
}

func monthlyVolumeLine(seasonality []models.BoroughSeasonality) *charts.Line {
	monthSet := map[string]bool{}
	for _, s := range seasonality {
		for _, p := range s.Series {
			monthSet[p.Month] = true
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Monthly complaint volume by borough"}),
	)
	line.SetXAxis(months)
	for _, s := range seasonality {
		volumes := map[string]int{}
		for _, p := range s.Series {
			volumes[p.Month] = p.Volume
		}
		data := make([]opts.LineData, len(months))
		for i, m := range months {
			data[i] = opts.LineData{Value: volumes[m]}
		}
		line.AddSeries(s.Borough, data)
	}
	return line
}

func requestScatter(coords []Coordinate) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(coords))
	for _, c := range coords {
		data = append(data, opts.ScatterData{
			Value:      []interface{}{c.Longitude, c.Latitude},
			SymbolSize: 5,
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sample request locations"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Longitude"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Latitude"}),
	)
	scatter.AddSeries("requests", data)
	return scatter
}
