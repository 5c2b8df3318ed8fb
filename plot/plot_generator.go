package plot

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const histogramBins = 40

// BarPNG renders one bar per category, sized from the label count.
func BarPNG(data dataForGraph) ([]byte, error) {
	bars := data.generateBarValues()
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to draw")
	}
	width, height := data.calculateChartDimensions(100)

	graph := chart.BarChart{
		Title: data.GetNameGraph(),
		Background: chart.Style{
			FillColor:   drawing.ColorWhite,
			StrokeColor: drawing.ColorFromHex("efefef"),
			StrokeWidth: 1,
			Padding: chart.Box{
				Top:    50,
				Bottom: 80,
			},
		},
		Width:    width,
		Height:   height,
		BarWidth: 60,
		Bars:     bars,
		YAxis: chart.YAxis{
			Name: data.getNameYAxis(),
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: data.findMaxValue(),
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering bar chart: %v", err)
	}
	return buffer.Bytes(), nil
}

// HistogramPNG bins the values and draws the distribution with a filled area
// under the line.
func HistogramPNG(title string, values []float64) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to draw")
	}
	xValues, yValues := binValues(values, histogramBins)

	series := &chart.ContinuousSeries{
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: drawing.ColorBlue,
			StrokeWidth: 2,
		},
	}
	fillSeries := &chart.ContinuousSeries{
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeWidth: 0,
			StrokeColor: drawing.ColorBlue,
			FillColor:   drawing.ColorBlue.WithAlpha(80),
		},
	}

	graph := chart.Chart{
		Title: title,
		Background: chart.Style{
			FillColor:   drawing.ColorWhite,
			StrokeColor: drawing.ColorFromHex("efefef"),
			StrokeWidth: 1,
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 60,
			},
		},
		Width:  2048,
		Height: 1024,
		XAxis: chart.XAxis{
			Name: "Days",
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.1f", vf)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: "Count",
		},
		Series: []chart.Series{fillSeries, series},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering histogram: %v", err)
	}
	return buffer.Bytes(), nil
}

// LinePNG draws one line per named series over shared x positions, labeling
// the x axis with the given tick labels. Series shorter than the label count
// are padded with zeros.
func LinePNG(title, nameYAxis string, xLabels []string, series map[string][]float64) ([]byte, error) {
	if len(xLabels) == 0 || len(series) == 0 {
		return nil, fmt.Errorf("no series to draw")
	}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	xs := make([]float64, len(xLabels))
	ticks := make([]chart.Tick, len(xLabels))
	for i, label := range xLabels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	var lines []chart.Series
	for _, name := range names {
		ys := make([]float64, len(xLabels))
		copy(ys, series[name])
		lines = append(lines, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  2048,
		Height: 1024,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding: chart.Box{
				Top:    50,
				Bottom: 50,
			},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name: nameYAxis,
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering line chart: %v", err)
	}
	return buffer.Bytes(), nil
}

// binValues splits the value range into equal-width bins and counts members,
// returning bin midpoints and counts.
func binValues(values []float64, bins int) ([]float64, []float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	min, max := sorted[0], sorted[len(sorted)-1]
	if min == max {
		return []float64{min}, []float64{float64(len(values))}
	}
	width := (max - min) / float64(bins)

	xs := make([]float64, bins)
	ys := make([]float64, bins)
	for i := 0; i < bins; i++ {
		xs[i] = min + width*(float64(i)+0.5)
	}
	for _, v := range values {
		idx := int(math.Floor((v - min) / width))
		if idx >= bins {
			idx = bins - 1
		}
		ys[idx]++
	}
	return xs, ys
}
