package plot

import (
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// categoryData feeds one bar per named category, e.g. median response time
// per borough or monthly complaint volume.
type categoryData struct {
	labels    []string
	yValues   []float64
	nameYAxis string
	nameGraph string
}

func NewCategoryData(labels []string, y []float64, nameYAxis, nameGraph string) categoryData {
	return categoryData{
		labels:    labels,
		yValues:   y,
		nameYAxis: nameYAxis,
		nameGraph: nameGraph,
	}
}

func (d categoryData) GetNameGraph() string {
	return d.nameGraph
}

func (d categoryData) getNameYAxis() string {
	return d.nameYAxis
}

func (d categoryData) getYValues() []float64 {
	return d.yValues
}

func (d categoryData) findMaxValue() float64 {
	if len(d.yValues) == 0 {
		return 0
	}
	max := d.yValues[0]
	for _, v := range d.yValues {
		if v > max {
			max = v
		}
	}
	return max
}

func (d categoryData) calculateChartDimensions(minBarWidth float64) (width, height int) {
	if len(d.yValues) == 0 || len(d.labels) == 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if len(d.labels) < 2 {
		x = 10.0
	} else if len(d.labels) < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100
		spacingRatio = 0.2
		aspectRatio  = 9.0 / 16.0
	)
	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(len(d.labels)) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func (d categoryData) generateBarValues() []chart.Value {
	var bars []chart.Value
	for i := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: d.labels[i],
			Style: chart.Style{
				FillColor: drawing.ColorBlue.WithAlpha(120),
			},
		})
	}
	return bars
}
