package metrics

import "github.com/contre95/monkeypress/src/content"

// ChartData represents data for Chart.js charts.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset represents a Chart.js dataset.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
}

var colorPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#C9CBCF", "#8BC34A", "#E91E63",
}

// KindChartData converts entity counts to chart format, one bar per kind.
func (s *Stats) KindChartData() *ChartData {
	labels := make([]string, len(content.Kinds))
	data := make([]float64, len(content.Kinds))
	colors := make([]string, len(content.Kinds))

	for i, kind := range content.Kinds {
		labels[i] = string(kind)
		data[i] = float64(s.Entities[kind])
		colors[i] = colorPalette[i%len(colorPalette)]
	}

	return &ChartData{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           "Entities by kind",
			Data:            data,
			BackgroundColor: colors,
		}},
	}
}
