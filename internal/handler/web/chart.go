package web

import (
	"io"

	"TrendWatch/internal/domain/models"
	"TrendWatch/pkg/util"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Series names shown in the chart legend.
const (
	seriesActual    = "Actual Price"
	seriesPredicted = "Predicted Price"
	seriesForecast  = "Forecast"
)

// gap is how echarts marks a missing value on a category axis.
const gap = "-"

// renderChart writes a standalone HTML page with the historical closes,
// the fitted trend over them and the projected closes.
func renderChart(w io.Writer, res *models.ForecastResult) error {
	return newChart(res).Render(w)
}

func newChart(res *models.ForecastResult) *charts.Line {
	hist := res.Historical.Points
	n := len(hist) + len(res.Projected)

	days := make([]string, 0, n)
	actual := make([]opts.LineData, 0, n)
	trend := make([]opts.LineData, 0, n)
	projected := make([]opts.LineData, 0, n)

	for i, p := range hist {
		days = append(days, util.FormatDay(p.Date))
		actual = append(actual, opts.LineData{Value: util.RoundPrice(p.Close)})
		trend = append(trend, opts.LineData{Value: util.RoundPrice(res.Trend[i].Close)})
		// the forecast line starts on the last fitted day so the two traces join
		if i == len(hist)-1 {
			projected = append(projected, opts.LineData{Value: util.RoundPrice(res.Trend[i].Close)})
		} else {
			projected = append(projected, opts.LineData{Value: gap})
		}
	}
	for _, p := range res.Projected {
		days = append(days, util.FormatDay(p.Date))
		actual = append(actual, opts.LineData{Value: gap})
		trend = append(trend, opts.LineData{Value: gap})
		projected = append(projected, opts.LineData{Value: util.RoundPrice(p.Close)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: res.Ticker + " Price Prediction",
			Theme:     types.ThemeChalk,
			Width:     "100%",
			Height:    "540px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    res.Ticker + " Price Prediction",
			Subtitle: "Linear trend over daily closes",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price (USD)", Scale: true}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	line.SetXAxis(days).
		AddSeries(seriesActual, actual).
		AddSeries(seriesPredicted, trend).
		AddSeries(seriesForecast, projected)

	return line
}
