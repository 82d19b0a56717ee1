package forecast

import (
	"sort"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/pkg/util"
)

const (
	DefaultMinPoints   = 30
	DefaultHorizonDays = 30
)

// Option configures Engine.
type Option func(*Engine)

// WithMinPoints sets the smallest cleaned series accepted for fitting.
func WithMinPoints(n int) Option {
	return func(e *Engine) {
		if n > 1 {
			e.minPoints = n
		}
	}
}

// WithHorizonDays sets how many calendar days are projected.
func WithHorizonDays(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.horizonDays = n
		}
	}
}

// Engine turns a raw close series into historical + projected prices.
// It is stateless and safe for concurrent use.
type Engine struct {
	minPoints   int
	horizonDays int
	now         func() time.Time
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		minPoints:   DefaultMinPoints,
		horizonDays: DefaultHorizonDays,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) MinPoints() int   { return e.minPoints }
func (e *Engine) HorizonDays() int { return e.horizonDays }

// Clean drops missing, non-finite and non-positive closes, orders the rest by calendar
// day (last value wins on a repeated day) and assigns day offsets 0..n-1.
func (e *Engine) Clean(ticker string, raw []models.RawPoint) (models.PriceSeries, error) {
	byDay := make(map[time.Time]float64, len(raw))
	for _, p := range raw {
		if !p.Close.Usable() {
			continue
		}
		byDay[util.TruncateDay(p.Date)] = p.Close.Value
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	if len(days) < e.minPoints {
		return models.PriceSeries{}, &models.InsufficientDataError{
			Ticker: ticker,
			Usable: len(days),
			Need:   e.minPoints,
		}
	}

	points := make([]models.PricePoint, len(days))
	for i, d := range days {
		points[i] = models.PricePoint{Date: d, DayOffset: i, Close: byDay[d]}
	}
	return models.PriceSeries{Ticker: ticker, Points: points}, nil
}

// Fit is ordinary least squares of close on day offset.
func Fit(series models.PriceSeries) models.LinearModel {
	n := len(series.Points)
	if n == 0 {
		return models.LinearModel{}
	}
	var sx, sy float64
	for _, p := range series.Points {
		sx += float64(p.DayOffset)
		sy += p.Close
	}
	mx := sx / float64(n)
	my := sy / float64(n)

	var sxx, sxy float64
	for _, p := range series.Points {
		dx := float64(p.DayOffset) - mx
		sxx += dx * dx
		sxy += dx * (p.Close - my)
	}
	// a single point has no slope
	if sxx == 0 {
		return models.LinearModel{Intercept: my, N: n}
	}
	slope := sxy / sxx
	return models.LinearModel{Slope: slope, Intercept: my - slope*mx, N: n}
}

// Project evaluates the model for horizonDays consecutive calendar days after lastDate.
// Weekends and holidays are not skipped.
func Project(m models.LinearModel, lastDate time.Time, lastDayOffset, horizonDays int) []models.ProjectedPoint {
	if horizonDays <= 0 {
		return []models.ProjectedPoint{}
	}
	out := make([]models.ProjectedPoint, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		off := lastDayOffset + i
		out[i-1] = models.ProjectedPoint{
			Date:      util.AddDays(lastDate, i),
			DayOffset: off,
			Close:     m.At(off),
		}
	}
	return out
}

// Trend evaluates the model on every historical day.
func Trend(m models.LinearModel, series models.PriceSeries) []models.ProjectedPoint {
	out := make([]models.ProjectedPoint, len(series.Points))
	for i, p := range series.Points {
		out[i] = models.ProjectedPoint{Date: p.Date, DayOffset: p.DayOffset, Close: m.At(p.DayOffset)}
	}
	return out
}

// BuildForecast runs clean, fit and project. The only error is insufficient data.
func (e *Engine) BuildForecast(ticker string, raw []models.RawPoint) (*models.ForecastResult, error) {
	series, err := e.Clean(ticker, raw)
	if err != nil {
		return nil, err
	}
	model := Fit(series)
	last := series.Last()
	return &models.ForecastResult{
		Ticker:      ticker,
		Historical:  series,
		Trend:       Trend(model, series),
		Projected:   Project(model, last.Date, last.DayOffset, e.horizonDays),
		Model:       model,
		GeneratedAt: e.now(),
	}, nil
}
