package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// linearRaw builds n consecutive days with closes base, base+step, ...
func linearRaw(n int, base, step float64) []models.RawPoint {
	raw := make([]models.RawPoint, n)
	for i := 0; i < n; i++ {
		raw[i] = models.RawPoint{Date: start.AddDate(0, 0, i), Close: models.SomeClose(base + step*float64(i))}
	}
	return raw
}

func TestBuildForecast_LinearSeries(t *testing.T) {
	e := NewEngine()
	res, err := e.BuildForecast("LIN", linearRaw(35, 100, 1))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Model.Slope, 1e-9)
	assert.InDelta(t, 100.0, res.Model.Intercept, 1e-9)
	assert.Equal(t, 35, res.Model.N)
	assert.Equal(t, 35, res.Historical.Len())
	assert.Len(t, res.Trend, 35)

	require.Len(t, res.Projected, DefaultHorizonDays)
	// offsets continue from the last historical offset (34)
	assert.Equal(t, 35, res.Projected[0].DayOffset)
	assert.InDelta(t, 135.0, res.Projected[0].Close, 1e-6)
	assert.Equal(t, 36, res.Projected[1].DayOffset)
	assert.InDelta(t, 136.0, res.Projected[1].Close, 1e-6)
}

func TestBuildForecast_BelowFloor(t *testing.T) {
	e := NewEngine()
	for _, n := range []int{0, 1, 29} {
		_, err := e.BuildForecast("SHORT", linearRaw(n, 10, 0.5))
		require.Error(t, err, "n=%d", n)
		assert.True(t, errors.Is(err, models.ErrInsufficientData), "n=%d", n)
	}

	_, err := e.BuildForecast("OK", linearRaw(30, 10, 0.5))
	assert.NoError(t, err)
}

func TestBuildForecast_AllMissing(t *testing.T) {
	raw := make([]models.RawPoint, 60)
	for i := range raw {
		raw[i] = models.RawPoint{Date: start.AddDate(0, 0, i), Close: models.NoClose()}
	}
	_, err := NewEngine().BuildForecast("GONE", raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	var ide *models.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 0, ide.Usable)
	assert.Contains(t, err.Error(), "GONE")
}

func TestBuildForecast_MissingDropsBelowFloor(t *testing.T) {
	raw := linearRaw(40, 50, 0.25)
	for i := 0; i < 15; i++ {
		raw[i*2].Close = models.NoClose()
	}
	_, err := NewEngine().BuildForecast("HOLEY", raw)
	require.Error(t, err)

	var ide *models.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 25, ide.Usable)
	assert.Equal(t, 30, ide.Need)
	assert.Contains(t, err.Error(), "HOLEY")
	assert.Contains(t, err.Error(), "25")
}

func TestClean_DropsUnusableAndReindexes(t *testing.T) {
	raw := linearRaw(33, 20, 1)
	raw[3].Close = models.SomeClose(math.NaN())
	raw[7].Close = models.SomeClose(math.Inf(1))
	raw[9].Close = models.SomeClose(-4)
	// shuffle a couple of rows out of order
	raw[0], raw[32] = raw[32], raw[0]

	s, err := NewEngine().Clean("MIX", raw)
	require.NoError(t, err)
	require.Equal(t, 30, s.Len())
	for i, p := range s.Points {
		assert.Equal(t, i, p.DayOffset)
		if i > 0 {
			assert.True(t, p.Date.After(s.Points[i-1].Date))
		}
		assert.Greater(t, p.Close, 0.0)
	}
	assert.Equal(t, util.TruncateDay(start), s.Points[0].Date)
}

func TestClean_DuplicateDayLastWins(t *testing.T) {
	raw := linearRaw(31, 10, 1)
	raw = append(raw, models.RawPoint{Date: raw[30].Date.Add(3 * time.Hour), Close: models.SomeClose(99)})

	s, err := NewEngine().Clean("DUP", raw)
	require.NoError(t, err)
	assert.Equal(t, 31, s.Len())
	assert.Equal(t, 99.0, s.Last().Close)
}

func TestFit_Deterministic(t *testing.T) {
	raw := linearRaw(50, 80, 0.3)
	for i := range raw {
		raw[i].Close.Value += math.Sin(float64(i)) * 2
	}
	s, err := NewEngine().Clean("DET", raw)
	require.NoError(t, err)

	a := Fit(s)
	b := Fit(s)
	assert.Equal(t, a, b)
}

func TestFit_FlatSeries(t *testing.T) {
	s, err := NewEngine().Clean("FLAT", linearRaw(30, 42, 0))
	require.NoError(t, err)
	m := Fit(s)
	assert.InDelta(t, 0, m.Slope, 1e-12)
	assert.InDelta(t, 42, m.Intercept, 1e-9)
}

func TestProject_ConsecutiveCalendarDays(t *testing.T) {
	m := models.LinearModel{Slope: 2, Intercept: 1}
	// a Friday: the following weekend must not be skipped
	last := time.Date(2024, 2, 23, 0, 0, 0, 0, time.UTC)
	out := Project(m, last, 99, 30)

	require.Len(t, out, 30)
	assert.Equal(t, "2024-02-24", util.FormatDay(out[0].Date))
	assert.Equal(t, "2024-02-25", util.FormatDay(out[1].Date))
	for i := 1; i < len(out); i++ {
		assert.Equal(t, out[i-1].Date.AddDate(0, 0, 1), out[i].Date)
		assert.Equal(t, out[i-1].DayOffset+1, out[i].DayOffset)
	}
	assert.Equal(t, 100, out[0].DayOffset)
	assert.InDelta(t, 201.0, out[0].Close, 1e-12)
	assert.Equal(t, "2024-03-24", util.FormatDay(out[29].Date))
}

func TestProject_ZeroHorizon(t *testing.T) {
	out := Project(models.LinearModel{}, start, 0, 0)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestEngineOptions(t *testing.T) {
	e := NewEngine(WithMinPoints(5), WithHorizonDays(7))
	assert.Equal(t, 5, e.MinPoints())
	assert.Equal(t, 7, e.HorizonDays())

	res, err := e.BuildForecast("OPT", linearRaw(5, 1, 1))
	require.NoError(t, err)
	assert.Len(t, res.Projected, 7)

	// nonsensical values keep the defaults
	d := NewEngine(WithMinPoints(0), WithHorizonDays(-1))
	assert.Equal(t, DefaultMinPoints, d.MinPoints())
	assert.Equal(t, DefaultHorizonDays, d.HorizonDays())
}
