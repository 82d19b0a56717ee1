package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"TrendWatch/internal/domain/models"
	drepo "TrendWatch/internal/domain/repository"
	xhttp "TrendWatch/pkg/http"
	"TrendWatch/pkg/util"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client implements MarketData over the Yahoo Finance v8 chart endpoint.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

var _ drepo.MarketData = (*Client)(nil)

// New creates a Yahoo chart client. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...xhttp.ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(opts...),
	}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []models.OptionalClose `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *chartError) notFound() bool {
	return strings.EqualFold(e.Code, "Not Found")
}

// FetchDailyCloses returns one raw point per trading day over the trailing periodMonths.
// Dates are exchange-local calendar days. Unknown tickers return an empty slice.
func (c *Client) FetchDailyCloses(ctx context.Context, ticker string, periodMonths int) ([]models.RawPoint, error) {
	if periodMonths <= 0 {
		periodMonths = 6
	}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker)),
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"range":    {fmt.Sprintf("%dmo", periodMonths)},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return []models.RawPoint{}, nil
		}
		return nil, fmt.Errorf("%w: yahoo chart %s: %v", models.ErrMarketData, ticker, err)
	}

	if e := resp.Chart.Error; e != nil {
		if e.notFound() {
			return []models.RawPoint{}, nil
		}
		return nil, fmt.Errorf("%w: yahoo chart %s: %s", models.ErrMarketData, ticker, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return []models.RawPoint{}, nil
	}

	return toRawPoints(resp.Chart.Result[0]), nil
}

func toRawPoints(r chartResult) []models.RawPoint {
	var closes []models.OptionalClose
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]models.RawPoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		cell := models.NoClose()
		if i < len(closes) {
			cell = closes[i]
		}
		points = append(points, models.RawPoint{
			Date:  util.ExchangeDay(ts, r.Meta.GMTOffset),
			Close: cell,
		})
	}
	return points
}

