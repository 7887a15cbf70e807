package yahoo

// chart.go — endpoint /v8/finance/chart de Yahoo Finance.
//
// Devuelve las series diarias del año pedido como arrays paralelos
// (timestamps + open/high/low/close/volume). Un valor null en cualquier
// array se mapea a NaN, no a cero: cero es un precio válido de mercado,
// null no.

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

const chartPath = "/v8/finance/chart/"

// FetchDailyBars devuelve las barras diarias del ticker para el año
// calendario dado. Implementa ports.PriceProvider.
func (c *Client) FetchDailyBars(ctx context.Context, ticker string, year int) ([]domain.Bar, error) {
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)

	u := fmt.Sprintf("%s%s%s?period1=%d&period2=%d&interval=1d",
		c.base, chartPath, url.PathEscape(ticker), from.Unix(), to.Unix())

	var resp chartResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yahoo.FetchDailyBars %s %d: %w", ticker, year, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo.FetchDailyBars %s %d: %s: %s",
			ticker, year, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	return mapBars(ticker, resp.Chart.Result[0]), nil
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// mapBars convierte los arrays paralelos del chart en barras de dominio.
func mapBars(ticker string, r chartResult) []domain.Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	bars := make([]domain.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		bars = append(bars, domain.Bar{
			Symbol: ticker,
			Date:   domain.Day(time.Unix(ts, 0)),
			Open:   deref(q.Open, i),
			High:   deref(q.High, i),
			Low:    deref(q.Low, i),
			Close:  deref(q.Close, i),
			Volume: deref(q.Volume, i),
		})
	}
	return bars
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}
