package marketaux

// news.go — endpoint /v1/news/all de Marketaux.
//
// Pagina automáticamente con el parámetro page hasta agotar los
// resultados (returned < limit) o alcanzar maxPages, lo que llegue
// primero. maxPages acota la cuota quemada por un símbolo muy ruidoso.

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

const (
	newsPath = "/v1/news/all"
	maxPages = 20
)

// FetchHeadlines devuelve los titulares del símbolo publicados dentro de
// [from, to]. Implementa ports.NewsProvider.
func (c *Client) FetchHeadlines(ctx context.Context, symbol string, from, to time.Time) ([]domain.Headline, error) {
	var all []domain.Headline

	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("symbols", symbol)
		q.Set("api_token", c.token)
		q.Set("published_after", from.Format(domain.DateLayout))
		q.Set("published_before", to.Format(domain.DateLayout))
		q.Set("language", "en")
		q.Set("page", fmt.Sprintf("%d", page))

		var resp newsResponse
		if err := c.get(ctx, c.base+newsPath+"?"+q.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("marketaux.FetchHeadlines %s: %w", symbol, err)
		}

		for _, a := range resp.Data {
			published, err := domain.ParseDay(a.PublishedAt)
			if err != nil {
				slog.Debug("skipping article with bad published_at",
					"symbol", symbol, "published_at", a.PublishedAt)
				continue
			}
			all = append(all, domain.Headline{
				Symbol:    symbol,
				Title:     a.Title,
				Published: published,
			})
		}

		slog.Debug("fetched news page",
			"symbol", symbol,
			"page", page,
			"returned", resp.Meta.Returned,
			"total", len(all),
		)

		if resp.Meta.Returned < resp.Meta.Limit || resp.Meta.Returned == 0 {
			break
		}
	}

	return all, nil
}

type newsResponse struct {
	Meta struct {
		Found    int `json:"found"`
		Returned int `json:"returned"`
		Limit    int `json:"limit"`
		Page     int `json:"page"`
	} `json:"meta"`
	Data []newsArticle `json:"data"`
}

type newsArticle struct {
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
}
