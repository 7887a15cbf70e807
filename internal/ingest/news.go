package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ports"
)

// News ingiere titulares por símbolo × bienio y los puntúa con el
// scorer ANTES de persistir: el shard sale a disco ya con su columna
// de sentimiento, así el merge nunca mezcla shards puntuados con crudos.
type News struct {
	provider ports.NewsProvider
	scorer   ports.SentimentScorer
	store    ports.ObservationStore
	symbols  []string
	fromYear int
	toYear   int
}

// NewNews crea el ingestor de noticias.
func NewNews(provider ports.NewsProvider, scorer ports.SentimentScorer, store ports.ObservationStore, symbols []string, fromYear, toYear int) *News {
	return &News{
		provider: provider,
		scorer:   scorer,
		store:    store,
		symbols:  symbols,
		fromYear: fromYear,
		toYear:   toYear,
	}
}

// Run ejecuta la ingesta completa por ventanas de dos años.
func (n *News) Run(ctx context.Context) Stats {
	var stats Stats
	for _, symbol := range n.symbols {
		for _, window := range bienniums(n.fromYear, n.toYear) {
			if ctx.Err() != nil {
				return stats
			}

			start, end := window[0], window[1]
			if n.store.HasNewsShard(symbol, start, end) {
				slog.Debug("skipping news shard, already exists",
					"symbol", symbol, "from", start, "to", end)
				stats.Skipped++
				continue
			}

			from := time.Date(start, 1, 1, 0, 0, 0, 0, time.UTC)
			to := time.Date(end, 12, 31, 0, 0, 0, 0, time.UTC)

			headlines, err := n.provider.FetchHeadlines(ctx, symbol, from, to)
			if err != nil {
				slog.Warn("news fetch failed", "symbol", symbol, "from", start, "to", end, "err", err)
				stats.Failed++
				continue
			}
			if len(headlines) == 0 {
				slog.Info("no articles", "symbol", symbol, "from", start, "to", end)
				continue
			}

			scored := make([]domain.ScoredHeadline, 0, len(headlines))
			for _, h := range headlines {
				scored = append(scored, domain.ScoredHeadline{
					Symbol:    strings.ToUpper(h.Symbol),
					Title:     h.Title,
					Published: h.Published,
					Sentiment: n.scorer.Compound(h.Title),
				})
			}

			if err := n.store.SaveNewsShard(symbol, start, end, scored); err != nil {
				slog.Warn("news shard save failed", "symbol", symbol, "from", start, "to", end, "err", err)
				stats.Failed++
				continue
			}

			slog.Info("news shard saved", "symbol", symbol, "from", start, "to", end, "articles", len(scored))
			stats.Fetched++
		}
	}
	return stats
}

// bienniums parte [from, to] en ventanas de dos años: [2020 2021],
// [2022 2023], [2024 2024]...
func bienniums(from, to int) [][2]int {
	var windows [][2]int
	for year := from; year <= to; year += 2 {
		end := year + 1
		if end > to {
			end = to
		}
		windows = append(windows, [2]int{year, end})
	}
	return windows
}
