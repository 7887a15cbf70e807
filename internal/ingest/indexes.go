package ingest

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/alejandrodnm/stockpulse/internal/ports"
)

// Indexes ingiere barras diarias de índices de mercado por nombre × año.
// El shard lleva el NOMBRE del índice como símbolo (S&P500, no ^GSPC):
// el ticker solo existe de cara al proveedor.
type Indexes struct {
	provider ports.PriceProvider
	store    ports.ObservationStore
	indexes  map[string]string // nombre → ticker
	fromYear int
	toYear   int
}

// NewIndexes crea el ingestor de índices.
func NewIndexes(provider ports.PriceProvider, store ports.ObservationStore, indexes map[string]string, fromYear, toYear int) *Indexes {
	return &Indexes{
		provider: provider,
		store:    store,
		indexes:  indexes,
		fromYear: fromYear,
		toYear:   toYear,
	}
}

// Run ejecuta la ingesta de todos los índices, en orden determinista
// por nombre.
func (x *Indexes) Run(ctx context.Context) Stats {
	names := make([]string, 0, len(x.indexes))
	for name := range x.indexes {
		names = append(names, name)
	}
	sort.Strings(names)

	var stats Stats
	for _, name := range names {
		ticker := x.indexes[name]
		for year := x.fromYear; year <= x.toYear; year++ {
			if ctx.Err() != nil {
				return stats
			}

			if x.store.HasIndexShard(name, year) {
				slog.Debug("skipping index shard, already exists", "index", name, "year", year)
				stats.Skipped++
				continue
			}

			bars, err := x.provider.FetchDailyBars(ctx, ticker, year)
			if err != nil {
				slog.Warn("index fetch failed", "index", name, "ticker", ticker, "year", year, "err", err)
				stats.Failed++
				continue
			}
			if len(bars) == 0 {
				slog.Info("no index data", "index", name, "year", year)
				continue
			}

			for i := range bars {
				bars[i].Symbol = strings.ToUpper(name)
			}

			if err := x.store.SaveIndexShard(name, year, bars); err != nil {
				slog.Warn("index shard save failed", "index", name, "year", year, "err", err)
				stats.Failed++
				continue
			}

			slog.Info("index shard saved", "index", name, "year", year, "bars", len(bars))
			stats.Fetched++
		}
	}
	return stats
}
