package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/stockpulse/internal/ports"
)

// Stats resume una pasada de ingesta.
type Stats struct {
	Fetched int // shards nuevos persistidos
	Skipped int // shards que ya existían
	Failed  int // unidades de trabajo que fallaron (logged, no fatales)
}

// Prices ingiere barras diarias por símbolo × año calendario.
// Cada (símbolo, año) es una unidad de trabajo independiente: si su
// fetch falla se loguea y se sigue con la siguiente.
type Prices struct {
	provider ports.PriceProvider
	store    ports.ObservationStore
	symbols  []string
	fromYear int
	toYear   int
}

// NewPrices crea el ingestor de precios.
func NewPrices(provider ports.PriceProvider, store ports.ObservationStore, symbols []string, fromYear, toYear int) *Prices {
	return &Prices{
		provider: provider,
		store:    store,
		symbols:  symbols,
		fromYear: fromYear,
		toYear:   toYear,
	}
}

// Run ejecuta la ingesta completa. Los shards ya persistidos no se
// vuelven a fetchear.
func (p *Prices) Run(ctx context.Context) Stats {
	var stats Stats
	for _, symbol := range p.symbols {
		for year := p.fromYear; year <= p.toYear; year++ {
			if ctx.Err() != nil {
				return stats
			}

			if p.store.HasPriceShard(symbol, year) {
				slog.Debug("skipping price shard, already exists", "symbol", symbol, "year", year)
				stats.Skipped++
				continue
			}

			bars, err := p.provider.FetchDailyBars(ctx, symbol, year)
			if err != nil {
				slog.Warn("price fetch failed", "symbol", symbol, "year", year, "err", err)
				stats.Failed++
				continue
			}
			if len(bars) == 0 {
				slog.Info("no price data", "symbol", symbol, "year", year)
				continue
			}

			for i := range bars {
				bars[i].Symbol = strings.ToUpper(symbol)
			}

			if err := p.store.SavePriceShard(symbol, year, bars); err != nil {
				slog.Warn("price shard save failed", "symbol", symbol, "year", year, "err", err)
				stats.Failed++
				continue
			}

			slog.Info("price shard saved", "symbol", symbol, "year", year, "bars", len(bars))
			stats.Fetched++
		}
	}
	return stats
}
