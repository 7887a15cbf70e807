package pipeline

// merger.go — une el panel de precios con el sentimiento diario.
//
// El join es un left join de precios contra el sentimiento medio por
// (símbolo, fecha): toda barra de precio aparece exactamente una vez en
// el resultado, con sentimiento 0.0 si ese día no hubo titulares. El
// resultado se ordena por fecha descendente y se persiste.
//
// La etapa entera se salta si el manifest ya registra un merge con el
// mismo fingerprint de shards de entrada; en ese caso se devuelve el
// contenido persistido tal cual.

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ports"
)

const stageMerge = "merge"

// Merger implementa la etapa de merge del pipeline.
type Merger struct {
	store ports.ObservationStore
	panel ports.PanelStore
	cache ports.StageCache
}

// NewMerger crea el Merger. cache puede ser nil para forzar el recómputo.
func NewMerger(store ports.ObservationStore, panel ports.PanelStore, cache ports.StageCache) *Merger {
	return &Merger{store: store, panel: panel, cache: cache}
}

// Merge ejecuta la etapa. Devuelve las filas mergeadas y si vinieron de
// la cache. Sin shards de noticias o de precios devuelve vacío, no error:
// "no hay datos" se propaga, no rompe.
func (m *Merger) Merge(ctx context.Context, runID string) ([]domain.MergedRow, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	shards, err := m.store.ShardManifest()
	if err != nil {
		return nil, false, fmt.Errorf("pipeline.Merge: %w", err)
	}
	fp := Fingerprint(shards)

	if m.cache != nil {
		if path, ok := m.cache.Lookup(stageMerge, fp); ok {
			rows, err := m.panel.ReadMerged()
			if err == nil {
				slog.Info("merge already computed for these shards, skipping", "path", path)
				return rows, true, nil
			}
			slog.Warn("manifest hit but merged output unreadable, recomputing", "err", err)
		}
	}

	news, err := m.store.LoadNewsRows()
	if err != nil {
		return nil, false, fmt.Errorf("pipeline.Merge: load news: %w", err)
	}
	if len(news) == 0 {
		slog.Warn("no news shards found, nothing to merge")
		return nil, false, nil
	}

	prices, err := m.store.LoadPriceRows()
	if err != nil {
		return nil, false, fmt.Errorf("pipeline.Merge: load prices: %w", err)
	}
	if len(prices) == 0 {
		slog.Warn("no valid price shards found, nothing to merge")
		return nil, false, nil
	}

	sentiment := aggregateSentiment(news)

	rows := make([]domain.MergedRow, 0, len(prices))
	for _, bar := range prices {
		s, ok := sentiment[panelKey{bar.Symbol, bar.DateKey()}]
		if !ok {
			s = 0.0
		}
		rows = append(rows, domain.MergedRow{
			Symbol:        bar.Symbol,
			Date:          bar.Date,
			Open:          bar.Open,
			High:          bar.High,
			Low:           bar.Low,
			Close:         bar.Close,
			Volume:        bar.Volume,
			Sentiment:     s,
			PercentChange: domain.PercentChange(bar.Open, bar.Close),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	if err := m.panel.WriteMerged(rows); err != nil {
		return nil, false, fmt.Errorf("pipeline.Merge: persist: %w", err)
	}
	if m.cache != nil {
		if err := m.cache.Record(runID, stageMerge, fp, m.panel.MergedPath()); err != nil {
			slog.Warn("manifest record failed", "stage", stageMerge, "err", err)
		}
	}

	slog.Info("merge complete", "rows", len(rows), "news", len(news), "bars", len(prices))
	return rows, false, nil
}

type panelKey struct {
	symbol string
	date   string
}

// aggregateSentiment calcula la media aritmética del sentimiento por
// (símbolo, fecha). Los scores NaN no cuentan ni en la suma ni en el
// divisor; un día cuyos scores son todos NaN no produce entrada.
func aggregateSentiment(news []domain.ScoredHeadline) map[panelKey]float64 {
	type acc struct {
		sum float64
		n   int
	}
	accs := make(map[panelKey]*acc)
	for _, h := range news {
		if math.IsNaN(h.Sentiment) {
			continue
		}
		k := panelKey{h.Symbol, h.DateKey()}
		a, ok := accs[k]
		if !ok {
			a = &acc{}
			accs[k] = a
		}
		a.sum += h.Sentiment
		a.n++
	}

	means := make(map[panelKey]float64, len(accs))
	for k, a := range accs {
		means[k] = a.sum / float64(a.n)
	}
	return means
}

// Fingerprint calcula el fingerprint de entradas de una etapa: SHA-256
// sobre las líneas name|size|mtime de los shards, ya ordenados por nombre.
func Fingerprint(shards []ports.ShardInfo) string {
	h := sha256.New()
	for _, s := range shards {
		fmt.Fprintf(h, "%s|%d|%d\n", s.Name, s.Size, s.ModTime.UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
