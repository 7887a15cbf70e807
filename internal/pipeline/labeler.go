package pipeline

// labeler.go — deriva la etiqueta de dirección del día siguiente.
//
// El orden ascendente por (símbolo, fecha) es load-bearing: el cierre
// de mañana es el Close de la fila inmediatamente siguiente del MISMO
// símbolo. Los duplicados por (símbolo, fecha) — shards de fetch que se
// solapan — colapsan a la última fila en ese orden ANTES del shift, y
// la última fecha de cada símbolo se descarta porque no tiene sucesor.

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ports"
)

// Labeler implementa la etapa de etiquetado del pipeline.
type Labeler struct {
	panel ports.PanelStore
}

// NewLabeler crea el Labeler.
func NewLabeler(panel ports.PanelStore) *Labeler {
	return &Labeler{panel: panel}
}

// Label transforma el panel mergeado en el panel etiquetado y lo
// persiste. No muta la entrada: devuelve filas nuevas.
func (l *Labeler) Label(merged []domain.MergedRow) ([]domain.LabeledRow, error) {
	rows := normalize(merged)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Symbol != rows[j].Symbol {
			return rows[i].Symbol < rows[j].Symbol
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	rows = dedupKeepLast(rows)

	labeled := make([]domain.LabeledRow, 0, len(rows))
	for i, row := range rows {
		// el sucesor es la fila siguiente solo si es del mismo símbolo
		if i+1 >= len(rows) || rows[i+1].Symbol != row.Symbol {
			continue
		}
		tomorrow := rows[i+1].Close
		if math.IsNaN(tomorrow) {
			continue
		}

		target := 0
		if tomorrow > row.Close {
			target = 1
		}
		labeled = append(labeled, domain.LabeledRow{
			MergedRow: row,
			Tomorrow:  tomorrow,
			Target:    target,
		})
	}

	if err := l.panel.WriteLabeled(labeled); err != nil {
		return nil, fmt.Errorf("pipeline.Label: persist: %w", err)
	}

	slog.Info("label complete", "in", len(merged), "labeled", len(labeled))
	return labeled, nil
}

// normalize copia las filas aplicando la política de relleno: volumen y
// sentimiento ausentes valen 0, percent_change ausente se recalcula con
// la fórmula canónica (que vuelve a dar NaN si open/close no parsearon).
func normalize(merged []domain.MergedRow) []domain.MergedRow {
	rows := make([]domain.MergedRow, len(merged))
	copy(rows, merged)
	for i := range rows {
		if math.IsNaN(rows[i].Volume) {
			rows[i].Volume = 0
		}
		if math.IsNaN(rows[i].Sentiment) {
			rows[i].Sentiment = 0
		}
		if math.IsNaN(rows[i].PercentChange) {
			rows[i].PercentChange = domain.PercentChange(rows[i].Open, rows[i].Close)
		}
	}
	return rows
}

// dedupKeepLast colapsa duplicados por (símbolo, fecha) quedándose con
// la última aparición. Asume entrada ya ordenada: los duplicados son
// adyacentes.
func dedupKeepLast(rows []domain.MergedRow) []domain.MergedRow {
	if len(rows) == 0 {
		return rows
	}
	out := make([]domain.MergedRow, 0, len(rows))
	for _, row := range rows {
		if n := len(out); n > 0 && out[n-1].Symbol == row.Symbol && out[n-1].Date.Equal(row.Date) {
			out[n-1] = row
			continue
		}
		out = append(out, row)
	}
	return out
}
