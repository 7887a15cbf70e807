package pipeline

// splitter.go — partición temporal train/test de la tabla etiquetada.
//
// train = fecha < cutoff, test = fecha >= cutoff, sin solape y sin
// omisión salvo las filas con algún feature ausente. Una partición
// vacía es una señal de usabilidad (cutoff mal elegido, pocos datos),
// no un error.

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

// Splitter implementa la etapa de split del pipeline.
type Splitter struct {
	features    []string
	holdoutDays int
}

// NewSplitter crea el Splitter con las columnas de features pedidas y la
// ventana del cutoff automático en días.
func NewSplitter(features []string, holdoutDays int) *Splitter {
	if holdoutDays <= 0 {
		holdoutDays = domain.DefaultHoldoutDays
	}
	return &Splitter{features: features, holdoutDays: holdoutDays}
}

// Split particiona la tabla etiquetada. Si cutoff es cero, se usa la
// máxima fecha observada menos la ventana de holdout. El orden de filas
// de cada partición preserva el de la tabla de entrada.
func (s *Splitter) Split(labeled []domain.LabeledRow, cutoff time.Time) (domain.Split, error) {
	split := domain.Split{Features: append([]string{}, s.features...)}

	for _, f := range s.features {
		if _, ok := (domain.LabeledRow{}).Feature(f); !ok {
			return domain.Split{}, fmt.Errorf("pipeline.Split: unknown feature column %q", f)
		}
	}

	if len(labeled) == 0 {
		slog.Warn("split over empty labeled table")
		split.Cutoff = cutoff
		return split, nil
	}

	if cutoff.IsZero() {
		maxDate := labeled[0].Date
		for _, row := range labeled[1:] {
			if row.Date.After(maxDate) {
				maxDate = row.Date
			}
		}
		cutoff = maxDate.AddDate(0, 0, -s.holdoutDays)
	}
	split.Cutoff = cutoff

	for _, row := range labeled {
		features, ok := featureVector(row, s.features)
		if !ok {
			continue
		}
		if row.Date.Before(cutoff) {
			split.TrainX = append(split.TrainX, features)
			split.TrainY = append(split.TrainY, row.Target)
		} else {
			split.TestX = append(split.TestX, features)
			split.TestY = append(split.TestY, row.Target)
		}
	}

	if len(split.TrainY) == 0 || len(split.TestY) == 0 {
		slog.Warn("degenerate split, consider a different cutoff or more data",
			"train", len(split.TrainY),
			"test", len(split.TestY),
			"cutoff", cutoff.Format(domain.DateLayout),
		)
	}

	return split, nil
}

// featureVector extrae las columnas pedidas de la fila; (nil, false) si
// algún valor está ausente.
func featureVector(row domain.LabeledRow, features []string) ([]float64, bool) {
	vec := make([]float64, 0, len(features))
	for _, f := range features {
		v, _ := row.Feature(f)
		if math.IsNaN(v) {
			return nil, false
		}
		vec = append(vec, v)
	}
	return vec, true
}
