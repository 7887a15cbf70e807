package domain

import "time"

// Bar representa una barra diaria OHLCV de un símbolo o índice.
// Los valores no disponibles se representan como NaN, nunca como cero.
type Bar struct {
	Symbol string
	Date   time.Time // medianoche UTC, sin hora del día
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DateKey devuelve la fecha en la forma canónica YYYY-MM-DD.
func (b Bar) DateKey() string {
	return b.Date.Format(DateLayout)
}

// Headline es un titular de noticias tal como lo devuelve el proveedor.
type Headline struct {
	Symbol    string
	Title     string
	Published time.Time
}

// ScoredHeadline es un Headline con su score de sentimiento compound.
// Sentiment ∈ [-1, 1]; NaN si el shard de origen no traía la columna
// y el valor no pudo parsearse.
type ScoredHeadline struct {
	Symbol    string
	Title     string
	Published time.Time
	Sentiment float64
}

// DateKey devuelve la fecha de publicación en la forma canónica YYYY-MM-DD,
// descartando la hora del día.
func (h ScoredHeadline) DateKey() string {
	return h.Published.Format(DateLayout)
}
