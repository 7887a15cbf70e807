package domain

import (
	"math"
	"time"
)

// MergedRow es una barra de precio con el sentimiento medio del día.
// Invariante: Sentiment nunca es NaN en la salida del merge (sin noticias
// para ese día → 0.0). Open/Close/PercentChange sí pueden ser NaN cuando
// la coerción numérica del shard de origen falló.
type MergedRow struct {
	Symbol        string
	Date          time.Time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	Sentiment     float64
	PercentChange float64
}

// DateKey devuelve la fecha en la forma canónica YYYY-MM-DD.
func (r MergedRow) DateKey() string {
	return r.Date.Format(DateLayout)
}

// LabeledRow es un MergedRow con el cierre del siguiente día de trading
// del mismo símbolo y la etiqueta binaria de dirección.
// Invariante: como máximo una fila por (símbolo, fecha); las filas sin
// sucesor conocido no existen en la tabla etiquetada.
type LabeledRow struct {
	MergedRow
	Tomorrow float64 // cierre del siguiente día de trading del símbolo
	Target   int     // 1 si Tomorrow > Close, 0 en caso contrario
}

// Feature devuelve el valor de la columna pedida por su nombre canónico.
// Devuelve (0, false) para nombres desconocidos.
func (r LabeledRow) Feature(name string) (float64, bool) {
	switch name {
	case "sentiment":
		return r.Sentiment, true
	case "percent_change":
		return r.PercentChange, true
	case "Volume":
		return r.Volume, true
	case "Open":
		return r.Open, true
	case "High":
		return r.High, true
	case "Low":
		return r.Low, true
	case "Close":
		return r.Close, true
	}
	return 0, false
}

// PercentChange es la fórmula canónica de cambio porcentual intradía:
// (close - open) / open * 100. Devuelve NaN si algún operando es NaN o
// si open es cero. Es la ÚNICA definición del pipeline: el merge la
// calcula y el etiquetado la reutiliza cuando la columna viene ausente.
func PercentChange(open, close float64) float64 {
	if math.IsNaN(open) || math.IsNaN(close) || open == 0 {
		return math.NaN()
	}
	return (close - open) / open * 100
}
