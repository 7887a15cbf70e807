package ports

// SentimentScorer puntúa el sentimiento de un texto.
type SentimentScorer interface {
	// Compound devuelve el score compound ∈ [-1, 1] del texto.
	// Debe ser determinista: el mismo texto produce siempre el mismo score.
	Compound(text string) float64
}
