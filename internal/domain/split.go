package domain

import "time"

// Split es la partición temporal train/test de la tabla etiquetada.
// Invariante: toda fila etiquetada con features completas está en
// exactamente una de las dos particiones; train = fecha < Cutoff,
// test = fecha >= Cutoff. El orden de filas de cada partición preserva
// el orden de la tabla de origen.
type Split struct {
	Cutoff   time.Time
	Features []string

	TrainX [][]float64
	TestX  [][]float64
	TrainY []int
	TestY  []int
}

// DefaultHoldoutDays es la ventana de test por defecto cuando no se da
// un cutoff explícito: máxima fecha observada menos 180 días.
const DefaultHoldoutDays = 180

// RunSummary es el resumen de una ejecución completa del pipeline,
// pensado para el notificador de consola.
type RunSummary struct {
	RunID   string
	Started time.Time

	PricesFetched  int
	PricesSkipped  int
	PricesFailed   int
	IndexesFetched int
	IndexesSkipped int
	IndexesFailed  int
	NewsFetched    int
	NewsSkipped    int
	NewsFailed     int

	MergedRows     int
	MergeFromCache bool
	LabeledRows    int
	Symbols        int

	Cutoff    time.Time
	TrainRows int
	TestRows  int
}
