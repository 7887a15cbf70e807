package ports

// StageCache responde "¿esta etapa ya se computó para estas entradas?".
// La clave es (etapa, fingerprint de las entradas), no la mera existencia
// de un archivo de salida: así un cambio en los shards invalida la cache.
type StageCache interface {
	// Lookup devuelve la ruta de salida registrada para (stage, fingerprint)
	// si la etapa ya se completó con esas entradas exactas.
	Lookup(stage, fingerprint string) (outputPath string, ok bool)

	// Record registra la etapa completada y dónde quedó su salida.
	Record(runID, stage, fingerprint, outputPath string) error

	Close() error
}
