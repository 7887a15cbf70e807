package ports

import (
	"context"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

// Notifier presenta el resumen de la ejecución al usuario.
type Notifier interface {
	// Summary muestra el resumen de la ejecución completa.
	// En la implementación de consola, imprime tablas formateadas.
	Summary(ctx context.Context, s domain.RunSummary) error
}
