package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

// NewsProvider obtiene titulares de noticias por símbolo y ventana de
// fechas. Pagina internamente hasta agotar los resultados.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, symbol string, from, to time.Time) ([]domain.Headline, error)
}
