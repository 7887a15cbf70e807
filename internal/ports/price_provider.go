package ports

import (
	"context"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

// PriceProvider obtiene barras diarias OHLCV de la fuente de mercado.
type PriceProvider interface {
	// FetchDailyBars devuelve cero o más barras diarias del ticker para
	// el año calendario dado. Un año sin datos devuelve slice vacío,
	// no error.
	FetchDailyBars(ctx context.Context, ticker string, year int) ([]domain.Bar, error)
}
