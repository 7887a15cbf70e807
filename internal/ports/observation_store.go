package ports

import (
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
)

// ShardInfo identifica un shard persistido: se usa para calcular el
// fingerprint de entrada de una etapa.
type ShardInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ObservationStore es la colección append-only de shards CSV por
// símbolo y periodo. Los checks Has* hacen la ingesta idempotente:
// un shard ya persistido no se vuelve a fetchear.
type ObservationStore interface {
	HasPriceShard(symbol string, year int) bool
	SavePriceShard(symbol string, year int, bars []domain.Bar) error

	HasIndexShard(name string, year int) bool
	SaveIndexShard(name string, year int, bars []domain.Bar) error

	HasNewsShard(symbol string, startYear, endYear int) bool
	SaveNewsShard(symbol string, startYear, endYear int, headlines []domain.ScoredHeadline) error

	// LoadPriceRows carga todas las filas de los shards de precios que
	// califican estructuralmente (columna symbol + columna de fecha y
	// nombre de archivo de shard crudo). Shards inválidos se saltan con
	// diagnóstico. Directorio inexistente → error.
	LoadPriceRows() ([]domain.Bar, error)

	// LoadNewsRows carga todas las filas de todos los shards de noticias.
	// Directorio inexistente → error; sin shards → slice vacío.
	LoadNewsRows() ([]domain.ScoredHeadline, error)

	// ShardManifest lista los shards de precios y noticias presentes,
	// en orden determinista por nombre.
	ShardManifest() ([]ShardInfo, error)
}
