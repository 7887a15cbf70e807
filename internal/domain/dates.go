package domain

import (
	"fmt"
	"time"
)

// DateLayout es la forma canónica de fecha en todos los CSVs del pipeline.
const DateLayout = "2006-01-02"

// dayLayouts son los formatos de fecha aceptados en shards de entrada.
// Los proveedores devuelven desde "2024-01-02" hasta timestamps RFC3339
// con microsegundos; todos se normalizan al día UTC.
var dayLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
}

// ParseDay parsea una fecha en cualquiera de los formatos aceptados y la
// trunca a medianoche UTC, descartando la hora del día.
func ParseDay(s string) (time.Time, error) {
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("domain.ParseDay: unrecognized date %q", s)
}

// Day trunca un instante a medianoche UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
