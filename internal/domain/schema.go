package domain

import (
	"fmt"
	"math"
	"strings"
)

// Fill describe qué hacer cuando una columna opcional falta en un shard.
type Fill int

const (
	// FillNaN propaga el sentinel de valor ausente (NaN).
	FillNaN Fill = iota
	// FillZero rellena con 0.0 (volumen ausente, percent_change ausente).
	FillZero
	// FillNeutral rellena con el sentimiento neutro 0.0.
	FillNeutral
)

// Value devuelve el valor de relleno de la política.
func (f Fill) Value() float64 {
	if f == FillNaN {
		return math.NaN()
	}
	return 0.0
}

// Column describe una columna esperada en un shard CSV: su nombre
// canónico, los alias aceptados de la fuente, si es obligatoria y la
// política de relleno cuando es opcional y viene ausente.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
	Fill     Fill
}

// Schema es la descripción tipada de las columnas de un shard.
// Se valida UNA vez al cargar el shard, en lugar de repartir defaults
// implícitos por cada etapa del pipeline.
type Schema struct {
	Columns []Column
}

// Resolve mapea cada columna canónica a su índice en el header dado,
// aceptando alias sin distinguir mayúsculas. Devuelve error si falta
// alguna columna obligatoria; las opcionales ausentes quedan en -1 y el
// caller aplica la política de relleno.
func (s Schema) Resolve(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(s.Columns))
	for _, col := range s.Columns {
		idx[col.Name] = -1
		for i, h := range header {
			if matchesColumn(col, h) {
				idx[col.Name] = i
				break
			}
		}
		if idx[col.Name] == -1 && col.Required {
			return nil, fmt.Errorf("domain.Schema: missing required column %q", col.Name)
		}
	}
	return idx, nil
}

// FillFor devuelve el valor de relleno configurado para la columna.
func (s Schema) FillFor(name string) float64 {
	for _, col := range s.Columns {
		if col.Name == name {
			return col.Fill.Value()
		}
	}
	return math.NaN()
}

func matchesColumn(col Column, header string) bool {
	if strings.EqualFold(header, col.Name) {
		return true
	}
	for _, a := range col.Aliases {
		if strings.EqualFold(header, a) {
			return true
		}
	}
	return false
}

// PriceShardSchema es el schema de los shards de precios: símbolo y fecha
// obligatorios (la fecha acepta el nombre de la fuente), precios a NaN si
// no parsean, volumen a 0 si falta.
func PriceShardSchema() Schema {
	return Schema{Columns: []Column{
		{Name: "symbol", Required: true},
		{Name: "date", Aliases: []string{"Date"}, Required: true},
		{Name: "Open", Fill: FillNaN},
		{Name: "High", Fill: FillNaN},
		{Name: "Low", Fill: FillNaN},
		{Name: "Close", Fill: FillNaN},
		{Name: "Volume", Fill: FillZero},
	}}
}

// NewsShardSchema es el schema de los shards de noticias: la columna de
// sentimiento puede no existir todavía y entonces vale el neutro 0.0.
func NewsShardSchema() Schema {
	return Schema{Columns: []Column{
		{Name: "symbol", Required: true},
		{Name: "title", Required: true},
		{Name: "date", Aliases: []string{"published_date"}, Required: true},
		{Name: "sentiment", Fill: FillNeutral},
	}}
}
