package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Resolve_Aliases(t *testing.T) {
	schema := PriceShardSchema()

	// header con el nombre de columna de la fuente ("Date" en vez de "date")
	idx, err := schema.Resolve([]string{"symbol", "Date", "Open", "Close"})
	require.NoError(t, err)

	assert.Equal(t, 0, idx["symbol"])
	assert.Equal(t, 1, idx["date"], "debe aceptar el alias Date")
	assert.Equal(t, 2, idx["Open"])
	assert.Equal(t, 3, idx["Close"])
	assert.Equal(t, -1, idx["Volume"], "columna opcional ausente queda en -1")
}

func TestSchema_Resolve_CaseInsensitive(t *testing.T) {
	schema := NewsShardSchema()

	idx, err := schema.Resolve([]string{"SYMBOL", "Title", "published_date"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx["symbol"])
	assert.Equal(t, 1, idx["title"])
	assert.Equal(t, 2, idx["date"])
}

func TestSchema_Resolve_MissingRequired(t *testing.T) {
	schema := PriceShardSchema()

	_, err := schema.Resolve([]string{"date", "Open", "Close"})
	assert.ErrorContains(t, err, "symbol")

	_, err = schema.Resolve([]string{"symbol", "Open", "Close"})
	assert.ErrorContains(t, err, "date")
}

func TestSchema_FillPolicies(t *testing.T) {
	prices := PriceShardSchema()
	assert.True(t, math.IsNaN(prices.FillFor("Open")), "precio ausente → NaN")
	assert.Equal(t, 0.0, prices.FillFor("Volume"), "volumen ausente → 0")

	news := NewsShardSchema()
	assert.Equal(t, 0.0, news.FillFor("sentiment"), "sentimiento ausente → neutro")
}
