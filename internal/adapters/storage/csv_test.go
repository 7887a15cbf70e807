package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	root := t.TempDir()
	return NewCSVStore(
		filepath.Join(root, "stocks"),
		filepath.Join(root, "indexes"),
		filepath.Join(root, "news"),
		filepath.Join(root, "stock_news.csv"),
		filepath.Join(root, "stock_news_labeled.csv"),
	)
}

func testDay(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func testBars() []domain.Bar {
	return []domain.Bar{
		{Symbol: "AAPL", Date: testDay("2024-01-02"), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		{Symbol: "AAPL", Date: testDay("2024-01-03"), Open: 101, High: 103, Low: 100, Close: 102, Volume: 1100},
	}
}

func TestCSVStore_PriceShardRoundTrip(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.HasPriceShard("aapl", 2024))
	require.NoError(t, store.SavePriceShard("aapl", 2024, testBars()))
	assert.True(t, store.HasPriceShard("aapl", 2024))
	assert.True(t, store.HasPriceShard("AAPL", 2024), "el nombre del shard es case-insensitive")

	bars, err := store.LoadPriceRows()
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, testDay("2024-01-02"), bars[0].Date)
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 1100.0, bars[1].Volume)
}

func TestCSVStore_NewsShardRoundTrip(t *testing.T) {
	store := newTestStore(t)

	headlines := []domain.ScoredHeadline{
		{Symbol: "AAPL", Title: "record earnings, shares up", Published: testDay("2024-03-01"), Sentiment: 0.42},
		{Symbol: "AAPL", Title: "guidance cut", Published: testDay("2025-06-15"), Sentiment: -0.3},
	}
	require.NoError(t, store.SaveNewsShard("aapl", 2024, 2025, headlines))
	assert.True(t, store.HasNewsShard("aapl", 2024, 2025))

	rows, err := store.LoadNewsRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "record earnings, shares up", rows[0].Title)
	assert.Equal(t, 0.42, rows[0].Sentiment)
	assert.Equal(t, testDay("2025-06-15"), rows[1].Published)
}

func TestCSVStore_LoadPriceRows_IgnoresDerivedFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SavePriceShard("aapl", 2024, testBars()))

	// archivos que casan el patrón de año pero no son shards crudos
	for _, name := range []string{"news_aapl_2024.csv", "index_sp500_2024.csv", "merged_2024.csv", "notes.txt"} {
		path := filepath.Join(filepath.Dir(store.mergedPath), "stocks", name)
		require.NoError(t, os.WriteFile(path, []byte("symbol,date\nX,2024-01-02\n"), 0o644))
	}

	bars, err := store.LoadPriceRows()
	require.NoError(t, err)
	assert.Len(t, bars, 2, "solo el shard crudo aapl_2024.csv se ingiere")
}

func TestCSVStore_LoadPriceRows_SkipsShardWithoutRequiredColumns(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SavePriceShard("aapl", 2024, testBars()))

	bad := filepath.Join(filepath.Dir(store.mergedPath), "stocks", "msft_2024.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Open,Close\n100,101\n"), 0o644))

	bars, err := store.LoadPriceRows()
	require.NoError(t, err, "un shard inválido se salta, no tumba la carga")
	assert.Len(t, bars, 2)
}

func TestCSVStore_LoadPriceRows_MissingDirIsAnError(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadPriceRows()
	assert.ErrorContains(t, err, "storage.LoadPriceRows")
}

func TestCSVStore_LoadNewsRows_MissingDirIsAnError(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadNewsRows()
	assert.ErrorContains(t, err, "storage.LoadNewsRows")
}

func TestCSVStore_BadNumericFieldGetsFillValue(t *testing.T) {
	store := newTestStore(t)

	shard := filepath.Join(filepath.Dir(store.mergedPath), "stocks", "aapl_2024.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(shard), 0o755))
	content := "symbol,date,Open,High,Low,Close,Volume\n" +
		"AAPL,2024-01-02,not-a-number,102,99,101,n/a\n"
	require.NoError(t, os.WriteFile(shard, []byte(content), 0o644))

	bars, err := store.LoadPriceRows()
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.True(t, math.IsNaN(bars[0].Open), "precio no parseable → NaN")
	assert.Equal(t, 0.0, bars[0].Volume, "volumen no parseable → 0")
}

func TestCSVStore_UnparseableDateRowIsSkipped(t *testing.T) {
	store := newTestStore(t)

	shard := filepath.Join(filepath.Dir(store.mergedPath), "stocks", "aapl_2024.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(shard), 0o755))
	content := "symbol,date,Open,High,Low,Close,Volume\n" +
		"AAPL,garbage,100,102,99,101,1000\n" +
		"AAPL,2024-01-03,101,103,100,102,1100\n"
	require.NoError(t, os.WriteFile(shard, []byte(content), 0o644))

	bars, err := store.LoadPriceRows()
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, testDay("2024-01-03"), bars[0].Date)
}

func TestCSVStore_MergedRoundTrip_NaNAsEmptyField(t *testing.T) {
	store := newTestStore(t)

	rows := []domain.MergedRow{
		{Symbol: "AAPL", Date: testDay("2024-01-03"), Open: 101, High: 103, Low: 100, Close: 102, Volume: 1100, Sentiment: 0.2, PercentChange: 0.99},
		{Symbol: "AAPL", Date: testDay("2024-01-02"), Open: math.NaN(), High: math.NaN(), Low: 99, Close: 101, Volume: 1000, Sentiment: 0, PercentChange: math.NaN()},
	}
	require.NoError(t, store.WriteMerged(rows))

	got, err := store.ReadMerged()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[0], got[0], "el orden de escritura se preserva")
	assert.True(t, math.IsNaN(got[1].Open), "el campo vacío vuelve como NaN")
	assert.True(t, math.IsNaN(got[1].PercentChange))
	assert.Equal(t, 99.0, got[1].Low)
}

func TestCSVStore_WriteLabeled_Header(t *testing.T) {
	store := newTestStore(t)

	rows := []domain.LabeledRow{{
		MergedRow: domain.MergedRow{Symbol: "AAPL", Date: testDay("2024-01-02"), Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000, Sentiment: 0.1, PercentChange: 1.0},
		Tomorrow:  102,
		Target:    1,
	}}
	require.NoError(t, store.WriteLabeled(rows))

	records, err := readCSV(store.labeledPath)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, labeledHeader, records[0])
	assert.Equal(t, "102", records[1][9], "columna Tomorrow")
	assert.Equal(t, "1", records[1][10], "columna Target")
}

func TestCSVStore_ShardManifest(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SavePriceShard("msft", 2024, testBars()))
	require.NoError(t, store.SavePriceShard("aapl", 2024, testBars()))
	require.NoError(t, store.SaveNewsShard("aapl", 2024, 2025, []domain.ScoredHeadline{
		{Symbol: "AAPL", Title: "x", Published: testDay("2024-03-01"), Sentiment: 0.1},
	}))

	infos, err := store.ShardManifest()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Name, infos[i].Name, "el manifest está ordenado por nombre")
	}
	for _, info := range infos {
		assert.Positive(t, info.Size)
		assert.False(t, info.ModTime.IsZero())
	}
}

func TestCSVStore_ShardManifest_MissingDirsAreEmpty(t *testing.T) {
	store := newTestStore(t)
	infos, err := store.ShardManifest()
	require.NoError(t, err, "sin directorios todavía no hay shards, no hay error")
	assert.Empty(t, infos)
}

func TestCSVStore_IndexShardName(t *testing.T) {
	store := newTestStore(t)
	bars := []domain.Bar{{Symbol: "S&P500", Date: testDay("2024-01-02"), Open: 4700, High: 4750, Low: 4690, Close: 4740, Volume: 0}}
	require.NoError(t, store.SaveIndexShard("S&P500", 2024, bars))
	assert.True(t, store.HasIndexShard("S&P500", 2024))

	_, err := os.Stat(filepath.Join(filepath.Dir(store.mergedPath), "indexes", "index_s&p500_2024.csv"))
	assert.NoError(t, err)
}
