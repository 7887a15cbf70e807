package pipeline_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ingest"
	"github.com/alejandrodnm/stockpulse/internal/pipeline"
	"github.com/alejandrodnm/stockpulse/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct {
	bars        []domain.Bar
	news        []domain.ScoredHeadline
	shards      []ports.ShardInfo
	priceErr    error
	newsErr     error
	manifestErr error

	loadedPrices bool
	loadedNews   bool
}

func (m *mockStore) HasPriceShard(string, int) bool                           { return false }
func (m *mockStore) SavePriceShard(string, int, []domain.Bar) error           { return nil }
func (m *mockStore) HasIndexShard(string, int) bool                           { return false }
func (m *mockStore) SaveIndexShard(string, int, []domain.Bar) error           { return nil }
func (m *mockStore) HasNewsShard(string, int, int) bool                       { return false }
func (m *mockStore) SaveNewsShard(string, int, int, []domain.ScoredHeadline) error { return nil }

func (m *mockStore) LoadPriceRows() ([]domain.Bar, error) {
	m.loadedPrices = true
	return m.bars, m.priceErr
}

func (m *mockStore) LoadNewsRows() ([]domain.ScoredHeadline, error) {
	m.loadedNews = true
	return m.news, m.newsErr
}

func (m *mockStore) ShardManifest() ([]ports.ShardInfo, error) {
	return m.shards, m.manifestErr
}

type mockPanel struct {
	mergedWritten   []domain.MergedRow
	wroteMerged     bool
	persisted       []domain.MergedRow
	readErr         error
	labeledWritten  []domain.LabeledRow
	writeLabeledErr error
}

func (m *mockPanel) WriteMerged(rows []domain.MergedRow) error {
	m.wroteMerged = true
	m.mergedWritten = rows
	return nil
}

func (m *mockPanel) ReadMerged() ([]domain.MergedRow, error) {
	return m.persisted, m.readErr
}

func (m *mockPanel) MergedPath() string { return "data/stock_news.csv" }

func (m *mockPanel) WriteLabeled(rows []domain.LabeledRow) error {
	m.labeledWritten = rows
	return m.writeLabeledErr
}

type mockCache struct {
	entries  map[string]string
	recorded []string
}

func (m *mockCache) Lookup(stage, fingerprint string) (string, bool) {
	path, ok := m.entries[stage+"|"+fingerprint]
	return path, ok
}

func (m *mockCache) Record(_, stage, fingerprint, outputPath string) error {
	if m.entries == nil {
		m.entries = make(map[string]string)
	}
	m.entries[stage+"|"+fingerprint] = outputPath
	m.recorded = append(m.recorded, stage)
	return nil
}

func (m *mockCache) Close() error { return nil }

type mockIngestor struct {
	stats ingest.Stats
	ran   bool
}

func (m *mockIngestor) Run(_ context.Context) ingest.Stats {
	m.ran = true
	return m.stats
}

type mockNotifier struct {
	summary domain.RunSummary
	called  bool
}

func (m *mockNotifier) Summary(_ context.Context, s domain.RunSummary) error {
	m.summary = s
	m.called = true
	return nil
}

// --- helpers ---

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func makeBar(symbol, date string, open, close float64) domain.Bar {
	return domain.Bar{
		Symbol: symbol,
		Date:   day(date),
		Open:   open,
		High:   close + 1,
		Low:    open - 1,
		Close:  close,
		Volume: 1000,
	}
}

func makeHeadline(symbol, date string, sentiment float64) domain.ScoredHeadline {
	return domain.ScoredHeadline{
		Symbol:    symbol,
		Title:     "headline",
		Published: day(date),
		Sentiment: sentiment,
	}
}

func makeMerged(symbol, date string, open, close float64) domain.MergedRow {
	return domain.MergedRow{
		Symbol:        symbol,
		Date:          day(date),
		Open:          open,
		Close:         close,
		Volume:        1000,
		Sentiment:     0.1,
		PercentChange: domain.PercentChange(open, close),
	}
}

// --- tests ---

func TestPipeline_Run_EndToEnd(t *testing.T) {
	store := &mockStore{
		bars: []domain.Bar{
			makeBar("AAPL", "2024-01-02", 100, 110),
			makeBar("AAPL", "2024-01-03", 110, 105),
			makeBar("AAPL", "2024-01-04", 105, 120),
		},
		news: []domain.ScoredHeadline{makeHeadline("AAPL", "2024-01-02", 0.5)},
	}
	panel := &mockPanel{}
	cache := &mockCache{}
	notifier := &mockNotifier{}
	prices := &mockIngestor{stats: ingest.Stats{Fetched: 2, Skipped: 1}}

	cfg := pipeline.DefaultConfig()
	cfg.Cutoff = day("2024-01-04")
	p := pipeline.New(cfg, prices, nil, nil, store, panel, cache, notifier)

	split, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, prices.ran)
	assert.True(t, panel.wroteMerged)
	require.Len(t, panel.labeledWritten, 2, "la última fecha no tiene sucesor")
	assert.Len(t, split.TrainY, 2)
	assert.Empty(t, split.TestY, "el cutoff deja todo en train")

	require.True(t, notifier.called)
	assert.Equal(t, 3, notifier.summary.MergedRows)
	assert.Equal(t, 2, notifier.summary.LabeledRows)
	assert.Equal(t, 1, notifier.summary.Symbols)
	assert.Equal(t, 2, notifier.summary.PricesFetched)
	assert.NotEmpty(t, notifier.summary.RunID)
}

func TestPipeline_Run_SkipIngest(t *testing.T) {
	store := &mockStore{
		bars: []domain.Bar{makeBar("AAPL", "2024-01-02", 100, 110)},
		news: []domain.ScoredHeadline{makeHeadline("AAPL", "2024-01-02", 0.5)},
	}
	prices := &mockIngestor{}
	news := &mockIngestor{}

	cfg := pipeline.DefaultConfig()
	cfg.SkipIngest = true
	p := pipeline.New(cfg, prices, nil, news, store, &mockPanel{}, nil, nil)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, prices.ran, "skip-ingest no debe tocar los ingestores")
	assert.False(t, news.ran)
}

func TestPipeline_Run_EmptyMergeShortCircuits(t *testing.T) {
	store := &mockStore{} // sin shards de noticias
	panel := &mockPanel{}
	notifier := &mockNotifier{}

	cfg := pipeline.DefaultConfig()
	cfg.SkipIngest = true
	p := pipeline.New(cfg, nil, nil, nil, store, panel, nil, notifier)

	split, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, split.TrainY)
	assert.Empty(t, split.TestY)
	assert.Nil(t, panel.labeledWritten, "sin merge no se etiqueta nada")
	assert.True(t, notifier.called, "el resumen se emite igualmente")
}

func TestPipeline_Run_NaNTargetNeverProduced(t *testing.T) {
	// un Close que no parseó produce NaN: la fila con sucesor NaN se
	// descarta y nunca llega al split con target indefinido
	bars := []domain.Bar{
		makeBar("AAPL", "2024-01-02", 100, 110),
		makeBar("AAPL", "2024-01-03", 110, math.NaN()),
		makeBar("AAPL", "2024-01-04", 105, 120),
	}
	store := &mockStore{
		bars: bars,
		news: []domain.ScoredHeadline{makeHeadline("AAPL", "2024-01-02", 0.5)},
	}

	cfg := pipeline.DefaultConfig()
	cfg.SkipIngest = true
	p := pipeline.New(cfg, nil, nil, nil, store, &mockPanel{}, nil, nil)

	split, err := p.Run(context.Background())
	require.NoError(t, err)
	for _, y := range append(append([]int{}, split.TrainY...), split.TestY...) {
		assert.Contains(t, []int{0, 1}, y)
	}
}
