package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ingest"
	"github.com/alejandrodnm/stockpulse/internal/ports"
)

// Config contiene la configuración del pipeline.
type Config struct {
	FeatureColumns []string
	Cutoff         time.Time // cero = máxima fecha - HoldoutDays
	HoldoutDays    int
	SkipIngest     bool
}

// DefaultConfig devuelve una configuración sensata.
func DefaultConfig() Config {
	return Config{
		FeatureColumns: []string{"sentiment", "percent_change", "Volume"},
		HoldoutDays:    domain.DefaultHoldoutDays,
	}
}

// Ingestor es una pasada de ingesta ejecutable.
type Ingestor interface {
	Run(ctx context.Context) ingest.Stats
}

// Pipeline es el orquestador del job batch completo:
// ingesta → merge → label → split → resumen.
type Pipeline struct {
	cfg      Config
	prices   Ingestor
	indexes  Ingestor
	news     Ingestor
	notifier ports.Notifier
	merger   *Merger
	labeler  *Labeler
	splitter *Splitter
}

// New crea un Pipeline con todas las dependencias inyectadas.
func New(
	cfg Config,
	prices, indexes, news Ingestor,
	store ports.ObservationStore,
	panel ports.PanelStore,
	cache ports.StageCache,
	notifier ports.Notifier,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		prices:   prices,
		indexes:  indexes,
		news:     news,
		notifier: notifier,
		merger:   NewMerger(store, panel, cache),
		labeler:  NewLabeler(panel),
		splitter: NewSplitter(cfg.FeatureColumns, cfg.HoldoutDays),
	}
}

// Run ejecuta el job completo una vez y devuelve la partición final.
// Los fallos de ingesta por unidad de trabajo no abortan la ejecución;
// solo un error de las etapas core (directorio de entrada ausente,
// persistencia fallida) la corta.
func (p *Pipeline) Run(ctx context.Context) (domain.Split, error) {
	summary := domain.RunSummary{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
	}
	slog.Info("pipeline starting", "run_id", summary.RunID, "skip_ingest", p.cfg.SkipIngest)

	if !p.cfg.SkipIngest {
		p.runIngest(ctx, &summary)
	}

	merged, fromCache, err := p.merger.Merge(ctx, summary.RunID)
	if err != nil {
		return domain.Split{}, fmt.Errorf("pipeline.Run: %w", err)
	}
	summary.MergedRows = len(merged)
	summary.MergeFromCache = fromCache

	if len(merged) == 0 {
		slog.Warn("empty merge result, nothing to label or split")
		p.notify(ctx, summary)
		return domain.Split{}, nil
	}

	labeled, err := p.labeler.Label(merged)
	if err != nil {
		return domain.Split{}, fmt.Errorf("pipeline.Run: %w", err)
	}
	summary.LabeledRows = len(labeled)
	summary.Symbols = countSymbols(labeled)

	split, err := p.splitter.Split(labeled, p.cfg.Cutoff)
	if err != nil {
		return domain.Split{}, fmt.Errorf("pipeline.Run: %w", err)
	}
	summary.Cutoff = split.Cutoff
	summary.TrainRows = len(split.TrainY)
	summary.TestRows = len(split.TestY)

	p.notify(ctx, summary)

	slog.Info("pipeline complete",
		"run_id", summary.RunID,
		"merged", summary.MergedRows,
		"labeled", summary.LabeledRows,
		"train", summary.TrainRows,
		"test", summary.TestRows,
		"duration", time.Since(summary.Started).Round(time.Millisecond),
	)
	return split, nil
}

// runIngest ejecuta las tres pasadas de ingesta que estén configuradas.
func (p *Pipeline) runIngest(ctx context.Context, summary *domain.RunSummary) {
	if p.indexes != nil {
		stats := p.indexes.Run(ctx)
		summary.IndexesFetched = stats.Fetched
		summary.IndexesSkipped = stats.Skipped
		summary.IndexesFailed = stats.Failed
	}
	if p.prices != nil {
		stats := p.prices.Run(ctx)
		summary.PricesFetched = stats.Fetched
		summary.PricesSkipped = stats.Skipped
		summary.PricesFailed = stats.Failed
	}
	if p.news != nil {
		stats := p.news.Run(ctx)
		summary.NewsFetched = stats.Fetched
		summary.NewsSkipped = stats.Skipped
		summary.NewsFailed = stats.Failed
	}
}

func (p *Pipeline) notify(ctx context.Context, summary domain.RunSummary) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Summary(ctx, summary); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func countSymbols(rows []domain.LabeledRow) int {
	seen := make(map[string]struct{}, 32)
	for _, r := range rows {
		seen[r.Symbol] = struct{}{}
	}
	return len(seen)
}
