package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Summary imprime el resumen de la ejecución en el modo configurado.
func (c *Console) Summary(_ context.Context, s domain.RunSummary) error {
	if c.table {
		c.printFull(s)
	} else {
		c.printCompact(s)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(s domain.RunSummary) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] merged:%d labeled:%d (%d syms) train:%d test:%d",
		now, s.MergedRows, s.LabeledRows, s.Symbols, s.TrainRows, s.TestRows)
	if s.MergeFromCache {
		sb.WriteString(" (cached)")
	}
	if !s.Cutoff.IsZero() {
		fmt.Fprintf(&sb, " cutoff:%s", s.Cutoff.Format(domain.DateLayout))
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime las tablas de ingesta y de etapas del pipeline.
func (c *Console) printFull(s domain.RunSummary) {
	fmt.Fprintf(c.out, "\nrun %s — started %s\n",
		s.RunID, s.Started.Format("2006-01-02 15:04:05"))

	sources := tablewriter.NewWriter(c.out)
	sources.Header("Source", "Fetched", "Skipped", "Failed")
	sources.Append("prices", itoa(s.PricesFetched), itoa(s.PricesSkipped), itoa(s.PricesFailed))
	sources.Append("indexes", itoa(s.IndexesFetched), itoa(s.IndexesSkipped), itoa(s.IndexesFailed))
	sources.Append("news", itoa(s.NewsFetched), itoa(s.NewsSkipped), itoa(s.NewsFailed))
	sources.Render()

	merge := "computed"
	if s.MergeFromCache {
		merge = "cached"
	}
	cutoff := "-"
	if !s.Cutoff.IsZero() {
		cutoff = s.Cutoff.Format(domain.DateLayout)
	}

	stages := tablewriter.NewWriter(c.out)
	stages.Header("Stage", "Rows", "Detail")
	stages.Append("merge", itoa(s.MergedRows), merge)
	stages.Append("label", itoa(s.LabeledRows), fmt.Sprintf("%d symbols", s.Symbols))
	stages.Append("train", itoa(s.TrainRows), "date < "+cutoff)
	stages.Append("test", itoa(s.TestRows), "date >= "+cutoff)
	stages.Render()

	fmt.Fprintln(c.out, "  Skipped = shards ya persistidos | train/test tras filtrar features ausentes")
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }
