package storage

// manifest.go — manifest de etapas completadas sobre SQLite.
//
// Sustituye el "cache por existencia de archivo" del diseño original:
// una etapa se considera computada solo si el manifest tiene una entrada
// para (stage, fingerprint de sus entradas). Un shard nuevo o modificado
// cambia el fingerprint e invalida la entrada sin borrar nada.
//
//   - `runs`: una fila por ejecución del pipeline, con su UUID.
//   - `stages`: una fila por (stage, fingerprint) completado (UPSERT).
//   - Prune al arrancar: entradas de stages no tocadas en 90 días.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const manifestSchema = `
-- Una fila por ejecución del pipeline
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL
);

-- Una fila por etapa completada, clave (stage, fingerprint)
CREATE TABLE IF NOT EXISTS stages (
    stage        TEXT NOT NULL,
    fingerprint  TEXT NOT NULL,
    output_path  TEXT NOT NULL,
    run_id       TEXT NOT NULL,
    completed_at DATETIME NOT NULL,
    PRIMARY KEY (stage, fingerprint)
);

CREATE INDEX IF NOT EXISTS idx_stages_at ON stages(completed_at DESC);
`

const manifestRetention = 90 * 24 * time.Hour

// Manifest implementa ports.StageCache usando SQLite (pure Go, sin CGo).
type Manifest struct {
	db *sql.DB
}

// NewManifest abre (o crea) el manifest en la ruta dada (":memory:"
// para uno efímero). Aplica el schema y limpia entradas antiguas.
func NewManifest(path string) (*Manifest, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("storage.NewManifest: mkdir %q: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewManifest: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(manifestSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewManifest: apply schema: %w", err)
	}

	m := &Manifest{db: db}
	m.pruneOld(context.Background())
	return m, nil
}

// Lookup devuelve la ruta de salida registrada para (stage, fingerprint).
func (m *Manifest) Lookup(stage, fingerprint string) (string, bool) {
	var path string
	err := m.db.QueryRow(
		`SELECT output_path FROM stages WHERE stage = ? AND fingerprint = ?`,
		stage, fingerprint,
	).Scan(&path)
	if err != nil {
		if err != sql.ErrNoRows {
			slog.Warn("manifest lookup failed", "stage", stage, "err", err)
		}
		return "", false
	}
	return path, true
}

// Record registra la etapa completada (UPSERT por (stage, fingerprint)),
// dando de alta la ejecución en runs si es la primera etapa que registra.
func (m *Manifest) Record(runID, stage, fingerprint, outputPath string) error {
	if _, err := m.db.Exec(
		`INSERT OR IGNORE INTO runs (id, started_at) VALUES (?, ?)`,
		runID, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.Record: register run: %w", err)
	}

	_, err := m.db.Exec(`
		INSERT INTO stages (stage, fingerprint, output_path, run_id, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(stage, fingerprint) DO UPDATE SET
			output_path  = excluded.output_path,
			run_id       = excluded.run_id,
			completed_at = excluded.completed_at`,
		stage, fingerprint, outputPath, runID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.Record: stage %q: %w", stage, err)
	}
	return nil
}

// Close cierra la base de datos limpiamente.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// pruneOld elimina entradas de stages más viejas que la retención.
func (m *Manifest) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-manifestRetention)
	res, err := m.db.ExecContext(ctx, `DELETE FROM stages WHERE completed_at < ?`, cutoff)
	if err != nil {
		slog.Warn("manifest prune failed", "err", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Debug("pruned stale manifest entries", "rows", n)
	}
}
