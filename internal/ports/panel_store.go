package ports

import "github.com/alejandrodnm/stockpulse/internal/domain"

// PanelStore persiste las tablas derivadas del pipeline.
type PanelStore interface {
	WriteMerged(rows []domain.MergedRow) error
	ReadMerged() ([]domain.MergedRow, error)
	MergedPath() string

	WriteLabeled(rows []domain.LabeledRow) error
}
