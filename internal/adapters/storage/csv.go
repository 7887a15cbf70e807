package storage

// csv.go — shards CSV en disco, una tabla lógica repartida en archivos
// por símbolo × periodo.
//
// Convenciones de nombre (heredadas del layout de datos):
//   - precios:  <symbol>_<year>.csv            en stocks_dir
//   - índices:  index_<name>_<year>.csv        en indexes_dir
//   - noticias: news_<symbol>_<start>_<end>.csv en news_dir
//
// El loader de precios solo acepta archivos que casan con el patrón de
// shard crudo y NO llevan los prefijos de otros tipos (news_, index_,
// merged): así un output derivado copiado al directorio no se vuelve a
// ingerir como si fuera fuente.

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ports"
)

// rawShardPattern casa con nombres de shard crudo tipo aapl_2024.csv.
var rawShardPattern = regexp.MustCompile(`(?i)[a-z]+_\d{4}\.csv$`)

var priceHeader = []string{"symbol", "date", "Open", "High", "Low", "Close", "Volume"}
var newsHeader = []string{"symbol", "title", "published_date", "sentiment"}
var mergedHeader = []string{"symbol", "date", "Open", "High", "Low", "Close", "Volume", "sentiment", "percent_change"}
var labeledHeader = append(append([]string{}, mergedHeader...), "Tomorrow", "Target")

// CSVStore implementa ports.ObservationStore y ports.PanelStore sobre
// directorios de shards CSV.
type CSVStore struct {
	stocksDir   string
	indexesDir  string
	newsDir     string
	mergedPath  string
	labeledPath string
}

// NewCSVStore crea el store sobre los directorios dados. No crea nada en
// disco: los directorios aparecen al escribir el primer shard, y cargar
// desde un directorio inexistente es un error del caller.
func NewCSVStore(stocksDir, indexesDir, newsDir, mergedPath, labeledPath string) *CSVStore {
	return &CSVStore{
		stocksDir:   stocksDir,
		indexesDir:  indexesDir,
		newsDir:     newsDir,
		mergedPath:  mergedPath,
		labeledPath: labeledPath,
	}
}

// --- shards de precios e índices ---

// HasPriceShard devuelve true si el shard del símbolo y año ya existe.
func (s *CSVStore) HasPriceShard(symbol string, year int) bool {
	return fileExists(filepath.Join(s.stocksDir, priceShardName(symbol, year)))
}

// SavePriceShard persiste las barras del símbolo y año como shard CSV.
func (s *CSVStore) SavePriceShard(symbol string, year int, bars []domain.Bar) error {
	path := filepath.Join(s.stocksDir, priceShardName(symbol, year))
	return s.writeBars(path, bars)
}

// HasIndexShard devuelve true si el shard del índice y año ya existe.
func (s *CSVStore) HasIndexShard(name string, year int) bool {
	return fileExists(filepath.Join(s.indexesDir, indexShardName(name, year)))
}

// SaveIndexShard persiste las barras del índice y año. El símbolo de las
// filas es el NOMBRE del índice en mayúsculas, no su ticker.
func (s *CSVStore) SaveIndexShard(name string, year int, bars []domain.Bar) error {
	path := filepath.Join(s.indexesDir, indexShardName(name, year))
	return s.writeBars(path, bars)
}

func (s *CSVStore) writeBars(path string, bars []domain.Bar) error {
	records := make([][]string, 0, len(bars)+1)
	records = append(records, priceHeader)
	for _, b := range bars {
		records = append(records, []string{
			b.Symbol,
			b.DateKey(),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		})
	}
	return writeCSV(path, records)
}

// LoadPriceRows carga todas las filas de los shards de precios válidos.
// Archivos que no califican estructuralmente se saltan con diagnóstico;
// un directorio inexistente es error del caller y sube tal cual.
func (s *CSVStore) LoadPriceRows() ([]domain.Bar, error) {
	entries, err := os.ReadDir(s.stocksDir)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadPriceRows: read dir %q: %w", s.stocksDir, err)
	}

	schema := domain.PriceShardSchema()
	var all []domain.Bar
	for _, e := range entries {
		if e.IsDir() || !isRawPriceShard(e.Name()) {
			continue
		}
		path := filepath.Join(s.stocksDir, e.Name())
		bars, err := readPriceShard(path, schema)
		if err != nil {
			slog.Warn("skipping invalid price shard", "file", e.Name(), "err", err)
			continue
		}
		all = append(all, bars...)
	}
	return all, nil
}

// isRawPriceShard decide si un nombre de archivo es un shard crudo de
// precios: casa el patrón <symbol>_<year>.csv y no es de otro tipo.
func isRawPriceShard(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range []string{"news_", "index_", "merged"} {
		if strings.Contains(lower, prefix) {
			return false
		}
	}
	return rawShardPattern.MatchString(name)
}

func readPriceShard(path string, schema domain.Schema) ([]domain.Bar, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx, err := schema.Resolve(records[0])
	if err != nil {
		return nil, err
	}

	bars := make([]domain.Bar, 0, len(records)-1)
	for _, rec := range records[1:] {
		date, err := domain.ParseDay(field(rec, idx["date"]))
		if err != nil {
			slog.Debug("skipping row with unparseable date", "file", filepath.Base(path), "err", err)
			continue
		}
		bars = append(bars, domain.Bar{
			Symbol: field(rec, idx["symbol"]),
			Date:   date,
			Open:   numericField(rec, idx["Open"], schema.FillFor("Open")),
			High:   numericField(rec, idx["High"], schema.FillFor("High")),
			Low:    numericField(rec, idx["Low"], schema.FillFor("Low")),
			Close:  numericField(rec, idx["Close"], schema.FillFor("Close")),
			Volume: numericField(rec, idx["Volume"], schema.FillFor("Volume")),
		})
	}
	return bars, nil
}

// --- shards de noticias ---

// HasNewsShard devuelve true si el shard del símbolo y bienio ya existe.
func (s *CSVStore) HasNewsShard(symbol string, startYear, endYear int) bool {
	return fileExists(filepath.Join(s.newsDir, newsShardName(symbol, startYear, endYear)))
}

// SaveNewsShard persiste los titulares puntuados del símbolo y bienio.
func (s *CSVStore) SaveNewsShard(symbol string, startYear, endYear int, headlines []domain.ScoredHeadline) error {
	records := make([][]string, 0, len(headlines)+1)
	records = append(records, newsHeader)
	for _, h := range headlines {
		records = append(records, []string{
			h.Symbol,
			h.Title,
			h.DateKey(),
			formatFloat(h.Sentiment),
		})
	}
	path := filepath.Join(s.newsDir, newsShardName(symbol, startYear, endYear))
	return writeCSV(path, records)
}

// LoadNewsRows carga todas las filas de todos los shards news_*.csv.
// Shards sin columna de sentimiento valen el neutro 0.0 para cada fila.
func (s *CSVStore) LoadNewsRows() ([]domain.ScoredHeadline, error) {
	entries, err := os.ReadDir(s.newsDir)
	if err != nil {
		return nil, fmt.Errorf("storage.LoadNewsRows: read dir %q: %w", s.newsDir, err)
	}

	schema := domain.NewsShardSchema()
	var all []domain.ScoredHeadline
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || !strings.HasPrefix(name, "news_") || !strings.HasSuffix(name, ".csv") {
			continue
		}
		rows, err := readNewsShard(filepath.Join(s.newsDir, e.Name()), schema)
		if err != nil {
			slog.Warn("skipping invalid news shard", "file", e.Name(), "err", err)
			continue
		}
		all = append(all, rows...)
	}
	return all, nil
}

func readNewsShard(path string, schema domain.Schema) ([]domain.ScoredHeadline, error) {
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx, err := schema.Resolve(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ScoredHeadline, 0, len(records)-1)
	for _, rec := range records[1:] {
		published, err := domain.ParseDay(field(rec, idx["date"]))
		if err != nil {
			slog.Debug("skipping headline with unparseable date", "file", filepath.Base(path), "err", err)
			continue
		}
		rows = append(rows, domain.ScoredHeadline{
			Symbol:    field(rec, idx["symbol"]),
			Title:     field(rec, idx["title"]),
			Published: published,
			Sentiment: numericField(rec, idx["sentiment"], schema.FillFor("sentiment")),
		})
	}
	return rows, nil
}

// --- manifest de shards ---

// ShardManifest lista los shards de precios y noticias presentes, en
// orden determinista por nombre. Es la entrada del fingerprint de la
// etapa de merge.
func (s *CSVStore) ShardManifest() ([]ports.ShardInfo, error) {
	var infos []ports.ShardInfo
	for _, dir := range []string{s.stocksDir, s.newsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("storage.ShardManifest: read dir %q: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, fmt.Errorf("storage.ShardManifest: stat %q: %w", e.Name(), err)
			}
			infos = append(infos, ports.ShardInfo{
				Name:    filepath.Join(dir, e.Name()),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// --- panel mergeado y etiquetado ---

// MergedPath devuelve la ruta fija del panel mergeado.
func (s *CSVStore) MergedPath() string { return s.mergedPath }

// WriteMerged persiste el panel mergeado, en el orden recibido
// (fecha descendente).
func (s *CSVStore) WriteMerged(rows []domain.MergedRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, mergedHeader)
	for _, r := range rows {
		records = append(records, mergedRecord(r))
	}
	return writeCSV(s.mergedPath, records)
}

// ReadMerged devuelve el contenido persistido del panel mergeado tal cual.
func (s *CSVStore) ReadMerged() ([]domain.MergedRow, error) {
	records, err := readCSV(s.mergedPath)
	if err != nil {
		return nil, fmt.Errorf("storage.ReadMerged: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]domain.MergedRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		date, err := domain.ParseDay(field(rec, 1))
		if err != nil {
			slog.Debug("skipping merged row with unparseable date", "err", err)
			continue
		}
		rows = append(rows, domain.MergedRow{
			Symbol:        field(rec, 0),
			Date:          date,
			Open:          numericField(rec, 2, math.NaN()),
			High:          numericField(rec, 3, math.NaN()),
			Low:           numericField(rec, 4, math.NaN()),
			Close:         numericField(rec, 5, math.NaN()),
			Volume:        numericField(rec, 6, math.NaN()),
			Sentiment:     numericField(rec, 7, math.NaN()),
			PercentChange: numericField(rec, 8, math.NaN()),
		})
	}
	return rows, nil
}

// WriteLabeled persiste el panel etiquetado, en el orden recibido
// (ascendente por símbolo y fecha).
func (s *CSVStore) WriteLabeled(rows []domain.LabeledRow) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, labeledHeader)
	for _, r := range rows {
		rec := mergedRecord(r.MergedRow)
		rec = append(rec, formatFloat(r.Tomorrow), strconv.Itoa(r.Target))
		records = append(records, rec)
	}
	return writeCSV(s.labeledPath, records)
}

func mergedRecord(r domain.MergedRow) []string {
	return []string{
		r.Symbol,
		r.DateKey(),
		formatFloat(r.Open),
		formatFloat(r.High),
		formatFloat(r.Low),
		formatFloat(r.Close),
		formatFloat(r.Volume),
		formatFloat(r.Sentiment),
		formatFloat(r.PercentChange),
	}
}

// --- helpers ---

func priceShardName(symbol string, year int) string {
	return fmt.Sprintf("%s_%d.csv", strings.ToLower(symbol), year)
}

func indexShardName(name string, year int) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	return fmt.Sprintf("index_%s_%d.csv", slug, year)
}

func newsShardName(symbol string, startYear, endYear int) string {
	return fmt.Sprintf("news_%s_%d_%d.csv", strings.ToLower(symbol), startYear, endYear)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func writeCSV(path string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("storage.writeCSV: mkdir %q: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage.writeCSV: create %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("storage.writeCSV: write %q: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// numericField coerciona un campo a float64. Valor ausente o que no
// parsea → fill (NaN o 0 según la política de la columna), nunca error.
func numericField(rec []string, i int, fill float64) float64 {
	s := field(rec, i)
	if s == "" {
		return fill
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fill
	}
	return v
}

// formatFloat serializa un float para CSV; NaN se escribe como campo vacío.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
