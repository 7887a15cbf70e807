package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del pipeline.
type Config struct {
	Universe UniverseConfig `yaml:"universe"`
	Data     DataConfig     `yaml:"data"`
	API      APIConfig      `yaml:"api"`
	Split    SplitConfig    `yaml:"split"`
	Log      LogConfig      `yaml:"log"`
}

// UniverseConfig define qué símbolos, índices y años se ingieren.
type UniverseConfig struct {
	Symbols  []string          `yaml:"symbols"`
	Indexes  map[string]string `yaml:"indexes"` // nombre → ticker (S&P500 → ^GSPC)
	FromYear int               `yaml:"from_year"`
	ToYear   int               `yaml:"to_year"`
}

// DataConfig controla dónde viven los shards y las salidas derivadas.
type DataConfig struct {
	StocksDir   string `yaml:"stocks_dir"`
	IndexesDir  string `yaml:"indexes_dir"`
	NewsDir     string `yaml:"news_dir"`
	MergedPath  string `yaml:"merged_path"`
	LabeledPath string `yaml:"labeled_path"`
	ManifestDSN string `yaml:"manifest_dsn"` // ruta al manifest SQLite, o ":memory:"
}

// APIConfig contiene los base URLs y credenciales de los proveedores.
type APIConfig struct {
	YahooBase      string `yaml:"yahoo_base"`
	MarketauxBase  string `yaml:"marketaux_base"`
	MarketauxToken string `yaml:"marketaux_token"` // normalmente vía MARKETAUX_TOKEN en .env
}

// SplitConfig controla la partición temporal train/test.
type SplitConfig struct {
	FeatureColumns []string `yaml:"feature_columns"`
	Cutoff         string   `yaml:"cutoff"`       // YYYY-MM-DD, vacío = automático
	HoldoutDays    int      `yaml:"holdout_days"` // ventana de test del cutoff automático
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if cfg.Universe.FromYear > cfg.Universe.ToYear {
		return nil, fmt.Errorf("config.Load: from_year %d > to_year %d",
			cfg.Universe.FromYear, cfg.Universe.ToYear)
	}

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETAUX_TOKEN"); v != "" {
		cfg.API.MarketauxToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Universe.FromYear == 0 {
		cfg.Universe.FromYear = 2020
	}
	if cfg.Universe.ToYear == 0 {
		cfg.Universe.ToYear = 2025
	}
	if cfg.Data.StocksDir == "" {
		cfg.Data.StocksDir = "data/stocks"
	}
	if cfg.Data.IndexesDir == "" {
		cfg.Data.IndexesDir = "data/indexes"
	}
	if cfg.Data.NewsDir == "" {
		cfg.Data.NewsDir = "data/news"
	}
	if cfg.Data.MergedPath == "" {
		cfg.Data.MergedPath = "data/stock_news.csv"
	}
	if cfg.Data.LabeledPath == "" {
		cfg.Data.LabeledPath = "data/stock_news_labeled.csv"
	}
	if cfg.Data.ManifestDSN == "" {
		cfg.Data.ManifestDSN = "data/stockpulse.db"
	}
	if cfg.API.YahooBase == "" {
		cfg.API.YahooBase = "https://query1.finance.yahoo.com"
	}
	if cfg.API.MarketauxBase == "" {
		cfg.API.MarketauxBase = "https://api.marketaux.com"
	}
	if len(cfg.Split.FeatureColumns) == 0 {
		cfg.Split.FeatureColumns = []string{"sentiment", "percent_change", "Volume"}
	}
	if cfg.Split.HoldoutDays <= 0 {
		cfg.Split.HoldoutDays = 180
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
