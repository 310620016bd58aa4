package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ewmrs/weather-render-api/internal/catalog"
	"github.com/ewmrs/weather-render-api/internal/timestamps"
)

// defaultProducts is the closed product-to-prefix mapping as the render
// pipeline writes it. Order here is the order ListAvailable reports.
var defaultProducts = []catalog.Product{
	{Name: "CompRefQC", Prefix: "MRMS_MergedReflectivityQC"},
	{Name: "RALA", Prefix: "MRMS_ReflectivityAtLowestAltitude"},
	{Name: "EchoTop18", Prefix: "MRMS_EchoTop18"},
	{Name: "EchoTop30", Prefix: "MRMS_EchoTop30"},
	{Name: "PrecipRate", Prefix: "MRMS_PrecipRate"},
	{Name: "VILDensity", Prefix: "MRMS_VILDensity"},
	{Name: "QPE_01H", Prefix: "MRMS_QPE"},
	{Name: "VII", Prefix: "MRMS_VII"},
}

// defaultSubdirs is the closed list of subdirectories shown by the aggregate
// listing endpoint: the product directories plus the non-render directories
// the pipeline maintains.
var defaultSubdirs = []string{
	"CompRefQC", "RALA", "EchoTop18", "EchoTop30",
	"PrecipRate", "VILDensity", "QPE_01H", "VII",
	"NLDN", "ProbSevere", "FLASH", "RotationTrack30min",
	"RhoHV", "PrecipFlag", "maps", "surface_analysis",
}

type AppConfig struct {
	// DataRoot is the base directory under which all product and analysis
	// subdirectories live. Always absolute after Load.
	DataRoot string

	// Products is the closed product mapping, in declaration order.
	Products []catalog.Product

	// Subdirs is the closed list of directories the aggregate listing shows.
	Subdirs []string

	// TimestampSource selects index.json vs. directory-scan discovery.
	TimestampSource timestamps.Strategy

	// Listing limits for the aggregate view.
	ListingDefaultLimit int
	ListingMaxLimit     int

	// Freshness monitor settings.
	MonitorInterval time.Duration
	StaleAfter      time.Duration

	// WatchEnabled turns on fsnotify arrival logging.
	WatchEnabled bool

	LogLevel string
	Port     string
}

// catalogFile is the optional YAML override for the compiled-in product
// mapping and subdirectory list.
type catalogFile struct {
	Products []catalog.Product `yaml:"products"`
	Subdirs  []string          `yaml:"subdirs"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &AppConfig{}

	root := os.Getenv("DATA_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("DATA_ROOT not set and home directory unknown: %w", err)
		}
		root = filepath.Join(home, "EWMRS", "gui")
	}
	// Absolute root keeps every joined path unambiguous.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_ROOT: %w", err)
	}
	cfg.DataRoot = absRoot

	cfg.Products = defaultProducts
	cfg.Subdirs = defaultSubdirs
	if path := os.Getenv("CATALOG_FILE"); path != "" {
		if err := cfg.loadCatalogFile(path); err != nil {
			return nil, err
		}
	}

	switch source := getenvDefault("TIMESTAMP_SOURCE", string(timestamps.StrategyIndexFile)); source {
	case string(timestamps.StrategyIndexFile):
		cfg.TimestampSource = timestamps.StrategyIndexFile
	case string(timestamps.StrategyDirScan):
		cfg.TimestampSource = timestamps.StrategyDirScan
	default:
		return nil, fmt.Errorf("invalid TIMESTAMP_SOURCE %q (want %q or %q)",
			source, timestamps.StrategyIndexFile, timestamps.StrategyDirScan)
	}

	cfg.ListingDefaultLimit = getenvInt("LISTING_DEFAULT_LIMIT", 10)
	cfg.ListingMaxLimit = getenvInt("LISTING_MAX_LIMIT", 100)
	if cfg.ListingDefaultLimit < 1 || cfg.ListingMaxLimit < cfg.ListingDefaultLimit {
		return nil, fmt.Errorf("listing limits out of range: default %d, max %d",
			cfg.ListingDefaultLimit, cfg.ListingMaxLimit)
	}

	interval, err := time.ParseDuration(getenvDefault("MONITOR_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONITOR_INTERVAL: %w", err)
	}
	cfg.MonitorInterval = interval

	staleAfter, err := time.ParseDuration(getenvDefault("STALE_AFTER", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_AFTER: %w", err)
	}
	cfg.StaleAfter = staleAfter

	cfg.WatchEnabled = strings.EqualFold(getenvDefault("WATCH_ARRIVALS", "false"), "true")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func (cfg *AppConfig) loadCatalogFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read CATALOG_FILE: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse CATALOG_FILE: %w", err)
	}

	if len(file.Products) > 0 {
		for _, p := range file.Products {
			if p.Name == "" || p.Prefix == "" {
				return fmt.Errorf("CATALOG_FILE: product entries need name and prefix")
			}
		}
		cfg.Products = file.Products
	}
	if len(file.Subdirs) > 0 {
		cfg.Subdirs = file.Subdirs
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
