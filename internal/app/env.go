package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/laborwatch/internal/config"
	"github.com/blackwell-systems/laborwatch/internal/feed"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/metrics"
	"github.com/blackwell-systems/laborwatch/internal/store"
	"github.com/blackwell-systems/laborwatch/pkg/logger"
)

// env bundles the services a command needs.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	db      *store.DB
	catalog *insight.Catalog
	metrics *metrics.Manager
	gen     *insight.Generator
	feed    *feed.Feed
}

// setup loads configuration, opens the store, and wires the generator.
// Logs go to stderr so stdout stays clean for --json output.
func setup(logOut io.Writer) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	log, err := logger.New(logOut, level)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	mode, err := insight.ParseEvidenceMode(cfg.Engine.EvidenceMode)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	m := metrics.NewManager(metrics.WithRuntimeCollectors())
	gen := insight.NewGenerator(db, catalog,
		insight.WithEvidenceMode(mode),
		insight.WithLogger(log.Named("engine")),
		insight.WithRecorder(m))

	return &env{
		cfg:     cfg,
		log:     log,
		db:      db,
		catalog: catalog,
		metrics: m,
		gen:     gen,
		feed:    feed.New(db, gen, cfg.Company, log.Named("feed")),
	}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
}

func loadCatalog(cfg *config.Config) (*insight.Catalog, error) {
	if cfg.Engine.CatalogFile == "" {
		return insight.DefaultCatalog(), nil
	}
	c, err := insight.LoadCatalogFile(cfg.Engine.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("loading rule catalog %s: %w", cfg.Engine.CatalogFile, err)
	}
	return c, nil
}

// scope resolves CLI scope flags against the configuration.
func (e *env) scope(company, region, function string) insight.Scope {
	s := e.cfg.ResolveScope(config.Scope{Company: company, Region: region, Function: function})
	return insight.Scope{Company: s.Company, Region: s.Region, Function: s.Function}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
