package main

import (
	"os"

	"github.com/oxur/tessitura/internal/config"
	"github.com/oxur/tessitura/internal/logging"
	"github.com/oxur/tessitura/internal/rules"
	"github.com/oxur/tessitura/internal/sourceclients/acoustid"
	"github.com/oxur/tessitura/internal/sourceclients/bibliographic"
	"github.com/oxur/tessitura/internal/sourceclients/encyclopedic"
	"github.com/oxur/tessitura/internal/sourceclients/folksonomy"
	"github.com/oxur/tessitura/internal/sourceclients/marketplace"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/workflow/statestore"
)

const (
	bibliographicEndpoint = "https://musicbrainz.org/ws/2"
	appName               = "tessitura"
	appVersion            = "0.1.0"
	appContact            = "https://github.com/oxur/tessitura"
)

// app bundles everything most subcommands need, built once from the
// resolved config (spec §6's external-collaborator boundary: the CLI
// constructs the core components and calls them, owning no business
// logic itself).
type app struct {
	Config  config.Config
	Log     *logging.Logger
	Catalog *store.Store
}

// openApp loads config and opens the catalog store. Callers must Close
// the returned app.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{
		Debug: cfg.Logging.Level == "debug",
		Color: cfg.Logging.Color,
		Output: outputWriter(cfg.Logging.Output),
	})

	catalog, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return &app{Config: cfg, Log: log, Catalog: catalog}, nil
}

func (a *app) Close() {
	_ = a.Catalog.Close()
}

func outputWriter(output string) *os.File {
	switch output {
	case "stdout":
		return os.Stdout
	case "", "stderr":
		return os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stderr
		}
		return f
	}
}

// stateStorePath is kept alongside but distinct from the catalog (spec
// §6 "Pipeline state store").
func stateStorePath(cfg config.Config) string {
	return cfg.DatabasePath + ".pipeline"
}

func openStateStore(cfg config.Config) (*statestore.Store, error) {
	return statestore.Open(stateStorePath(cfg))
}

func loadRules(cfg config.Config) (*rules.Document, error) {
	return rules.Load(cfg.RulesPath)
}

// buildClients constructs every source client the resolved config
// enables: bibliographic and encyclopedic are always available (spec
// §4.4.4), acoustID only with an api key, folksonomy only with an api
// key, marketplace always (its rate tier, not its presence, depends on
// a token).
type clients struct {
	AcoustID      *acoustid.Client
	Bibliographic *bibliographic.Client
	Encyclopedic  *encyclopedic.Client
	Folksonomy    *folksonomy.Client
	Marketplace   *marketplace.Client
}

func buildClients(cfg config.Config) (*clients, error) {
	bib, err := bibliographic.New(bibliographicEndpoint, appName, appVersion, appContact)
	if err != nil {
		return nil, err
	}

	c := &clients{
		Bibliographic: bib,
		Encyclopedic:  encyclopedic.New(),
		Marketplace:   marketplace.New(cfg.DiscogsToken),
	}
	if cfg.AcoustidAPIKey != "" {
		c.AcoustID = acoustid.New(cfg.AcoustidAPIKey)
	}
	if cfg.LastfmAPIKey != "" {
		c.Folksonomy = folksonomy.New(cfg.LastfmAPIKey)
	}
	return c, nil
}
