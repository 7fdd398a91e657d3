package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/records-assistant/agent/agents/executor"
	"github.com/tanpawarit/records-assistant/agent/agents/extractor"
	"github.com/tanpawarit/records-assistant/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/records-assistant/agent/contract"
	"github.com/tanpawarit/records-assistant/agent/records"
	configx "github.com/tanpawarit/records-assistant/pkg/config"
	odoox "github.com/tanpawarit/records-assistant/pkg/odoo"
	postgresx "github.com/tanpawarit/records-assistant/pkg/postgres"
)

type AppConfig struct {
	DataDir     string `envconfig:"DATA_DIR" default:"data"`
	UseRemote   bool   `envconfig:"USE_REMOTE" default:"false"`
	HistorySize int    `envconfig:"HISTORY_SIZE" default:"100"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
}

type app struct {
	cfg          AppConfig
	orchestrator *orchestrator.Orchestrator
	closers      []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func loadAppConfig(opts *rootOptions) (AppConfig, error) {
	cfg, err := configx.New[AppConfig]("")
	if err != nil {
		return AppConfig{}, fmt.Errorf("load app config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	return *cfg, nil
}

// newApp loads local collections, connects the remote backend when enabled
// and assembles the orchestrator. A remote backend that cannot be reached
// leaves the assistant in local mode instead of failing startup.
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	loader, err := a.loader(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	collections, err := loader.Load(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load collections: %w", err)
	}

	var execOpts []executor.Option
	if cfg.UseRemote {
		if client := a.connectRemote(ctx); client != nil {
			execOpts = append(execOpts,
				executor.WithRemote(contractx.DomainCRM, "clients", records.NewRemoteClients(client)),
				executor.WithRemote(contractx.DomainCRM, "opportunities", records.NewRemoteOpportunities(client)),
			)
		}
	}

	exec := executor.New(collections, execOpts...)
	orch, err := orchestrator.New(extractor.New(), exec, orchestrator.Config{HistorySize: cfg.HistorySize})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.orchestrator = orch

	st := exec.Status()
	log.Info().
		Str("mode", st.Mode).
		Int("operations", st.Operations).
		Msg("assistant ready")
	return a, nil
}

func (a *app) loader(ctx context.Context) (records.Loader, error) {
	pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
	if err != nil {
		return nil, fmt.Errorf("load postgres config: %w", err)
	}
	if !pgCfg.Enabled() {
		return records.NewFileLoader(a.cfg.DataDir)
	}

	db, err := postgresx.Open(ctx, *pgCfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	log.Info().Msg("loading local collections from postgres")
	return records.NewSQLLoader(db), nil
}

func (a *app) connectRemote(ctx context.Context) *odoox.Client {
	odooCfg, err := configx.New[odoox.Config]("ODOO")
	if err != nil {
		log.Warn().Err(err).Msg("remote backend config unreadable, using local collections")
		return nil
	}
	client, err := odoox.NewClient(*odooCfg)
	if err != nil {
		log.Warn().Err(err).Msg("remote backend disabled, using local collections")
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		log.Warn().Err(err).Str("url", odooCfg.URL).Msg("remote backend unreachable, using local collections")
		return nil
	}
	a.closers = append(a.closers, client.Disconnect)
	log.Info().Str("url", odooCfg.URL).Str("version", client.ServerVersion()).Msg("remote backend connected")
	return client
}

// render turns markdown replies into terminal output.
func render(markdown string, plain bool) string {
	if plain {
		return markdown + "\n"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown + "\n"
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown + "\n"
	}
	return out
}
