package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/records-assistant/agent/records"
	configx "github.com/tanpawarit/records-assistant/pkg/config"
	postgresx "github.com/tanpawarit/records-assistant/pkg/postgres"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Copy the collection files into the Postgres collection table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadAppConfig(opts)
			if err != nil {
				return err
			}
			pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
			if err != nil {
				return fmt.Errorf("load postgres config: %w", err)
			}

			loader, err := records.NewFileLoader(cfg.DataDir)
			if err != nil {
				return err
			}
			collections, err := loader.Load(ctx)
			if err != nil {
				return err
			}

			db, err := postgresx.Open(ctx, *pgCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := records.NewSQLLoader(db).Seed(ctx, collections)
			if err != nil {
				return err
			}
			log.Info().Int("rows", n).Str("data_dir", cfg.DataDir).Msg("collections seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records from %s\n", n, cfg.DataDir)
			return nil
		},
	}
}
