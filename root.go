package main

import (
	"fmt"

	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/records-assistant/pkg/config"
	logx "github.com/tanpawarit/records-assistant/pkg/logger"
)

type rootOptions struct {
	envFile string
	dataDir string
	plain   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "records-assistant",
		Short:        "Natural-language assistant over CRM, HR and project records",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configx.SetEnvFile(opts.envFile)
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return fmt.Errorf("load log config: %w", err)
			}
			logx.Init(*logCfg)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", "", "path to .env file (default ./.env when present)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory with local collection files (overrides DATA_DIR)")
	flags.BoolVar(&opts.plain, "plain", false, "print raw markdown instead of rendering it")

	cmd.AddCommand(
		newAskCmd(opts),
		newReplCmd(opts),
		newServeCmd(opts),
		newStatusCmd(opts),
		newSeedCmd(opts),
	)
	return cmd
}
