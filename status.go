package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which backend serves each domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.orchestrator.Status()
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}

func printStatus(out io.Writer, st contractx.BackendStatus) {
	mode := color.New(color.FgYellow).Sprint(st.Mode)
	if st.RemoteConnected {
		mode = color.New(color.FgGreen).Sprint(st.Mode)
	}
	fmt.Fprintf(out, "mode: %s  operations: %d\n", mode, st.Operations)
	for _, d := range contractx.Domains {
		fmt.Fprintf(out, "  %-9s %s\n", d, st.Domains[d])
	}
}
