package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/records-assistant/agent/agents/orchestrator"
)

const replHelp = `Commands:
  :history   show recent requests
  :stats     show request statistics
  :status    show backend status
  :clear     clear the request history
  :quit      exit`

func newReplCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session; type requests, :help for commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return runRepl(cmd, a.orchestrator, opts.plain)
		},
	}
}

func runRepl(cmd *cobra.Command, orch *orchestrator.Orchestrator, plain bool) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	prompt := color.New(color.FgCyan, color.Bold).Sprint("assistant> ")

	fmt.Fprintln(out, replHelp)
	for {
		fmt.Fprint(out, prompt)
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		switch line {
		case ":quit", ":exit", ":q":
			return nil
		case ":help":
			fmt.Fprintln(out, replHelp)
		case ":history":
			printHistory(out, orch)
		case ":stats":
			printStats(out, orch)
		case ":status":
			printStatus(out, orch.Status())
		case ":clear":
			orch.ClearHistory()
			fmt.Fprintln(out, color.New(color.FgYellow).Sprint("history cleared"))
		default:
			resp := orch.ProcessUserRequest(cmd.Context(), line)
			fmt.Fprint(out, render(resp.FormattedResponse, plain))
		}
	}
}

func printHistory(out io.Writer, orch *orchestrator.Orchestrator) {
	entries := orch.History(10)
	if len(entries) == 0 {
		fmt.Fprintln(out, "no requests yet")
		return
	}
	for _, e := range entries {
		mark := color.New(color.FgGreen).Sprint("✓")
		if !e.Success {
			mark = color.New(color.FgRed).Sprint("✗")
		}
		fmt.Fprintf(out, "%s %s  %-9s %-22s %s\n",
			mark, e.Timestamp.Format("15:04:05"), e.Domain, e.Operation, e.UserInput)
	}
}

func printStats(out io.Writer, orch *orchestrator.Orchestrator) {
	st := orch.Stats()
	fmt.Fprintf(out, "requests: %d  successful: %d  failed: %d  success rate: %.1f%%\n",
		st.Total, st.Successful, st.Failed, st.SuccessRate)
	for _, d := range st.Domains() {
		fmt.Fprintf(out, "  %-9s %d\n", d, st.ByDomain[d])
	}
}
