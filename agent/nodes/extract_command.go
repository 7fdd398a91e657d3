package orchestratornode

import (
	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

func ExtractCommand(in *PipelineState, extractor contractx.Extractor) *PipelineState {
	return runStage(in, "extract", func() error {
		cmd := extractor.Extract(in.Text)
		in.Command = &cmd
		in.logf("extract: %s/%s (%s) with %d parameters", cmd.Domain, cmd.Operation, cmd.Intent, len(cmd.Parameters))
		return nil
	})
}
