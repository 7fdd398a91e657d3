package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// ExecuteCommand records an unsuccessful envelope as the request error so the
// user sees one failure message.
func ExecuteCommand(ctx context.Context, in *PipelineState, executor contractx.Executor) *PipelineState {
	return runStage(in, "execute", func() error {
		if in.Command == nil {
			return fmt.Errorf("%w: no command to execute", contractx.ErrValidation)
		}

		env := executor.Execute(ctx, *in.Command)
		in.Result = &env
		if !env.Success {
			return errors.New(env.Error)
		}
		in.logf("execute: %s from %s, %d items", env.Title, env.Source, env.Count)
		return nil
	})
}
