package executor

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const genericNote = "This operation has no dedicated implementation; the domain's raw collections are returned."

// generic handles operations without a registered handler by echoing the
// domain's collections. It always succeeds.
func (e *Executor) generic(_ context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	snapshot := e.collections.Snapshot(cmd.Domain)
	aggregate := make(map[string]any, len(snapshot))
	for name, recs := range snapshot {
		aggregate[name] = recs
	}

	return contractx.Envelope{
		Success:   true,
		Title:     fmt.Sprintf("%s on %s", cmd.Operation, cmd.Domain),
		Count:     e.collections.Count(cmd.Domain),
		Aggregate: aggregate,
		Summary:   fmt.Sprintf("Operation %s executed on %s", cmd.Operation, cmd.Domain),
		Source:    contractx.SourceLocal,
		Note:      genericNote,
	}, nil
}

// unsupported rejects writes on domains that only have local collections.
func (e *Executor) unsupported(_ context.Context, cmd contractx.Command) (contractx.Envelope, error) {
	return contractx.Envelope{}, fmt.Errorf("%w: %s is not available for %s, its records are local and read-only",
		contractx.ErrUnsupported, cmd.Operation, cmd.Domain)
}
