package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

type PipelineInput struct {
	RequestID string
	Text      string
}

// PipelineState is threaded through every stage. Err is the single error slot:
// once set, later stages skip their work and only formatting runs.
type PipelineState struct {
	RequestID string
	Text      string
	Now       time.Time

	Command *contractx.Command
	Result  *contractx.Envelope
	Reply   string

	Err error
	Log []string
}

func (s *PipelineState) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}

// runStage skips when an earlier stage failed and turns both returned errors
// and panics into the state's error.
func runStage(in *PipelineState, stage string, fn func() error) (out *PipelineState) {
	if in.Err != nil {
		return in
	}
	defer func() {
		if r := recover(); r != nil {
			in.Err = fmt.Errorf("%s: internal error: %v", stage, r)
			in.logf("%s: failed", stage)
			out = in
		}
	}()
	if err := fn(); err != nil {
		in.Err = err
		in.logf("%s: failed: %v", stage, err)
	}
	return in
}

func ValidateRequest(in PipelineInput, nowFn func() time.Time) *PipelineState {
	st := &PipelineState{
		RequestID: in.RequestID,
		Text:      strings.TrimSpace(in.Text),
		Now:       nowFn().UTC(),
	}
	if st.Text == "" {
		st.Err = contractx.ErrInvalidMessage
		st.logf("validate: %v", contractx.ErrInvalidMessage)
	}
	return st
}
