package orchestratornode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

type fakeExtractor struct {
	cmd   contractx.Command
	panic bool
	calls int
}

func (f *fakeExtractor) Extract(text string) contractx.Command {
	f.calls++
	if f.panic {
		panic("boom")
	}
	cmd := f.cmd
	cmd.RawText = text
	return cmd
}

type fakeExecutor struct {
	env   contractx.Envelope
	calls int
}

func (f *fakeExecutor) Execute(ctx context.Context, cmd contractx.Command) contractx.Envelope {
	f.calls++
	return f.env
}

func (f *fakeExecutor) Status() contractx.BackendStatus {
	return contractx.BackendStatus{Mode: "local"}
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestValidateRequestRejectsBlankText(t *testing.T) {
	t.Parallel()

	st := ValidateRequest(PipelineInput{RequestID: "r1", Text: "   "}, fixedNow)
	if !errors.Is(st.Err, contractx.ErrInvalidMessage) {
		t.Fatalf("ValidateRequest() error = %v, want ErrInvalidMessage", st.Err)
	}
	if st.RequestID != "r1" || !st.Now.Equal(fixedNow()) {
		t.Fatalf("ValidateRequest() state = %+v", st)
	}
}

func TestStagesShortCircuitAfterError(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{}
	exe := &fakeExecutor{}
	st := ValidateRequest(PipelineInput{Text: ""}, fixedNow)
	st = ExtractCommand(st, ext)
	st = ExecuteCommand(context.Background(), st, exe)
	st = FormatResponse(st)

	if ext.calls != 0 || exe.calls != 0 {
		t.Fatalf("stages ran after error: extract=%d execute=%d", ext.calls, exe.calls)
	}
	if !strings.HasPrefix(st.Reply, "❌ Error: ") {
		t.Fatalf("Reply = %q, want error line", st.Reply)
	}
}

func TestExtractCommandRecoversPanic(t *testing.T) {
	t.Parallel()

	st := ValidateRequest(PipelineInput{Text: "liste"}, fixedNow)
	st = ExtractCommand(st, &fakeExtractor{panic: true})
	if st.Err == nil || !strings.Contains(st.Err.Error(), "extract: internal error") {
		t.Fatalf("ExtractCommand() error = %v", st.Err)
	}
}

func TestExecuteCommandRecordsFailedEnvelope(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{cmd: contractx.Command{Domain: contractx.DomainCRM, Intent: contractx.IntentCreate, Operation: "create_client"}}
	exe := &fakeExecutor{env: contractx.Envelope{Success: false, Error: "validation failed: name is required"}}

	st := ValidateRequest(PipelineInput{Text: "ajoute un client"}, fixedNow)
	st = ExtractCommand(st, ext)
	st = ExecuteCommand(context.Background(), st, exe)
	st = FormatResponse(st)

	if st.Err == nil {
		t.Fatalf("ExecuteCommand() error = nil, want envelope error")
	}
	if st.Result == nil || st.Result.Success {
		t.Fatalf("Result = %+v, want failed envelope", st.Result)
	}
	if got, want := st.Reply, "❌ Error: validation failed: name is required"; got != want {
		t.Fatalf("Reply = %q, want %q", got, want)
	}
}

func TestPipelineSuccess(t *testing.T) {
	t.Parallel()

	ext := &fakeExtractor{cmd: contractx.Command{Domain: contractx.DomainCRM, Intent: contractx.IntentList, Operation: "list_clients"}}
	exe := &fakeExecutor{env: contractx.Envelope{
		Success: true,
		Title:   "Clients",
		Count:   1,
		Items:   []contractx.Record{{"id": 1, "name": "TechCorp"}},
		Source:  contractx.SourceLocal,
	}}

	st := ValidateRequest(PipelineInput{Text: "liste des clients"}, fixedNow)
	st = ExtractCommand(st, ext)
	st = ExecuteCommand(context.Background(), st, exe)
	st = FormatResponse(st)

	if st.Err != nil {
		t.Fatalf("pipeline error = %v", st.Err)
	}
	if st.Command.RawText != "liste des clients" {
		t.Fatalf("Command.RawText = %q", st.Command.RawText)
	}
	if !strings.Contains(st.Reply, "• TechCorp (ID 1)") {
		t.Fatalf("Reply = %q, want item line", st.Reply)
	}
	if len(st.Log) != 3 {
		t.Fatalf("Log = %v, want 3 entries", st.Log)
	}
}
