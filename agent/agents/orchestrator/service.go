package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
	nodex "github.com/tanpawarit/records-assistant/agent/nodes"
	statex "github.com/tanpawarit/records-assistant/agent/state"
	metricsx "github.com/tanpawarit/records-assistant/pkg/metrics"
)

var ErrInvalidMessage = contractx.ErrInvalidMessage

type Config struct {
	HistorySize int
}

// Orchestrator runs one request at a time through extract, execute and
// format, and keeps the request log.
type Orchestrator struct {
	extractor contractx.Extractor
	executor  contractx.Executor
	history   *statex.Log

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func New(extractor contractx.Extractor, executor contractx.Executor, cfg Config) (*Orchestrator, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if executor == nil {
		return nil, errors.New("executor is required")
	}

	return &Orchestrator{
		extractor: extractor,
		executor:  executor,
		history:   statex.NewLog(cfg.HistorySize),
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// ProcessUserRequest never returns an error: failures are reported in the
// response's Success, Error and FormattedResponse fields.
func (o *Orchestrator) ProcessUserRequest(ctx context.Context, text string) contractx.Response {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := o.now()
	st := nodex.ValidateRequest(nodex.PipelineInput{RequestID: o.newID(), Text: text}, o.now)
	st = nodex.ExtractCommand(st, o.extractor)
	st = nodex.ExecuteCommand(ctx, st, o.executor)
	st = nodex.FormatResponse(st)

	return o.finish(st, text, start)
}

// ExecuteCommand runs an already structured command through the execute and
// format stages. It shares the request lock and log with ProcessUserRequest.
func (o *Orchestrator) ExecuteCommand(ctx context.Context, cmd contractx.Command) contractx.Response {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := o.now()
	st := &nodex.PipelineState{
		RequestID: o.newID(),
		Text:      cmd.RawText,
		Now:       start.UTC(),
		Command:   &cmd,
	}
	if cmd.Domain == "" || cmd.Operation == "" {
		st.Err = fmt.Errorf("%w: domain and operation are required", contractx.ErrValidation)
	}
	st = nodex.ExecuteCommand(ctx, st, o.executor)
	st = nodex.FormatResponse(st)

	return o.finish(st, cmd.RawText, start)
}

func (o *Orchestrator) finish(st *nodex.PipelineState, text string, start time.Time) contractx.Response {
	resp := contractx.Response{
		RequestID:         st.RequestID,
		Success:           st.Err == nil,
		UserInput:         text,
		FormattedResponse: st.Reply,
		Instruction:       st.Command,
		Result:            st.Result,
		ExecutionLog:      st.Log,
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}

	entry := statex.Entry{
		RequestID: resp.RequestID,
		Timestamp: st.Now,
		UserInput: text,
		Success:   resp.Success,
		Error:     resp.Error,
	}
	domain, intent := "none", "none"
	if st.Command != nil {
		entry.Domain = st.Command.Domain
		entry.Operation = st.Command.Operation
		domain, intent = string(st.Command.Domain), string(st.Command.Intent)
	}
	if st.Result != nil {
		entry.Source = st.Result.Source
	}
	o.history.Append(entry)

	metricsx.RequestsTotal.WithLabelValues(domain, intent, metricsx.Outcome(resp.Success)).Inc()
	metricsx.RequestDuration.WithLabelValues(domain).Observe(o.now().Sub(start).Seconds())

	level := zerolog.InfoLevel
	if !resp.Success {
		level = zerolog.WarnLevel
	}
	log.WithLevel(level).
		Str("request_id", resp.RequestID).
		Str("domain", domain).
		Str("operation", entry.Operation).
		Str("source", string(entry.Source)).
		Str("error", resp.Error).
		Msg("request processed")

	return resp
}

func (o *Orchestrator) History(limit int) []statex.Entry {
	return o.history.Entries(limit)
}

func (o *Orchestrator) Stats() statex.Stats {
	return o.history.Stats()
}

func (o *Orchestrator) ClearHistory() {
	o.history.Clear()
}

func (o *Orchestrator) Status() contractx.BackendStatus {
	return o.executor.Status()
}
