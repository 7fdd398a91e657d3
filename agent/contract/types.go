package contract

type Domain string

const (
	DomainCRM      Domain = "CRM"
	DomainHR       Domain = "HR"
	DomainProjects Domain = "PROJECTS"
)

// Domains is the declaration order used for detection and status reporting.
var Domains = []Domain{DomainCRM, DomainHR, DomainProjects}

func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

type Intent string

const (
	IntentList   Intent = "list"
	IntentSearch Intent = "search"
	IntentCreate Intent = "create"
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
	IntentStatus Intent = "status"
	IntentReport Intent = "report"
)

type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Record is a single entity using local field names.
type Record map[string]any

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Command is the structured form of a user request. It is not mutated after
// extraction.
type Command struct {
	Domain     Domain         `json:"domain"`
	Intent     Intent         `json:"intent"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters"`
	RawText    string         `json:"raw_text"`
}

func (c Command) Param(key string) (any, bool) {
	v, ok := c.Parameters[key]
	return v, ok
}

// Envelope is the uniform result of executing a Command. Sequence results use
// Items (Count == len(Items)); report-style results use Aggregate.
type Envelope struct {
	Success   bool               `json:"success"`
	Title     string             `json:"title,omitempty"`
	Count     int                `json:"count"`
	Items     []Record           `json:"items,omitempty"`
	Aggregate map[string]any     `json:"aggregate,omitempty"`
	Summary   string             `json:"summary,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Source    Source             `json:"source,omitempty"`
	Note      string             `json:"note,omitempty"`
	Error     string             `json:"error,omitempty"`
}

func (e Envelope) IsAggregate() bool {
	return e.Aggregate != nil
}

func Failure(title string, err error) Envelope {
	return Envelope{
		Success: false,
		Title:   title,
		Error:   err.Error(),
	}
}

// Response is what the presentation boundary receives for one request.
type Response struct {
	RequestID         string    `json:"request_id"`
	Success           bool      `json:"success"`
	UserInput         string    `json:"user_input"`
	FormattedResponse string    `json:"formatted_response"`
	Instruction       *Command  `json:"instruction,omitempty"`
	Result            *Envelope `json:"result,omitempty"`
	ExecutionLog      []string  `json:"execution_log"`
	Error             string    `json:"error,omitempty"`
}

type BackendStatus struct {
	Mode            string            `json:"mode"`
	RemoteConnected bool              `json:"remote_connected"`
	Domains         map[Domain]Source `json:"domains"`
	Operations      int               `json:"operations"`
}
