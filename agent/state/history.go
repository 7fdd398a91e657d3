package state

import (
	"sort"
	"sync"
	"time"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const DefaultCapacity = 100

// Entry is one processed request as kept in the request log.
type Entry struct {
	RequestID string           `json:"request_id"`
	Timestamp time.Time        `json:"timestamp"`
	UserInput string           `json:"user_input"`
	Domain    contractx.Domain `json:"domain,omitempty"`
	Operation string           `json:"operation,omitempty"`
	Source    contractx.Source `json:"source,omitempty"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
}

type Stats struct {
	Total       int                      `json:"total"`
	Successful  int                      `json:"successful"`
	Failed      int                      `json:"failed"`
	SuccessRate float64                  `json:"success_rate"`
	ByDomain    map[contractx.Domain]int `json:"by_domain"`
}

// Log is a bounded, append-only request history. When full, the oldest entry
// is dropped. Statistics cover only the retained entries.
type Log struct {
	mu       sync.RWMutex
	capacity int
	entries  []Entry
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, entries: make([]Entry, 0, capacity)}
}

func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// Entries returns up to limit most recent entries, oldest first. A limit of
// zero or less returns everything retained.
func (l *Log) Entries(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(l.entries) {
		start = len(l.entries) - limit
	}
	out := make([]Entry, len(l.entries)-start)
	copy(out, l.entries[start:])
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

func (l *Log) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := Stats{ByDomain: map[contractx.Domain]int{}}
	for _, e := range l.entries {
		st.Total++
		if e.Success {
			st.Successful++
		} else {
			st.Failed++
		}
		if e.Domain != "" {
			st.ByDomain[e.Domain]++
		}
	}
	if st.Total > 0 {
		st.SuccessRate = float64(st.Successful) / float64(st.Total) * 100
	}
	return st
}

// Domains lists the domains seen in the log, sorted.
func (s Stats) Domains() []contractx.Domain {
	out := make([]contractx.Domain, 0, len(s.ByDomain))
	for d := range s.ByDomain {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
