package records

import (
	"context"
	"sort"
	"sync"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// Loader produces the local collections at startup.
type Loader interface {
	Load(ctx context.Context) (*Collections, error)
}

// Collections holds named record collections per domain. Loaded once and read
// by every request; Set is only used while loading.
type Collections struct {
	mu      sync.RWMutex
	domains map[contractx.Domain]map[string][]contractx.Record
}

func NewCollections() *Collections {
	return &Collections{
		domains: make(map[contractx.Domain]map[string][]contractx.Record, len(contractx.Domains)),
	}
}

func (c *Collections) Set(domain contractx.Domain, name string, recs []contractx.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.domains[domain] == nil {
		c.domains[domain] = make(map[string][]contractx.Record, 4)
	}
	c.domains[domain][name] = recs
}

// Get returns a copy of the collection slice; the records themselves are shared
// and must not be mutated.
func (c *Collections) Get(domain contractx.Domain, name string) []contractx.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	src := c.domains[domain][name]
	out := make([]contractx.Record, len(src))
	copy(out, src)
	return out
}

func (c *Collections) Names(domain contractx.Domain) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.domains[domain]))
	for name := range c.domains[domain] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Collections) Count(domain contractx.Domain) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, recs := range c.domains[domain] {
		total += len(recs)
	}
	return total
}

// Snapshot returns every collection of a domain keyed by name.
func (c *Collections) Snapshot(domain contractx.Domain) map[string][]contractx.Record {
	out := make(map[string][]contractx.Record)
	for _, name := range c.Names(domain) {
		out[name] = c.Get(domain, name)
	}
	return out
}
