package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// collectionSchema is the accepted shape of a domain file: named arrays of
// objects.
const collectionSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "items": {"type": "object"}
  }
}`

var DefaultFiles = map[contractx.Domain]string{
	contractx.DomainCRM:      "crm_data.json",
	contractx.DomainHR:       "hr_data.json",
	contractx.DomainProjects: "projects_data.json",
}

type FileLoaderOption func(*FileLoader)

func WithFiles(files map[contractx.Domain]string) FileLoaderOption {
	return func(l *FileLoader) {
		if len(files) > 0 {
			l.files = files
		}
	}
}

// FileLoader reads one JSON or YAML file per domain from a directory.
type FileLoader struct {
	dir    string
	files  map[contractx.Domain]string
	schema *gojsonschema.Schema
}

func NewFileLoader(dir string, opts ...FileLoaderOption) (*FileLoader, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(collectionSchema))
	if err != nil {
		return nil, fmt.Errorf("compile collection schema: %w", err)
	}

	l := &FileLoader{
		dir:    dir,
		files:  DefaultFiles,
		schema: schema,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load never fails on file content: a missing or malformed file leaves its
// domain empty and is logged.
func (l *FileLoader) Load(ctx context.Context) (*Collections, error) {
	c := NewCollections()
	for _, domain := range contractx.Domains {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, ok := l.files[domain]
		if !ok {
			continue
		}
		path := filepath.Join(l.dir, name)

		data, err := l.loadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warn().Str("domain", string(domain)).Str("path", path).Msg("local data file not found")
			} else {
				log.Error().Err(err).Str("domain", string(domain)).Str("path", path).Msg("local data file unreadable")
			}
			continue
		}

		for collection, recs := range data {
			c.Set(domain, collection, recs)
		}
		log.Debug().Str("domain", string(domain)).Int("records", c.Count(domain)).Msg("local data loaded")
	}
	return c, nil
}

func (l *FileLoader) loadFile(path string) (map[string][]contractx.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := l.validate(doc); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return toCollections(doc), nil
}

func (l *FileLoader) validate(doc map[string]any) error {
	result, err := l.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", contractx.ErrValidation, strings.Join(msgs, "; "))
}

func toCollections(doc map[string]any) map[string][]contractx.Record {
	out := make(map[string][]contractx.Record, len(doc))
	for name, raw := range doc {
		items, _ := raw.([]any)
		recs := make([]contractx.Record, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				recs = append(recs, contractx.Record(m))
			}
		}
		out[name] = recs
	}
	return out
}
