package executor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// stringParam returns the first non-empty parameter among keys.
func stringParam(cmd contractx.Command, keys ...string) string {
	for _, key := range keys {
		if v, ok := cmd.Param(key); ok {
			if s := strings.TrimSpace(cast.ToString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func floatParam(cmd contractx.Command, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := cmd.Param(key); ok {
			if f, err := cast.ToFloat64E(v); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// idParam requires a decimal numeric id; remote ids are integers.
func idParam(cmd contractx.Command) (int64, error) {
	raw := stringParam(cmd, "id")
	if raw == "" {
		return 0, fmt.Errorf("%w: id is required for %s", contractx.ErrValidation, cmd.Operation)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q is not a valid record id", contractx.ErrValidation, raw)
	}
	return id, nil
}

// pick copies the present, non-empty parameters named in keys into a record.
// A key of the form "dst=src1|src2" renames and takes the first available
// source.
func pick(cmd contractx.Command, keys ...string) contractx.Record {
	out := make(contractx.Record, len(keys))
	for _, key := range keys {
		dst, sources := key, []string{key}
		if i := strings.IndexByte(key, '='); i > 0 {
			dst = key[:i]
			sources = strings.Split(key[i+1:], "|")
		}
		for _, src := range sources {
			v, ok := cmd.Param(src)
			if !ok {
				continue
			}
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			out[dst] = v
			break
		}
	}
	return out
}

func describeCriteria(criteria contractx.Record) string {
	if len(criteria) == 0 {
		return "no criteria"
	}
	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, criteria[k]))
	}
	return strings.Join(parts, ", ")
}
