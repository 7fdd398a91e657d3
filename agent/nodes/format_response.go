package orchestratornode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// maxDetailItems is the largest result that is listed item by item.
const maxDetailItems = 3

// FormatResponse always runs: it renders either the result or the failure.
func FormatResponse(in *PipelineState) *PipelineState {
	if in.Err != nil {
		in.Reply = FormatError(in.Err.Error())
		in.logf("format: error response")
		return in
	}
	if in.Result == nil {
		in.Reply = FormatError("no result produced")
		in.logf("format: error response")
		return in
	}
	in.Reply = FormatEnvelope(*in.Result)
	in.logf("format: response rendered")
	return in
}

func FormatError(detail string) string {
	return fmt.Sprintf("❌ Error: %s", detail)
}

// FormatEnvelope renders a result as markdown. The output depends only on the
// envelope.
func FormatEnvelope(env contractx.Envelope) string {
	if !env.Success {
		return FormatError(env.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ **%s**\n", env.Title)
	if env.Summary != "" {
		fmt.Fprintf(&b, "\n📋 %s\n", env.Summary)
	}

	if len(env.Metrics) > 0 {
		b.WriteString("\n📊 **Metrics**\n")
		titler := cases.Title(language.English)
		keys := make([]string, 0, len(env.Metrics))
		for k := range env.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			label := titler.String(strings.ReplaceAll(k, "_", " "))
			fmt.Fprintf(&b, "• %s: %s\n", label, strconv.FormatFloat(env.Metrics[k], 'f', -1, 64))
		}
	}

	if !env.IsAggregate() && env.Count > 0 {
		if env.Count <= maxDetailItems {
			b.WriteString("\n📝 **Details**\n")
			for _, item := range env.Items {
				fmt.Fprintf(&b, "• %s\n", itemLabel(item))
			}
		} else {
			fmt.Fprintf(&b, "\n📝 %d items found\n", env.Count)
		}
	}

	if env.Note != "" {
		fmt.Fprintf(&b, "\nℹ️ %s\n", env.Note)
	}
	if env.Source != "" {
		fmt.Fprintf(&b, "\n_Source: %s_\n", env.Source)
	}
	return strings.TrimRight(b.String(), "\n")
}

func itemLabel(item contractx.Record) string {
	id := cast.ToString(item["id"])
	for _, key := range []string{"name", "title"} {
		if s := strings.TrimSpace(cast.ToString(item[key])); s != "" {
			return withID(s, id)
		}
	}
	full := strings.TrimSpace(cast.ToString(item["first_name"]) + " " + cast.ToString(item["last_name"]))
	if full != "" {
		return withID(full, id)
	}
	if id != "" {
		return "ID " + id
	}
	return "Item"
}

func withID(label, id string) string {
	if id == "" {
		return label
	}
	return fmt.Sprintf("%s (ID %s)", label, id)
}
