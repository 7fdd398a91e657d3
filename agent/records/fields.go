package records

import (
	"strings"

	"github.com/spf13/cast"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

// fieldMapping allow-lists one local field and names its remote counterpart.
type fieldMapping struct {
	local  string
	remote string
}

var (
	clientFields = []string{"id", "name", "email", "phone", "street", "city", "country_id", "is_company"}

	clientWriteFields = []fieldMapping{
		{local: "name", remote: "name"},
		{local: "email", remote: "email"},
		{local: "phone", remote: "phone"},
		{local: "address", remote: "street"},
		{local: "city", remote: "city"},
		{local: "is_company", remote: "is_company"},
	}

	opportunityFields = []string{
		"id", "name", "partner_id", "email_from", "phone", "stage_id", "probability",
		"expected_revenue", "date_deadline", "create_date", "user_id", "team_id", "description",
	}

	opportunityWriteFields = []fieldMapping{
		{local: "title", remote: "name"},
		{local: "client_id", remote: "partner_id"},
		{local: "email", remote: "email_from"},
		{local: "phone", remote: "phone"},
		{local: "probability", remote: "probability"},
		{local: "expected_value", remote: "expected_revenue"},
		{local: "deadline", remote: "date_deadline"},
		{local: "description", remote: "description"},
	}
)

// toRemote copies only the allow-listed fields present in data.
func toRemote(data contractx.Record, mapping []fieldMapping) map[string]any {
	out := make(map[string]any, len(mapping))
	for _, m := range mapping {
		if v, ok := data[m.local]; ok {
			out[m.remote] = v
		}
	}
	return out
}

func clientFromRemote(row map[string]any) contractx.Record {
	street := text(row["street"])
	city := text(row["city"])
	return contractx.Record{
		"id":         cast.ToInt64(row["id"]),
		"name":       text(row["name"]),
		"email":      text(row["email"]),
		"phone":      text(row["phone"]),
		"address":    strings.TrimSpace(street + " " + city),
		"city":       city,
		"country":    label(row["country_id"]),
		"is_company": cast.ToBool(row["is_company"]),
		"status":     "active",
		"source":     string(contractx.SourceRemote),
	}
}

func opportunityFromRemote(row map[string]any) contractx.Record {
	return contractx.Record{
		"id":             cast.ToInt64(row["id"]),
		"title":          text(row["name"]),
		"client_name":    label(row["partner_id"]),
		"client_id":      refID(row["partner_id"]),
		"email":          text(row["email_from"]),
		"phone":          text(row["phone"]),
		"stage":          label(row["stage_id"]),
		"probability":    cast.ToFloat64(row["probability"]),
		"expected_value": cast.ToFloat64(row["expected_revenue"]),
		"deadline":       text(row["date_deadline"]),
		"created_at":     text(row["create_date"]),
		"owner":          label(row["user_id"]),
		"team":           label(row["team_id"]),
		"description":    text(row["description"]),
	}
}

// text normalises the remote "false for empty" convention to "".
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if !t {
			return ""
		}
		return "true"
	case string:
		return t
	default:
		return cast.ToString(v)
	}
}

// label keeps the display half of a many-to-one (id, label) pair.
func label(v any) string {
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return text(v)
	}
	return text(pair[1])
}

// refID keeps the id half of a many-to-one pair, or "" when unset.
func refID(v any) any {
	pair, ok := v.([]any)
	if !ok || len(pair) == 0 {
		return ""
	}
	return cast.ToInt64(pair[0])
}
