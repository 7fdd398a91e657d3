package extractor

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	contractx "github.com/tanpawarit/records-assistant/agent/contract"
)

const (
	defaultIntent = contractx.IntentList
	defaultDomain = contractx.DomainCRM
)

// Extractor turns free text into a Command with ordered pattern rules. It
// holds no state and is safe for concurrent use.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract never fails: unmatched input falls back to listing CRM clients.
func (e *Extractor) Extract(text string) contractx.Command {
	lowered := cases.Lower(language.French).String(text)

	intent := detectIntent(lowered)
	domain := detectDomain(lowered)
	opportunity := domain == contractx.DomainCRM && opportunityPattern.MatchString(lowered)
	params := extractParameters(text, strings.Contains(lowered, "opportunit"))
	operation := deriveOperation(domain, intent, opportunity, params)

	log.Debug().
		Str("domain", string(domain)).
		Str("intent", string(intent)).
		Str("operation", operation).
		Int("parameters", len(params)).
		Msg("request classified")

	return contractx.Command{
		Domain:     domain,
		Intent:     intent,
		Operation:  operation,
		Parameters: params,
		RawText:    text,
	}
}

func detectIntent(lowered string) contractx.Intent {
	for _, rule := range intentPriority {
		for _, re := range rule.patterns {
			if re.MatchString(lowered) {
				return rule.intent
			}
		}
	}
	return defaultIntent
}

func detectDomain(lowered string) contractx.Domain {
	for _, rule := range domainRules {
		for _, re := range rule.patterns {
			if re.MatchString(lowered) {
				return rule.domain
			}
		}
	}
	return defaultDomain
}

func deriveOperation(domain contractx.Domain, intent contractx.Intent, opportunity bool, params map[string]any) string {
	if opportunity {
		if op, ok := opportunityOperations[intent]; ok {
			return op
		}
	}
	if domain == contractx.DomainProjects && intent == contractx.IntentStatus {
		if _, ok := params["id"]; ok {
			return "project_status"
		}
	}
	if op, ok := operationTable[domain][intent]; ok {
		return op
	}
	return fmt.Sprintf("%s_%s", intent, strings.ToLower(string(domain)))
}
