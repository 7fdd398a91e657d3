package extractor

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

const nameStop = `(?:\s+avec\s+(?:un\s+)?montant|\s+avec\s+(?:l')?ID|\s+d'|\s+pour|$)`

var (
	opportunityNamePatterns = compileAll(
		`(?i)(?:opportunité|opp)\s+(?:nommée?\s+)?([A-Za-zÀ-ÿ0-9\s]+?)`+nameStop,
		`(?i)(?:ajoute|crée|créer)\s+(?:une\s+)?(?:opportunité\s+)?(?:nommée?\s+)?([A-Za-zÀ-ÿ0-9\s]+?)`+nameStop,
		`(?i)(?:nouvelle\s+opportunité\s+)([A-Za-zÀ-ÿ0-9\s]+?)`+nameStop,
		`(?i)(?:changer|modifier|mettre à jour).*?(?:nom|titre).*?(?:en\s+|à\s+)([A-Za-zÀ-ÿ0-9]+(?:\s+[A-Za-zÀ-ÿ0-9]+)*)\s*$`,
		`(?i)(?:nom|titre).*?(?:en\s+|à\s+)([A-Za-zÀ-ÿ0-9]+(?:\s+[A-Za-zÀ-ÿ0-9]+)*)\s*$`,
		`(?i)(?:renommer|rebaptiser).*?(?:en\s+|à\s+)([A-Za-zÀ-ÿ0-9]+(?:\s+[A-Za-zÀ-ÿ0-9]+)*)\s*$`,
		`(?i)(?:change|modifie).*?(?:titre|nom).*?(?:en\s+)([A-Za-zÀ-ÿ0-9]+(?:\s+[A-Za-zÀ-ÿ0-9]+)*)\s*$`,
	)
	namePatterns = compileAll(
		`(?:nom|nommé|appelé|named|called)\s+([A-Za-zÀ-ÿ\s]+?)(?:\s+avec|\s+with|$)`,
		`(?:client|employé|projet)\s+([A-Za-zÀ-ÿ\s]+?)(?:\s+avec|$)`,
		`(?:changer|modifier|mettre à jour).*?(?:nom).*?(?:en\s+|à\s+)([A-Za-zÀ-ÿ\s]+?)(?:\s+|$)`,
		`(?:nom)\s+(?:en\s+|à\s+)([A-Za-zÀ-ÿ\s]+?)(?:\s+|$)`,
	)
	fieldLabelPattern = regexp.MustCompile(`\b(?:ID|id|montant|avec|pour)\b`)

	emailPatterns = compileAll(
		`(?i)(?:email|e-mail|mail)\s+(?:en\s+)?([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`,
		`(?i)(?:changer|modifier|mettre à jour).*?(?:email|e-mail|mail).*?(?:en\s+)?([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`,
		`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`,
	)
	phonePatterns = compileAll(
		`(?i)(?:telephone|téléphone|tel|phone)\s+([0-9\s\-\+\(\)]+)`,
	)
	cityPatterns = compileAll(
		`(?i)(?:ville|city)\s+([A-Za-zÀ-ÿ\s\-]+?)(?:\s+(?:avec|et|pour|with|and)\b|[,;.]|$)`,
		`(?i)(?:ville|city)\s+([A-Za-zÀ-ÿ\-]+)`,
	)
	amountPatterns = compileAll(
		`(?i)(?:montant|prix|valeur|amount|value)\s+(?:de\s+|à\s+|of\s+)?([0-9][0-9\s,\.]*)`,
		`(?i)avec\s+un\s+montant\s+(?:de\s+)?([0-9][0-9\s,\.]*)`,
		`(?i)(?:changer|modifier|mettre à jour).*?(?:montant|prix|valeur).*?(?:à\s+|en\s+)?([0-9][0-9\s,\.]*)`,
		`([0-9][0-9\s,\.]*)\s*(?:euros?|€|\$|EUR)`,
		`(?i)d'une\s+valeur\s+de\s+([0-9][0-9\s,\.]*)`,
	)
	probabilityPatterns = compileAll(
		`(?i)(?:probabilité|probability|chance|prob)\s+(?:de\s+|of\s+)?([0-9]+)%?`,
		`(?i)([0-9]+)%\s+(?:de\s+)?(?:probabilité|chance)`,
		`(?i)(?:avec\s+)?([0-9]+)%\s+(?:de\s+)?(?:succès|réussite)`,
	)
	idPatterns = compileAll(
		`(?i)(?:avec\s+l')?\b(?:id|identifiant)\s*:?\s*([0-9]+)`,
		`(?i)\b(?:client|id)\s+([0-9]+)`,
		`\b([A-Z]{1,3}[0-9]{2,})\b`,
	)
	statusPatterns = compileAll(
		`(?i)(?:statut|état|status)\s*(?::|=|à|to)?\s+([A-Za-zÀ-ÿ]+(?:[\s_][A-Za-zÀ-ÿ]+)?)`,
	)
	datePatterns = compileAll(
		`(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})`,
	)
)

// statusStopWords are articles that follow "statut" when it introduces a
// question rather than a value ("le statut du projet").
var statusStopWords = map[string]struct{}{
	"du": {}, "de": {}, "des": {}, "la": {}, "le": {}, "les": {},
	"of": {}, "the": {}, "for": {},
}

// firstMatch returns the first capture of the first pattern that matches and
// passes accept. A nil accept takes any non-empty trimmed capture.
func firstMatch(patterns []*regexp.Regexp, text string, accept func(string) bool) (string, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if value == "" {
			continue
		}
		if accept != nil && !accept(value) {
			continue
		}
		return value, true
	}
	return "", false
}

func acceptName(value string) bool {
	return len([]rune(value)) > 1 && !fieldLabelPattern.MatchString(value)
}

func acceptStatus(value string) bool {
	first := strings.ToLower(strings.Fields(value)[0])
	_, stop := statusStopWords[first]
	return !stop
}

func extractParameters(text string, opportunity bool) map[string]any {
	params := make(map[string]any, 4)

	if opportunity {
		if name, ok := firstMatch(opportunityNamePatterns, text, acceptName); ok {
			params["title"] = name
			params["name"] = name
		}
	} else if name, ok := firstMatch(namePatterns, text, acceptName); ok {
		params["name"] = name
	}

	if email, ok := firstMatch(emailPatterns, text, nil); ok {
		params["email"] = email
	}
	if phone, ok := firstMatch(phonePatterns, text, nil); ok {
		params["phone"] = phone
	}
	if city, ok := firstMatch(cityPatterns, text, nil); ok {
		params["city"] = city
	}

	// The first amount pattern that matches decides; an unparsable capture
	// omits the key instead of trying later patterns.
	if raw, ok := firstMatch(amountPatterns, text, nil); ok {
		if amount, err := parseAmount(raw); err == nil {
			if opportunity {
				params["expected_value"] = amount
				params["value"] = amount
			} else {
				params["amount"] = amount
			}
		}
	}

	if raw, ok := firstMatch(probabilityPatterns, text, nil); ok {
		if prob, err := parsePercent(raw); err == nil && prob >= 0 && prob <= 100 {
			params["probability"] = prob
		}
	}

	if id, ok := firstMatch(idPatterns, text, nil); ok {
		params["id"] = id
	}
	if status, ok := firstMatch(statusPatterns, text, acceptStatus); ok {
		params["status"] = status
	}
	if date, ok := firstMatch(datePatterns, text, nil); ok {
		params["date"] = date
	}

	return params
}

// parseAmount drops whitespace and thousands separators before parsing, so
// "12 500" and "12,500" both yield 12500.
func parseAmount(raw string) (float64, error) {
	cleaned := strings.Join(strings.Fields(raw), "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimRight(cleaned, ".")
	return cast.ToFloat64E(cleaned)
}

// parsePercent reads a whole percentage. Leading zeros are dropped because
// cast parses with base prefixes and would read "08" as octal.
func parsePercent(raw string) (int, error) {
	trimmed := strings.TrimLeft(strings.TrimSpace(raw), "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return cast.ToIntE(trimmed)
}
