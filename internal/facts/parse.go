package facts

import (
	"encoding/json"
	"strings"

	pstrings "muster/pkg/platform/strings"
)

// ParseRaw turns raw client-submitted text into fact candidates according to
// the category's encoding. Client input is untrusted: malformed structured
// payloads yield zero facts rather than an error so one bad submission cannot
// block the rest of a synchronization batch.
func ParseRaw(kind CategoryKind, raw string) []FactInput {
	switch kind {
	case KindNormal:
		return parseNormal(raw)
	case KindList:
		return parseList(raw)
	case KindLeftAdded:
		return parseDotted(raw, true)
	case KindRightAdded:
		return parseDotted(raw, false)
	case KindStructured:
		return parseStructured(raw)
	default:
		return nil
	}
}

func parseNormal(raw string) []FactInput {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return []FactInput{{Value: value}}
}

func parseList(raw string) []FactInput {
	items := pstrings.SplitList(raw)
	inputs := make([]FactInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, FactInput{Value: item})
	}
	return inputs
}

// parseDotted expands a path-like value into one fact per prefix length.
// With fromLeft, "a.b.c" yields "a", "a.b", "a.b.c"; otherwise "c", "b.c",
// "a.b.c".
func parseDotted(raw string, fromLeft bool) []FactInput {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ".")
	inputs := make([]FactInput, 0, len(parts))
	for i := 1; i <= len(parts); i++ {
		var joined string
		if fromLeft {
			joined = strings.Join(parts[:i], ".")
		} else {
			joined = strings.Join(parts[len(parts)-i:], ".")
		}
		inputs = append(inputs, FactInput{Value: joined})
	}
	return inputs
}

type structuredFact struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

func parseStructured(raw string) []FactInput {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	var batch []structuredFact
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &batch); err != nil {
			return nil
		}
	} else {
		var one structuredFact
		if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
			return nil
		}
		batch = []structuredFact{one}
	}

	inputs := make([]FactInput, 0, len(batch))
	for _, item := range batch {
		value := strings.TrimSpace(item.Value)
		if value == "" {
			continue
		}
		inputs = append(inputs, FactInput{Value: value, Description: item.Description})
	}
	return inputs
}
