package candidate

import (
	"encoding/json"
	"regexp"
	"strings"
)

// arrayFields are the payload keys searched for a candidate array when the
// LLM wraps its answer in an object.
var arrayFields = []string{
	"candidates",
	"similarCustomers",
	"similar_customers",
	"results",
	"recommended_targets",
	"companies",
	"items",
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractValue attempts structured JSON extraction from LLM output. It
// tolerates raw JSON, fenced ```json blocks and generic fenced blocks,
// trying each candidate text in order and returning the first that parses.
// Returns nil/false for non-JSON prose.
func ExtractValue(text string) (any, bool) {
	for _, body := range candidateTexts(text) {
		var v any
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			return v, true
		}
	}
	return nil, false
}

// ExtractRows pulls candidate rows out of LLM output: a bare array, an
// object carrying an array under a known field name, or the nested
// candidate_groups.closest_overall_match shape.
func ExtractRows(text string) []map[string]any {
	v, ok := ExtractValue(text)
	if !ok {
		return nil
	}
	return rowsFromValue(v)
}

func rowsFromValue(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		return toRows(t)
	case map[string]any:
		for _, field := range arrayFields {
			if arr, ok := t[field].([]any); ok {
				return toRows(arr)
			}
		}
		if groups, ok := t["candidate_groups"].(map[string]any); ok {
			if arr, ok := groups["closest_overall_match"].([]any); ok {
				return toRows(arr)
			}
		}
		// A single-object payload is treated as one row when it looks
		// like a candidate.
		if _, ok := t["name"]; ok {
			return []map[string]any{t}
		}
		if _, ok := t["company"]; ok {
			return []map[string]any{t}
		}
	}
	return nil
}

func toRows(arr []any) []map[string]any {
	rows := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// candidateTexts yields the texts to try parsing, in order: the trimmed
// input, every fenced block, then the widest braced/bracketed slice.
func candidateTexts(text string) []string {
	texts := []string{strings.TrimSpace(text)}

	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		texts = append(texts, strings.TrimSpace(m[1]))
	}

	// Last resort: the widest bracketed and braced slices, recovering
	// JSON embedded in prose.
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start >= 0 && end > start {
			texts = append(texts, text[start:end+1])
		}
	}

	return texts
}
