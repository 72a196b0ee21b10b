// Package extract turns unreliable model output into structured values:
// a JSON scraper for free-form text and the backstory claim extractor.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// previewLen bounds how much of the offending text a ParseError carries.
const previewLen = 200

// ParseError reports that no extraction strategy produced valid JSON. It
// carries a bounded preview of the original text for diagnosis. Retrying is
// pointless: the same model output would fail the same way.
type ParseError struct {
	Preview string
}

// Error describes the failure with the text preview.
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse JSON from model output; preview: %s", e.Preview)
}

var (
	jsonFenceRe  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	anyFenceRe   = regexp.MustCompile("(?s)```\\s*(.*?)```")
	greedyObjRe  = regexp.MustCompile(`(?s)\{.*\}`)
	greedyArrRe  = regexp.MustCompile(`(?s)\[.*\]`)
)

// JSONValue extracts a JSON value from arbitrary model text using
// fixed-priority strategies, first success wins:
//
//  1. parse the whole text as JSON
//  2. parse the content of a ```json fence
//  3. parse the content of any fence
//  4. parse a greedy brace- or bracket-delimited span
//  5. manually scan from the first { or [ tracking nesting depth
//
// Fenced responses are deliberately tried before incidental brace matches in
// surrounding prose. When every strategy fails, the returned error is a
// *ParseError carrying a preview of the text.
func JSONValue(text string) (interface{}, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Preview: ""}
	}

	// 1. Direct parse
	if v, err := tryParse(trimmed); err == nil {
		return v, nil
	}

	// 2–3. Fenced blocks, tagged before untagged
	for _, re := range []*regexp.Regexp{jsonFenceRe, anyFenceRe} {
		for _, m := range re.FindAllStringSubmatch(trimmed, -1) {
			if v, err := tryParse(strings.TrimSpace(m[1])); err == nil {
				return v, nil
			}
		}
	}

	// 4. Greedy delimited spans anywhere in the text
	for _, re := range []*regexp.Regexp{greedyObjRe, greedyArrRe} {
		if span := re.FindString(trimmed); span != "" {
			if v, err := tryParse(span); err == nil {
				return v, nil
			}
		}
	}

	// 5. Manual depth scan from the first opening bracket
	if span := scanBalanced(trimmed); span != "" {
		if v, err := tryParse(span); err == nil {
			return v, nil
		}
	}

	return nil, &ParseError{Preview: truncate(trimmed, previewLen)}
}

// JSONObject extracts a JSON object; any other value type is a validation
// error.
func JSONObject(text string) (map[string]interface{}, error) {
	v, err := JSONValue(text)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

// JSONArray extracts a JSON array; any other value type is a validation
// error.
func JSONArray(text string) ([]interface{}, error) {
	v, err := JSONValue(text)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}
	return arr, nil
}

func tryParse(s string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// scanBalanced finds the first { or [, then scans forward tracking nesting
// depth of that same bracket type until it returns to zero. Returns the
// balanced span, or "" when none closes.
func scanBalanced(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}

	open := text[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
