// Package guardrail applies post-generation content checks (banned
// words, length bounds, regex) and produces a partitionable violation
// report. The runner is total: it never aborts mid-batch, and a broken
// validator configuration is reported as a violation, not an error.
package guardrail

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AltairaLabs/promptpack-go/internal/schema"
)

// Violation is one failed guardrail check. FailOnViolation carries the
// triggering validator's severity flag verbatim.
type Violation struct {
	ValidatorType   string `json:"validator_type"`
	Message         string `json:"message"`
	FailOnViolation bool   `json:"fail_on_violation"`
}

// Result aggregates the outcome of a validator batch over one piece of
// content. IsValid is false only when a blocking violation is present;
// non-blocking violations are retained but do not flip validity.
type Result struct {
	IsValid    bool        `json:"is_valid"`
	Violations []Violation `json:"violations"`
	Content    string      `json:"content"`
}

// HasBlockingViolations reports whether any violation carries
// fail_on_violation.
func (r *Result) HasBlockingViolations() bool {
	for _, v := range r.Violations {
		if v.FailOnViolation {
			return true
		}
	}
	return false
}

// Run applies the validators to the content in list order, skipping
// disabled ones, and always completes the full list. Violations is
// never nil, so a clean result serializes as an empty list.
func Run(content string, validators []schema.Validator) *Result {
	violations := make([]Violation, 0)
	for _, v := range validators {
		if !v.IsEnabled() {
			continue
		}
		if violation := runOne(content, v); violation != nil {
			violations = append(violations, *violation)
		}
	}

	isValid := true
	for _, v := range violations {
		if v.FailOnViolation {
			isValid = false
			break
		}
	}

	return &Result{
		IsValid:    isValid,
		Violations: violations,
		Content:    content,
	}
}

func runOne(content string, v schema.Validator) *Violation {
	switch v.Type {
	case schema.ValidatorBannedWords:
		return checkBannedWords(content, v)
	case schema.ValidatorMaxLength:
		return checkMaxLength(content, v)
	case schema.ValidatorMinLength:
		return checkMinLength(content, v)
	case schema.ValidatorRegexMatch:
		return checkRegexMatch(content, v)
	default:
		// json_schema, sentiment, toxicity, pii_detection, custom:
		// recognized but not yet implemented. Reserved for extension.
		return nil
	}
}

func checkBannedWords(content string, v schema.Validator) *Violation {
	words := stringsParam(v.Params, "words")
	if len(words) == 0 {
		return nil
	}

	lowered := strings.ToLower(content)
	var found []string
	for _, w := range words {
		if strings.Contains(lowered, strings.ToLower(w)) {
			found = append(found, w)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return &Violation{
		ValidatorType:   v.Type,
		Message:         fmt.Sprintf("Content contains banned words: [%s]", strings.Join(found, ", ")),
		FailOnViolation: v.FailOnViolation,
	}
}

func checkMaxLength(content string, v schema.Validator) *Violation {
	max := intParam(v.Params, "max_characters")
	length := utf8.RuneCountInString(content)
	if max <= 0 || length <= max {
		return nil
	}
	return &Violation{
		ValidatorType:   v.Type,
		Message:         fmt.Sprintf("Content exceeds max length: %d > %d", length, max),
		FailOnViolation: v.FailOnViolation,
	}
}

func checkMinLength(content string, v schema.Validator) *Violation {
	min := intParam(v.Params, "min_characters")
	length := utf8.RuneCountInString(content)
	if min <= 0 || length >= min {
		return nil
	}
	return &Violation{
		ValidatorType:   v.Type,
		Message:         fmt.Sprintf("Content below min length: %d < %d", length, min),
		FailOnViolation: v.FailOnViolation,
	}
}

func checkRegexMatch(content string, v schema.Validator) *Violation {
	pattern, _ := v.Params["pattern"].(string)
	if pattern == "" {
		return nil
	}
	mustMatch := true
	if raw, ok := v.Params["must_match"].(bool); ok {
		mustMatch = raw
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		// A validator-configuration error is itself a content violation
		// so the batch stays total.
		return &Violation{
			ValidatorType:   v.Type,
			Message:         fmt.Sprintf("Invalid regex pattern: %v", err),
			FailOnViolation: v.FailOnViolation,
		}
	}

	matched := re.MatchString(content)
	switch {
	case mustMatch && !matched:
		return &Violation{
			ValidatorType:   v.Type,
			Message:         fmt.Sprintf("Content does not match required pattern: %s", pattern),
			FailOnViolation: v.FailOnViolation,
		}
	case !mustMatch && matched:
		return &Violation{
			ValidatorType:   v.Type,
			Message:         fmt.Sprintf("Content matches forbidden pattern: %s", pattern),
			FailOnViolation: v.FailOnViolation,
		}
	}
	return nil
}

func stringsParam(params map[string]any, key string) []string {
	raw, ok := params[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}
