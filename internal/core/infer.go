package core

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// InferOptions parameterises column type inference.
type InferOptions struct {
	// CurrencySymbols lists runes stripped before numeric parsing; a value
	// starting with one marks the column as currency.
	CurrencySymbols string
}

// DefaultInferOptions returns the options used when none are configured.
func DefaultInferOptions() InferOptions {
	return InferOptions{CurrencySymbols: DefaultCurrencySymbols}
}

// Inference thresholds. Comparisons are strict and done in float64.
const (
	arrayLikeShare = 0.5
	dateLikeShare  = 0.7
	choiceShare    = 0.3
	choiceMax      = 10
)

var booleanTokens = map[string]bool{
	"true": true, "false": true, "yes": true, "no": true,
	"1": true, "0": true, "y": true, "n": true,
}

// datetimePatterns must match at the start of the value.
var datetimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(:\d{2})?`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}\s+\d{1,2}:\d{2}`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}\s+\d{1,2}:\d{2}`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`),
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`),
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2,4}$`),
	regexp.MustCompile(`(?i)^\d{1,2}\s+\w{3,9}\s+\d{2,4}$`),
	regexp.MustCompile(`(?i)^\w{3,9}\s+\d{1,2},?\s+\d{2,4}$`),
	regexp.MustCompile(`^\d{8}$`),
}

var hyperlinkPattern = regexp.MustCompile(`^https?://`)

// InferColumnType guesses the type of a raw text column. For choice and
// multiple_choice it also returns the sorted distinct options.
//
// Rules run in order over the trimmed non-empty values and the first match
// wins: array-like, boolean, numeric (currency, rating, number), datetime,
// date, hyperlink, choice, then text. An all-empty column is text.
func InferColumnType(values []string, opts InferOptions) (ColumnType, []string) {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return TypeText, nil
	}
	n := float64(len(nonEmpty))

	if float64(countMatches(nonEmpty, isArrayLike)) > n*arrayLikeShare {
		return TypeMultipleChoice, distinctTokens(nonEmpty)
	}

	if all(nonEmpty, func(v string) bool { return booleanTokens[strings.ToLower(v)] }) {
		return TypeBoolean, nil
	}

	if t, ok := inferNumeric(nonEmpty, opts.CurrencySymbols); ok {
		return t, nil
	}

	if float64(countMatches(nonEmpty, matchesAny(datetimePatterns))) > n*dateLikeShare {
		return TypeDatetime, nil
	}
	if float64(countMatches(nonEmpty, matchesAny(datePatterns))) > n*dateLikeShare {
		return TypeDate, nil
	}

	if all(nonEmpty, hyperlinkPattern.MatchString) {
		return TypeHyperlink, nil
	}

	distinct := distinctValues(nonEmpty)
	if float64(len(distinct)) <= math.Min(choiceMax, n*choiceShare) {
		return TypeChoice, distinct
	}

	return TypeText, nil
}

// isArrayLike reports a bracket-wrapped value or one containing a comma.
func isArrayLike(v string) bool {
	if strings.Contains(v, ",") {
		return true
	}
	return len(v) >= 2 && strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]")
}

func inferNumeric(values []string, symbols string) (ColumnType, bool) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := parseNumber(stripChars(v, symbols+","))
		if err != nil {
			return "", false
		}
		nums = append(nums, f)
	}

	for _, v := range values {
		if r := []rune(v); len(r) > 0 && strings.ContainsRune(symbols, r[0]) {
			return TypeCurrency, true
		}
	}

	if all(nums, func(f float64) bool { return f >= 1 && f <= 5 && f == math.Trunc(f) }) {
		return TypeRating, true
	}
	return TypeNumber, true
}

func matchesAny(patterns []*regexp.Regexp) func(string) bool {
	return func(v string) bool {
		for _, p := range patterns {
			if p.MatchString(v) {
				return true
			}
		}
		return false
	}
}

func countMatches(values []string, match func(string) bool) int {
	n := 0
	for _, v := range values {
		if match(v) {
			n++
		}
	}
	return n
}

func all[T any](values []T, ok func(T) bool) bool {
	for _, v := range values {
		if !ok(v) {
			return false
		}
	}
	return true
}

func distinctValues(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func distinctTokens(values []string) []string {
	var tokens []string
	for _, v := range values {
		tokens = append(tokens, multiChoiceTokens(v)...)
	}
	return distinctValues(tokens)
}
