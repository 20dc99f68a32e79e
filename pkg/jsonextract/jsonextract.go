// Package jsonextract locates structured objects embedded in free-form model
// output. It is deliberately lenient; callers validate the fragment strictly.
package jsonextract

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var fenceRe = regexp.MustCompile("(?i)```(?:json)?")

// discriminators caches one compiled pattern per (key, value) pair.
var discriminators sync.Map

// discriminatorFor matches `"key": "value"` with the value compared without
// case, the same rule topLevelMatches applies.
func discriminatorFor(key, value string) *regexp.Regexp {
	cacheKey := key + "\x00" + value
	if re, ok := discriminators.Load(cacheKey); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"(?i:%s)"`, regexp.QuoteMeta(key), regexp.QuoteMeta(value)))
	actual, _ := discriminators.LoadOrStore(cacheKey, re)
	return actual.(*regexp.Regexp)
}

// StripFences removes markdown code-fence markers anywhere in text.
func StripFences(text string) string {
	return fenceRe.ReplaceAllString(text, "")
}

// FindObject returns the smallest well-formed JSON object in text whose
// top-level key equals value, ignoring case in the value. matched reports
// whether the discriminator appears at all; a matched result with an empty or
// invalid fragment means the model tried to emit the object but got it wrong.
func FindObject(text, key, value string) (string, bool) {
	text = StripFences(text)

	discriminator := discriminatorFor(key, value)
	if !discriminator.MatchString(text) {
		return "", false
	}

	var best, bestLoose string
	for _, frag := range balancedObjects(text) {
		if !discriminator.MatchString(frag) {
			continue
		}
		if bestLoose == "" || len(frag) < len(bestLoose) {
			bestLoose = frag
		}
		if !topLevelMatches(frag, key, value) {
			continue
		}
		if best == "" || len(frag) < len(best) {
			best = frag
		}
	}

	if best != "" {
		return best, true
	}
	return bestLoose, true
}

func topLevelMatches(frag, key, value string) bool {
	if !json.Valid([]byte(frag)) {
		return false
	}
	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal([]byte(frag), &fields); err != nil {
		return false
	}
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var got string
	if err := json.Unmarshal(raw, &got); err != nil {
		return false
	}
	return strings.EqualFold(got, value)
}

// balancedObjects returns every brace-balanced substring of text that starts
// with '{'. Braces inside string literals are ignored.
func balancedObjects(text string) []string {
	var out []string
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		if end := matchBrace(text, start); end > 0 {
			out = append(out, text[start:end+1])
		}
	}
	return out
}

func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
