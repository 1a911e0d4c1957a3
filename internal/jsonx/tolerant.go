// Package jsonx parses JSON out of free-form language-model replies.
//
// Model output frequently embeds literal control characters (raw newlines,
// tabs) inside string values, which strict JSON rejects. Unmarshal first
// attempts a strict parse and, on failure, rewrites control bytes found
// inside string literals before trying once more.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FirstObject returns the first {...} region of raw: from the first '{' to
// the last '}'. Returns false when raw contains no object at all.
func FirstObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Unmarshal parses data into v, tolerating raw control bytes inside string
// literals. If even the sanitized form fails to parse, the strict error for
// the sanitized text is returned.
func Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	sanitized := sanitize(string(data))
	if err := json.Unmarshal([]byte(sanitized), v); err != nil {
		return fmt.Errorf("parse model JSON: %w", err)
	}
	return nil
}

// sanitize rewrites raw control bytes that appear inside quoted strings.
// Outside strings, and for backslash-escaped sequences, characters pass
// through verbatim.
func sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}
		switch {
		case c == '\\':
			escaped = true
			b.WriteByte(c)
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
