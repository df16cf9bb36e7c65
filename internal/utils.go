package internal

import (
	"bytes"
	"text/template"

	"github.com/getzep/sprig/v3"
)

// ParsePrompt renders promptTemplate with data. sprig's text functions
// (date, trunc, join, ...) are available to templates.
func ParsePrompt(promptTemplate string, data any) (string, error) {
	tmpl, err := template.New("prompt").Funcs(sprig.TxtFuncMap()).Parse(promptTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// TruncateRunes returns at most n leading characters of s. It never splits a
// multi-byte character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
