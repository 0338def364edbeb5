package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"trim":  strings.TrimSpace,
	"truncate": func(limit int, s string) string {
		if utf8.RuneCountInString(s) <= limit {
			return s
		}
		return string([]rune(s)[:limit]) + "..."
	},
	"join": func(sep string, items []string) string {
		return strings.Join(items, sep)
	},
}

// Template is a parsed prompt template.
type Template struct {
	tmpl *template.Template
}

// ParseTemplate compiles text once so it can be rendered repeatedly.
func ParseTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// Render executes the template against state.
func (t *Template) Render(state map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, state); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}

// RenderTemplate parses and renders text in one step. Text without template
// markers is returned unchanged.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	t, err := ParseTemplate("prompt", text)
	if err != nil {
		return "", err
	}
	return t.Render(state)
}
