// Package importer turns semi-structured spreadsheet rows into candidate
// lead fields. Headers come from human-maintained files in two languages, so
// column matching is heuristic and extraction never fails outright.
package importer

import (
	"fmt"
	"strings"
)

// Row is one spreadsheet row. Keys preserves the original column order so
// matching stays deterministic; Go maps alone would not.
type Row struct {
	Keys   []string
	Values map[string]string
}

// Value returns the cell under the given column header, or "" when absent.
func (r Row) Value(key string) string {
	return r.Values[key]
}

// Empty reports whether every cell in the row is blank.
func (r Row) Empty() bool {
	for _, key := range r.Keys {
		if strings.TrimSpace(r.Values[key]) != "" {
			return false
		}
	}
	return true
}

// Candidate holds the raw contact fields sniffed out of a row, before name
// and phone normalization. Warnings are advisory; a row is never rejected.
type Candidate struct {
	Name     string
	Email    string
	Phone    string
	Source   string
	Warnings []string
}

const defaultSource = "Imported"

// fieldRules are evaluated in this order. A column matches a field when its
// normalized header contains any of the needles; the first matching column in
// original column order wins.
var fieldRules = []struct {
	field   string
	needles []string
}{
	{"name", []string{"name", "nombre"}},
	{"email", []string{"email", "correo", "mail"}},
	{"phone", []string{"phone", "telefono", "teléfono", "celular", "móvil", "movil"}},
	{"source", []string{"campaign", "campaña", "source", "origen", "platform", "plataforma", "company", "empresa"}},
}

// normalizeKey canonicalizes a column header for matching: trim, lowercase,
// collapse whitespace runs to single underscores.
func normalizeKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), "_")
}

// Extract maps the row's columns onto canonical lead fields and applies the
// fallback heuristics for mislabelled or headerless data. Missing data
// yields empty strings, never an error.
func Extract(row Row) Candidate {
	var c Candidate
	matched := map[string]string{}

	for _, rule := range fieldRules {
		var hits []string
		for _, key := range row.Keys {
			normalized := normalizeKey(key)
			for _, needle := range rule.needles {
				if strings.Contains(normalized, needle) {
					hits = append(hits, key)
					break
				}
			}
		}
		if len(hits) == 0 {
			continue
		}
		matched[rule.field] = hits[0]
		if len(hits) > 1 {
			c.Warnings = append(c.Warnings, fmt.Sprintf("%d columns match %q; using %q", len(hits), rule.field, hits[0]))
		}
	}

	if key, ok := matched["name"]; ok {
		c.Name = row.Value(key)
	}
	if key, ok := matched["email"]; ok {
		c.Email = row.Value(key)
	}
	if key, ok := matched["phone"]; ok {
		c.Phone = row.Value(key)
	}
	if key, ok := matched["source"]; ok {
		c.Source = row.Value(key)
	}

	// A name that landed in the email column has no "@"; swap it back.
	if c.Name == "" && c.Email != "" && !strings.Contains(c.Email, "@") {
		c.Name = c.Email
		c.Email = ""
	}

	// Nothing matched at all: take the first non-empty cell and guess by shape.
	if c.Name == "" && c.Email == "" && c.Phone == "" {
		for _, key := range row.Keys {
			value := row.Value(key)
			if strings.TrimSpace(value) == "" {
				continue
			}
			if strings.Contains(value, "@") {
				c.Email = value
			} else {
				c.Name = value
			}
			break
		}
	}

	c.Email = strings.TrimSpace(c.Email)
	if c.Source == "" {
		c.Source = defaultSource
	}

	return c
}
