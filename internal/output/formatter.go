// Package output renders a solved plan for humans and machines: a console
// table, a per-year CSV export and a JSON document.
package output

import (
	"strings"

	"github.com/drawplan/drawplan/internal/domain"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic
// formatting).
type Formatter interface {
	Format(result *domain.PlanResult) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// builtInFormatters stores available formatters (extended incrementally).
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	CSVFormatter{},
	JSONFormatter{},
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"table":      "console",
	"text":       "console",
	"csv-simple": "csv",
	"json-plan":  "json",
}

// GetFormatterByName fetches a registered formatter, resolving aliases; nil
// when the name is unknown.
func GetFormatterByName(name string) Formatter {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliasMap[n]; ok {
		n = alias
	}
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}
