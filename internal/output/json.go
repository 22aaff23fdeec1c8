package output

import (
	"encoding/json"

	"github.com/drawplan/drawplan/internal/domain"
)

// JSONFormatter emits the full plan document, the same shape the HTTP API
// returns.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(result *domain.PlanResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
