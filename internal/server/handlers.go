package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/drawplan/drawplan/internal/config"
	"github.com/drawplan/drawplan/internal/domain"
)

// calculateRequest is the POST /calculate payload: the household configuration
// in the same shape as the YAML file, plus run arguments.
type calculateRequest struct {
	config.File
	Arguments requestArguments `json:"arguments"`
}

type requestArguments struct {
	Objective                objectiveArgument `json:"objective"`
	TimeLimitSeconds         float64           `json:"timelimit,omitempty"`
	PessimisticTaxes         bool              `json:"pessimistic_taxes,omitempty"`
	PessimisticHealthcare    bool              `json:"pessimistic_healthcare,omitempty"`
	NoConversions            bool              `json:"no_conversions,omitempty"`
	NoConversionsAfterSocSec bool              `json:"no_conversions_after_socsec,omitempty"`
}

type objectiveArgument struct {
	Type  string  `json:"type"`
	Value float64 `json:"value,omitempty"`
}

func (a requestArguments) runConfig() (domain.RunConfig, error) {
	cfg := domain.RunConfig{
		PessimisticTaxes:         a.PessimisticTaxes,
		PessimisticHealthcare:    a.PessimisticHealthcare,
		NoConversions:            a.NoConversions,
		NoConversionsAfterSocSec: a.NoConversionsAfterSocSec,
	}
	if a.TimeLimitSeconds > 0 {
		cfg.TimeLimit = time.Duration(a.TimeLimitSeconds * float64(time.Second))
	}
	switch a.Objective.Type {
	case "", "max_spend":
		cfg.Objective = domain.Objective{Kind: domain.MaxSpend}
	case "max_assets":
		cfg.Objective = domain.Objective{Kind: domain.MaxAssets, Value: a.Objective.Value}
	case "min_taxes":
		cfg.Objective = domain.Objective{Kind: domain.MinTaxes, Value: a.Objective.Value}
	default:
		return cfg, fmt.Errorf("unknown objective type %q", a.Objective.Type)
	}
	return cfg, nil
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "drawplan",
	})
}

// handleCalculate parses the household, runs the solve and returns the plan.
// Input problems are 400s; solver failures are 500s; infeasible or unbounded
// models are successful responses with that status in the body.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	parser := config.NewParser()
	file, err := parser.Normalize(&req.File)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	household, err := config.BuildHousehold(file, s.tables)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runCfg, err := req.Arguments.runConfig()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if s.solveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.solveTimeout)
		defer cancel()
	}
	result, err := s.planner.Plan(ctx, household, runCfg)
	if err != nil {
		s.log.Error().Err(err).Msg("solve failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
