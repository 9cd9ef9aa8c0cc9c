// Package template implements parameter validation and placeholder
// substitution for workflow templates.
//
// Substitution operates on the serialized document form of a definition:
// every literal occurrence of the token {{name}} is replaced with the
// textual form of the parameter value. Supplied parameters are applied
// first, then defaults of unsupplied parameter definitions. This is raw
// text replacement over a structured document, kept behind the narrow
// Substituter interface so a structured engine can replace it later
// without changing observable behavior.
package template

import (
	"encoding/json"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// Engine applies template parameters to workflow definitions.
type Engine struct {
	substituter Substituter
}

// NewEngine creates an engine using the raw token substituter.
func NewEngine() *Engine {
	return &Engine{substituter: rawSubstituter{}}
}

// NewEngineWithSubstituter creates an engine with a custom substitution
// strategy. Intended for tests and future structured substitution.
func NewEngineWithSubstituter(s Substituter) *Engine {
	return &Engine{substituter: s}
}

// ApplyParameters validates params against the parameter definitions and
// returns a new definition with every placeholder substituted.
//
// Validation runs first and performs no writes: every parameter marked
// required must appear in params or carry a default, otherwise
// MissingParameterError is returned. After substitution the document is
// parsed back; a parameter value containing characters that break the
// document syntax surfaces as ParameterSubstitutionError.
func (e *Engine) ApplyParameters(def *domain.WorkflowDefinition, paramDefs []domain.TemplateParameter, params map[string]any) (*domain.WorkflowDefinition, error) {
	for _, pd := range paramDefs {
		if !pd.Required {
			continue
		}
		if _, ok := params[pd.Name]; ok {
			continue
		}
		if pd.Default != nil {
			continue
		}
		return nil, &domain.MissingParameterError{Name: pd.Name}
	}

	doc, err := json.Marshal(def)
	if err != nil {
		return nil, &domain.ParameterSubstitutionError{Err: err}
	}

	// Defaults fill in only the definitions the caller did not supply.
	defaults := make(map[string]any)
	for _, pd := range paramDefs {
		if _, supplied := params[pd.Name]; supplied {
			continue
		}
		if pd.Default != nil {
			defaults[pd.Name] = pd.Default
		}
	}

	doc = e.substituter.Substitute(doc, params, defaults)

	var out domain.WorkflowDefinition
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, &domain.ParameterSubstitutionError{Err: err}
	}
	return &out, nil
}
