package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

func templateDefinition() *domain.WorkflowDefinition {
	return &domain.WorkflowDefinition{
		Name:    "Report for {{audience}}",
		Version: domain.InitialVersion,
		Status:  domain.StatusDraft,
		Steps: []domain.Step{
			{"type": "fetch", "url": "https://example.com/{{dataset}}"},
			{"type": "email", "to": "{{recipient}}", "subject": "{{subject}}"},
		},
	}
}

func TestApplyParameters_SubstitutesSuppliedValues(t *testing.T) {
	engine := NewEngine()
	paramDefs := []domain.TemplateParameter{
		{Name: "audience", Required: true},
		{Name: "dataset", Required: true},
		{Name: "recipient", Required: true},
		{Name: "subject", Default: "Report"},
	}
	params := map[string]any{
		"audience":  "Sales",
		"dataset":   "q3",
		"recipient": "sales@example.com",
		"subject":   "Q3 Numbers",
	}

	out, err := engine.ApplyParameters(templateDefinition(), paramDefs, params)
	require.NoError(t, err)
	require.Equal(t, "Report for Sales", out.Name)
	require.Equal(t, "https://example.com/q3", out.Steps[0]["url"])
	require.Equal(t, "sales@example.com", out.Steps[1]["to"])
	require.Equal(t, "Q3 Numbers", out.Steps[1]["subject"])
}

func TestApplyParameters_DefaultFillsUnsupplied(t *testing.T) {
	engine := NewEngine()
	paramDefs := []domain.TemplateParameter{
		{Name: "audience", Required: true},
		{Name: "dataset", Default: "latest"},
		{Name: "recipient", Default: "team@example.com"},
		{Name: "subject", Default: "Report"},
	}

	out, err := engine.ApplyParameters(templateDefinition(), paramDefs, map[string]any{
		"audience": "Ops",
	})
	require.NoError(t, err)
	require.Equal(t, "Report for Ops", out.Name)
	require.Equal(t, "https://example.com/latest", out.Steps[0]["url"])
	require.Equal(t, "team@example.com", out.Steps[1]["to"])
	require.Equal(t, "Report", out.Steps[1]["subject"])
}

func TestApplyParameters_SuppliedWinsOverDefault(t *testing.T) {
	engine := NewEngine()
	paramDefs := []domain.TemplateParameter{
		{Name: "subject", Default: "Report"},
	}

	def := &domain.WorkflowDefinition{
		Name:  "s",
		Steps: []domain.Step{{"subject": "{{subject}}"}},
	}
	out, err := engine.ApplyParameters(def, paramDefs, map[string]any{"subject": "Custom"})
	require.NoError(t, err)
	require.Equal(t, "Custom", out.Steps[0]["subject"])
}

func TestApplyParameters_MissingRequired(t *testing.T) {
	engine := NewEngine()
	paramDefs := []domain.TemplateParameter{
		{Name: "recipient", Required: true},
	}

	_, err := engine.ApplyParameters(templateDefinition(), paramDefs, nil)
	require.Error(t, err)

	var missing *domain.MissingParameterError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "recipient", missing.Name)
}

func TestApplyParameters_RequiredSatisfiedByDefault(t *testing.T) {
	engine := NewEngine()
	paramDefs := []domain.TemplateParameter{
		{Name: "recipient", Required: true, Default: "team@example.com"},
	}

	out, err := engine.ApplyParameters(templateDefinition(), paramDefs, nil)
	require.NoError(t, err)
	require.Equal(t, "team@example.com", out.Steps[1]["to"])
}

func TestApplyParameters_NonStringValue(t *testing.T) {
	engine := NewEngine()
	def := &domain.WorkflowDefinition{
		Name:  "s",
		Steps: []domain.Step{{"note": "retry {{count}} times"}},
	}
	out, err := engine.ApplyParameters(def, []domain.TemplateParameter{{Name: "count"}}, map[string]any{"count": 3})
	require.NoError(t, err)
	require.Equal(t, "retry 3 times", out.Steps[0]["note"])
}

func TestApplyParameters_UndeclaredPlaceholderSurvives(t *testing.T) {
	engine := NewEngine()
	def := &domain.WorkflowDefinition{
		Name:  "s",
		Steps: []domain.Step{{"note": "{{unknown}}"}},
	}
	out, err := engine.ApplyParameters(def, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "{{unknown}}", out.Steps[0]["note"], "Unmatched tokens pass through untouched")
}

// Raw substitution has no syntax awareness: a value carrying a double quote
// corrupts the document, and the engine reports that instead of persisting
// garbage.
func TestApplyParameters_ValueBreaksDocument(t *testing.T) {
	engine := NewEngine()
	def := &domain.WorkflowDefinition{
		Name:  "s",
		Steps: []domain.Step{{"note": "{{v}}"}},
	}
	_, err := engine.ApplyParameters(def, []domain.TemplateParameter{{Name: "v"}}, map[string]any{"v": `a"b`})
	require.Error(t, err)

	var subErr *domain.ParameterSubstitutionError
	require.True(t, errors.As(err, &subErr))
}

func TestApplyParameters_DoesNotMutateInput(t *testing.T) {
	engine := NewEngine()
	def := templateDefinition()
	_, err := engine.ApplyParameters(def, nil, map[string]any{"audience": "Sales"})
	require.NoError(t, err)
	require.Equal(t, "Report for {{audience}}", def.Name, "Input definition stays untouched")
}
