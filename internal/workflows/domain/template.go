package domain

import "time"

// TemplateParameter describes a single substitutable parameter of a
// template. A required parameter with no default must be supplied at
// instantiation time.
type TemplateParameter struct {
	Name     string `json:"name" yaml:"name"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Default  any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// WorkflowTemplate is a reusable workflow definition carrying parameter
// placeholders and metadata. The embedded Workflow always has
// IsTemplate=true and its ID forced equal to the template's ID; templates
// share the definition store rather than living in a parallel schema.
type WorkflowTemplate struct {
	ID           string              `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	TemplateType string              `json:"template_type,omitempty" yaml:"template_type,omitempty"`
	Workflow     *WorkflowDefinition `json:"workflow" yaml:"workflow"`
	Parameters   []TemplateParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Tags         []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt    time.Time           `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" yaml:"updated_at"`
}

// Validate checks the structural constraints of a template before it is
// accepted for persistence.
func (t *WorkflowTemplate) Validate() error {
	if t == nil {
		return &ValidationError{Field: "template", Reason: "template is nil"}
	}
	if t.Name == "" {
		return &ValidationError{Field: "name", Reason: "name must not be empty"}
	}
	if t.Workflow == nil {
		return &ValidationError{Field: "workflow", Reason: "template must embed a workflow definition"}
	}
	seen := make(map[string]bool, len(t.Parameters))
	for _, p := range t.Parameters {
		if p.Name == "" {
			return &ValidationError{Field: "parameters", Reason: "parameter name must not be empty"}
		}
		if seen[p.Name] {
			return &ValidationError{Field: "parameters", Reason: "duplicate parameter " + p.Name}
		}
		seen[p.Name] = true
	}
	return t.Workflow.Validate()
}

// Clone returns a deep copy of the template, including the embedded
// workflow definition.
func (t *WorkflowTemplate) Clone() *WorkflowTemplate {
	if t == nil {
		return nil
	}
	out := *t
	out.Workflow = t.Workflow.Clone()
	if t.Parameters != nil {
		out.Parameters = append([]TemplateParameter(nil), t.Parameters...)
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return &out
}
