package domain

import "time"

// Status represents the lifecycle state of a workflow definition.
type Status string

const (
	// StatusDraft indicates the definition is being edited and is not yet live.
	StatusDraft Status = "draft"

	// StatusPublished indicates the definition is live and eligible to run.
	StatusPublished Status = "published"

	// StatusArchived indicates the definition is retired but kept for reference.
	StatusArchived Status = "archived"

	// StatusDisabled indicates the definition is switched off without retiring it.
	StatusDisabled Status = "disabled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusDisabled:
		return true
	default:
		return false
	}
}

// rank orders statuses along the one-way lifecycle. Archived and disabled
// share the terminal rank; there is no path between them or back.
func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusPublished:
		return 1
	case StatusArchived, StatusDisabled:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to target is a legal
// forward transition. Transitions are one-directional: once published a
// definition never returns to draft, and once archived or disabled it
// never returns to published.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	return target.rank() > s.rank()
}

// Step is a single opaque step record in a workflow. The registry persists
// and transports steps without interpreting their contents; only the
// template engine reparses them during parameter substitution.
type Step map[string]any

// WorkflowDefinition is the persisted, versioned description of an
// automatable step sequence. Fields are exported so the definition can be
// serialized to its document form for storage, transfer and template
// parameter substitution.
type WorkflowDefinition struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string         `json:"version" yaml:"version"`
	Status      Status         `json:"status" yaml:"status"`
	Steps       []Step         `json:"steps" yaml:"steps"`
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Trigger     map[string]any `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
	IsTemplate  bool           `json:"is_template,omitempty" yaml:"is_template,omitempty"`
	TemplateID  string         `json:"template_id,omitempty" yaml:"template_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
}

// InitialVersion is the version assigned to newly created definitions and
// to clones, which always start a fresh lineage.
const InitialVersion = "1.0.0"

// Validate checks the structural constraints that must hold before a
// definition is accepted for persistence. It does not touch system-assigned
// fields (id, timestamps); those are filled in by the registry.
func (d *WorkflowDefinition) Validate() error {
	if d == nil {
		return &ValidationError{Field: "definition", Reason: "definition is nil"}
	}
	if d.Name == "" {
		return &ValidationError{Field: "name", Reason: "name must not be empty"}
	}
	for i, step := range d.Steps {
		if len(step) == 0 {
			return &ValidationError{Field: "steps", Reason: "step records must not be empty", Index: i}
		}
	}
	if d.Version != "" {
		if _, _, _, err := ParseVersion(d.Version); err != nil {
			return err
		}
	}
	if d.Status != "" && !d.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: "unrecognized status " + string(d.Status)}
	}
	return nil
}

// Clone returns a deep copy of the definition. Steps, config, trigger and
// tags are copied one level deep, which is sufficient because the registry
// never mutates the interior of opaque records.
func (d *WorkflowDefinition) Clone() *WorkflowDefinition {
	if d == nil {
		return nil
	}
	out := *d
	if d.Steps != nil {
		out.Steps = make([]Step, len(d.Steps))
		for i, step := range d.Steps {
			copied := make(Step, len(step))
			for k, v := range step {
				copied[k] = v
			}
			out.Steps[i] = copied
		}
	}
	if d.Config != nil {
		out.Config = make(map[string]any, len(d.Config))
		for k, v := range d.Config {
			out.Config[k] = v
		}
	}
	if d.Trigger != nil {
		out.Trigger = make(map[string]any, len(d.Trigger))
		for k, v := range d.Trigger {
			out.Trigger[k] = v
		}
	}
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	return &out
}

// HasAnyTag reports whether the definition carries at least one of the
// requested tags. Search filtering is ANY-of, not ALL-of.
func (d *WorkflowDefinition) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	set := make(map[string]bool, len(d.Tags))
	for _, t := range d.Tags {
		set[t] = true
	}
	for _, t := range tags {
		if set[t] {
			return true
		}
	}
	return false
}
