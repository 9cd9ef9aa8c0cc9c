package domain

// Bundle is the transfer unit for moving definitions and templates between
// registry instances.
type Bundle struct {
	Workflows []*WorkflowDefinition `json:"workflows" yaml:"workflows"`
	Templates []*WorkflowTemplate   `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// ImportResult aggregates the outcome of a best-effort bundle import.
// Individual item failures are recorded here instead of aborting the
// operation; a partially-completed import leaves earlier successful items
// committed.
type ImportResult struct {
	SuccessCount      int      `json:"success_count" yaml:"success_count"`
	ErrorCount        int      `json:"error_count" yaml:"error_count"`
	Errors            []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	ImportedWorkflows []string `json:"imported_workflows,omitempty" yaml:"imported_workflows,omitempty"`
	ImportedTemplates []string `json:"imported_templates,omitempty" yaml:"imported_templates,omitempty"`
}

// RecordSuccess counts a successfully imported item and files its id under
// the given category list.
func (r *ImportResult) RecordSuccess(ids *[]string, id string) {
	r.SuccessCount++
	*ids = append(*ids, id)
}

// RecordError counts a failed item and keeps its error string.
func (r *ImportResult) RecordError(msg string) {
	r.ErrorCount++
	r.Errors = append(r.Errors, msg)
}
