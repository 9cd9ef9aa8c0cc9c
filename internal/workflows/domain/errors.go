package domain

import "fmt"

// ValidationError indicates malformed caller input, rejected before any
// persistence write occurs.
type ValidationError struct {
	Field  string
	Reason string
	Index  int
}

func (e *ValidationError) Error() string {
	if e.Field == "steps" {
		return fmt.Sprintf("invalid %s[%d]: %s", e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates the requested workflow or template does not exist.
type NotFoundError struct {
	Kind string // "workflow" or "template"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// VersionNotFoundError indicates no snapshot exists for the requested
// workflow id and exact version string.
type VersionNotFoundError struct {
	WorkflowID string
	Version    string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q of workflow %q not found", e.Version, e.WorkflowID)
}

// VersionFormatError indicates a version string that is not exactly three
// dot-separated non-negative integers.
type VersionFormatError struct {
	Value string
}

func (e *VersionFormatError) Error() string {
	return fmt.Sprintf("malformed version %q: want major.minor.patch", e.Value)
}

// MissingParameterError indicates a required template parameter was neither
// supplied nor covered by a default.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required template parameter %q missing and has no default", e.Name)
}

// ParameterSubstitutionError indicates the document no longer parses after
// raw placeholder substitution. Parameter values containing structural
// characters are a known way to trigger this.
type ParameterSubstitutionError struct {
	Err error
}

func (e *ParameterSubstitutionError) Error() string {
	return fmt.Sprintf("definition unparseable after parameter substitution: %v", e.Err)
}

func (e *ParameterSubstitutionError) Unwrap() error {
	return e.Err
}

// DuplicateError indicates an import attempted to create an item whose id
// already exists while overwrite was disabled.
type DuplicateError struct {
	Kind string
	ID   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.ID)
}

// TemplateError indicates a plain workflow definition was accessed through
// the template API.
type TemplateError struct {
	ID     string
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: %s", e.ID, e.Reason)
}

// StorageError is an opaque passthrough of an underlying persistence
// failure, annotated with the operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
