package domain

import "context"

// SearchFilter provides filtering options for searching definitions.
// Keyword and category pre-filter at the persistence layer; keyword takes
// precedence over category when both are supplied. Status and tags are
// post-filters applied in memory: status is an exact match, tags match if
// ANY requested tag is present.
type SearchFilter struct {
	Keyword  string
	Status   Status
	Tags     []string
	Category string
}

// DefinitionRepository defines the persistence gateway for workflow
// definitions, version snapshots and the template view over the same
// store. Implementations may use SQLite, in-memory storage, or other
// backends.
//
// Absence is reported with typed errors: NotFoundError for definitions
// and templates, VersionNotFoundError for snapshots. All other failures
// are wrapped in StorageError.
type DefinitionRepository interface {
	// Create inserts a new definition. Fails with DuplicateError if the
	// id already exists.
	Create(ctx context.Context, def *WorkflowDefinition) error

	// Update replaces an existing definition in full. Fails with
	// NotFoundError if the id does not exist.
	Update(ctx context.Context, def *WorkflowDefinition) error

	// Delete removes a definition. Version snapshots are not cascaded
	// and remain readable after the definition is gone.
	Delete(ctx context.Context, id string) error

	// Get retrieves a definition by id.
	Get(ctx context.Context, id string) (*WorkflowDefinition, error)

	// List retrieves every definition in the store, templates included.
	List(ctx context.Context) ([]*WorkflowDefinition, error)

	// SearchByKeyword retrieves definitions whose name or description
	// contains the keyword.
	SearchByKeyword(ctx context.Context, keyword string) ([]*WorkflowDefinition, error)

	// ListByCategory retrieves definitions with an exact category match.
	ListByCategory(ctx context.Context, category string) ([]*WorkflowDefinition, error)

	// CreateVersion appends an immutable snapshot. Snapshots are never
	// updated or deleted through this interface.
	CreateVersion(ctx context.Context, version *WorkflowVersion) error

	// ListVersions retrieves all snapshots for a workflow, newest first.
	ListVersions(ctx context.Context, workflowID string) ([]*WorkflowVersion, error)

	// GetVersion retrieves the snapshot with an exact version string match.
	GetVersion(ctx context.Context, workflowID, version string) (*WorkflowVersion, error)

	// PutTemplate inserts or updates the template view of a definition:
	// the embedded definition row plus the template metadata attached to it.
	PutTemplate(ctx context.Context, tpl *WorkflowTemplate) error

	// GetTemplate retrieves a template by id. Fails with TemplateError if
	// the underlying definition exists but is not flagged as a template.
	GetTemplate(ctx context.Context, id string) (*WorkflowTemplate, error)

	// ListTemplates retrieves every definition flagged as a template,
	// reconstituted with its metadata.
	ListTemplates(ctx context.Context) ([]*WorkflowTemplate, error)

	// Close releases any resources held by the repository.
	Close() error
}
