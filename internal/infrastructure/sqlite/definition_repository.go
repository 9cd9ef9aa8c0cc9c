package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// definitionColumns is the list of columns to select for definition queries.
const definitionColumns = `id, name, description, version, status, steps, config, trigger, tags,
	category, is_template, template_id, template_meta, created_at, updated_at`

// definitionRepository implements domain.DefinitionRepository using SQLite.
type definitionRepository struct {
	db *sql.DB
}

// newDefinitionRepository creates a new definitionRepository instance.
func newDefinitionRepository(db *sql.DB) *definitionRepository {
	return &definitionRepository{db: db}
}

// Ensure definitionRepository implements domain.DefinitionRepository.
var _ domain.DefinitionRepository = (*definitionRepository)(nil)

// scanDefinition scans a row into a DefinitionModel.
func scanDefinition(scanner interface{ Scan(...any) error }) (*DefinitionModel, error) {
	var model DefinitionModel
	err := scanner.Scan(
		&model.ID, &model.Name, &model.Description, &model.Version, &model.Status,
		&model.Steps, &model.Config, &model.Trigger, &model.Tags,
		&model.Category, &model.IsTemplate, &model.TemplateID, &model.TemplateMeta,
		&model.CreatedAt, &model.UpdatedAt,
	)
	return &model, err
}

// Create inserts a new definition row.
// Fails with DuplicateError if the id already exists.
func (r *definitionRepository) Create(ctx context.Context, def *domain.WorkflowDefinition) error {
	model, err := toDefinitionModel(def)
	if err != nil {
		return &domain.StorageError{Op: "create", Err: err}
	}

	var exists int
	err = r.db.QueryRowContext(ctx,
		`SELECT 1 FROM workflow_definitions WHERE id = ?`, model.ID,
	).Scan(&exists)
	if err == nil {
		return &domain.DuplicateError{Kind: "workflow", ID: model.ID}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return &domain.StorageError{Op: "create", Err: err}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO workflow_definitions (
			id, name, description, version, status, steps, config, trigger, tags,
			category, is_template, template_id, template_meta, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		model.ID, model.Name, model.Description, model.Version, model.Status,
		model.Steps, model.Config, model.Trigger, model.Tags,
		model.Category, model.IsTemplate, model.TemplateID, model.TemplateMeta,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "create", Err: err}
	}
	return nil
}

// Update replaces an existing definition row in full.
// The template_meta column is preserved; template metadata is written
// through PutTemplate only.
func (r *definitionRepository) Update(ctx context.Context, def *domain.WorkflowDefinition) error {
	model, err := toDefinitionModel(def)
	if err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE workflow_definitions SET
			name = ?, description = ?, version = ?, status = ?, steps = ?,
			config = ?, trigger = ?, tags = ?, category = ?, is_template = ?,
			template_id = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		model.Name, model.Description, model.Version, model.Status, model.Steps,
		model.Config, model.Trigger, model.Tags, model.Category, model.IsTemplate,
		model.TemplateID, model.CreatedAt, model.UpdatedAt,
		model.ID,
	)
	if err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &domain.StorageError{Op: "update", Err: err}
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Kind: "workflow", ID: def.ID}
	}
	return nil
}

// Delete removes a definition row. Version snapshots are untouched; there
// is no cascade.
func (r *definitionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM workflow_definitions WHERE id = ?`, id,
	)
	if err != nil {
		return &domain.StorageError{Op: "delete", Err: err}
	}
	return nil
}

// Get retrieves a definition by id.
func (r *definitionRepository) Get(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+definitionColumns+` FROM workflow_definitions WHERE id = ?`, id,
	)
	model, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "workflow", ID: id}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	def, err := model.toDomain()
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return def, nil
}

// List retrieves every definition, templates included, ordered by creation
// time descending.
func (r *definitionRepository) List(ctx context.Context) ([]*domain.WorkflowDefinition, error) {
	return r.queryDefinitions(ctx, "list",
		`SELECT `+definitionColumns+` FROM workflow_definitions ORDER BY created_at DESC`,
	)
}

// SearchByKeyword retrieves definitions whose name or description contains
// the keyword.
func (r *definitionRepository) SearchByKeyword(ctx context.Context, keyword string) ([]*domain.WorkflowDefinition, error) {
	pattern := "%" + keyword + "%"
	return r.queryDefinitions(ctx, "search",
		`SELECT `+definitionColumns+` FROM workflow_definitions
		 WHERE name LIKE ? OR description LIKE ?
		 ORDER BY created_at DESC`,
		pattern, pattern,
	)
}

// ListByCategory retrieves definitions with an exact category match.
func (r *definitionRepository) ListByCategory(ctx context.Context, category string) ([]*domain.WorkflowDefinition, error) {
	return r.queryDefinitions(ctx, "list_by_category",
		`SELECT `+definitionColumns+` FROM workflow_definitions
		 WHERE category = ? ORDER BY created_at DESC`,
		category,
	)
}

func (r *definitionRepository) queryDefinitions(ctx context.Context, op, query string, args ...any) ([]*domain.WorkflowDefinition, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var defs []*domain.WorkflowDefinition
	for rows.Next() {
		model, err := scanDefinition(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: op, Err: err}
		}
		def, err := model.toDomain()
		if err != nil {
			return nil, &domain.StorageError{Op: op, Err: err}
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	return defs, nil
}

// CreateVersion appends an immutable snapshot row.
func (r *definitionRepository) CreateVersion(ctx context.Context, version *domain.WorkflowVersion) error {
	model, err := toVersionModel(version)
	if err != nil {
		return &domain.StorageError{Op: "create_version", Err: err}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO workflow_versions (workflow_id, version, definition, changelog, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		model.WorkflowID, model.Version, model.Definition, model.Changelog, model.CreatedBy, model.CreatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "create_version", Err: err}
	}
	return nil
}

// ListVersions retrieves all snapshots for a workflow, newest first.
func (r *definitionRepository) ListVersions(ctx context.Context, workflowID string) ([]*domain.WorkflowVersion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, workflow_id, version, definition, changelog, created_by, created_at
		 FROM workflow_versions WHERE workflow_id = ? ORDER BY created_at DESC, id DESC`,
		workflowID,
	)
	if err != nil {
		return nil, &domain.StorageError{Op: "list_versions", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var versions []*domain.WorkflowVersion
	for rows.Next() {
		var model VersionModel
		if err := rows.Scan(
			&model.ID, &model.WorkflowID, &model.Version, &model.Definition,
			&model.Changelog, &model.CreatedBy, &model.CreatedAt,
		); err != nil {
			return nil, &domain.StorageError{Op: "list_versions", Err: err}
		}
		version, err := model.toDomain()
		if err != nil {
			return nil, &domain.StorageError{Op: "list_versions", Err: err}
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list_versions", Err: err}
	}
	return versions, nil
}

// GetVersion retrieves the snapshot with an exact version string match.
func (r *definitionRepository) GetVersion(ctx context.Context, workflowID, version string) (*domain.WorkflowVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, workflow_id, version, definition, changelog, created_by, created_at
		 FROM workflow_versions WHERE workflow_id = ? AND version = ?`,
		workflowID, version,
	)
	var model VersionModel
	err := row.Scan(
		&model.ID, &model.WorkflowID, &model.Version, &model.Definition,
		&model.Changelog, &model.CreatedBy, &model.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.VersionNotFoundError{WorkflowID: workflowID, Version: version}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get_version", Err: err}
	}
	return model.toDomain()
}

// PutTemplate inserts or updates the template view of a definition: the
// embedded definition row plus its metadata document.
func (r *definitionRepository) PutTemplate(ctx context.Context, tpl *domain.WorkflowTemplate) error {
	model, err := toDefinitionModel(tpl.Workflow)
	if err != nil {
		return &domain.StorageError{Op: "put_template", Err: err}
	}
	meta, err := encodeTemplateMeta(tpl)
	if err != nil {
		return &domain.StorageError{Op: "put_template", Err: err}
	}
	model.TemplateMeta = &meta

	result, err := r.db.ExecContext(ctx,
		`UPDATE workflow_definitions SET
			name = ?, description = ?, version = ?, status = ?, steps = ?,
			config = ?, trigger = ?, tags = ?, category = ?, is_template = ?,
			template_id = ?, template_meta = ?, created_at = ?, updated_at = ?
		WHERE id = ?`,
		model.Name, model.Description, model.Version, model.Status, model.Steps,
		model.Config, model.Trigger, model.Tags, model.Category, model.IsTemplate,
		model.TemplateID, model.TemplateMeta, model.CreatedAt, model.UpdatedAt,
		model.ID,
	)
	if err != nil {
		return &domain.StorageError{Op: "put_template", Err: err}
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &domain.StorageError{Op: "put_template", Err: err}
	}
	if rowsAffected > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO workflow_definitions (
			id, name, description, version, status, steps, config, trigger, tags,
			category, is_template, template_id, template_meta, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		model.ID, model.Name, model.Description, model.Version, model.Status,
		model.Steps, model.Config, model.Trigger, model.Tags,
		model.Category, model.IsTemplate, model.TemplateID, model.TemplateMeta,
		model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return &domain.StorageError{Op: "put_template", Err: err}
	}
	return nil
}

// GetTemplate retrieves a template by id. A definition that exists but is
// not flagged as a template fails with TemplateError: plain workflows must
// not be fetched through the template API.
func (r *definitionRepository) GetTemplate(ctx context.Context, id string) (*domain.WorkflowTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+definitionColumns+` FROM workflow_definitions WHERE id = ?`, id,
	)
	model, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Kind: "template", ID: id}
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get_template", Err: err}
	}
	if !model.IsTemplate {
		return nil, &domain.TemplateError{ID: id, Reason: "definition exists but is not a template"}
	}
	tpl, err := model.toTemplate()
	if err != nil {
		return nil, &domain.StorageError{Op: "get_template", Err: err}
	}
	return tpl, nil
}

// ListTemplates retrieves every template row, newest first.
func (r *definitionRepository) ListTemplates(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+definitionColumns+` FROM workflow_definitions
		 WHERE is_template = 1 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, &domain.StorageError{Op: "list_templates", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var templates []*domain.WorkflowTemplate
	for rows.Next() {
		model, err := scanDefinition(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "list_templates", Err: err}
		}
		tpl, err := model.toTemplate()
		if err != nil {
			return nil, &domain.StorageError{Op: "list_templates", Err: err}
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list_templates", Err: err}
	}
	return templates, nil
}

// Close releases any resources held by the repository.
// This is a no-op because the connection is owned by the DB struct.
func (r *definitionRepository) Close() error {
	return nil
}
