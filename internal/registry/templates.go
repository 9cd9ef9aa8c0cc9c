package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdeck/flowdeck/internal/log"
	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// CreateTemplate persists a template and returns its id. The embedded
// definition is written through the normal definition store: a template is
// a definition flagged is_template, with its id forced equal to the
// template's id. An empty template id is replaced with a generated one.
func (s *Service) CreateTemplate(ctx context.Context, tpl *domain.WorkflowTemplate) (string, error) {
	ctx, span := s.tracer.Start(ctx, "registry.create_template")
	defer span.End()

	if err := tpl.Validate(); err != nil {
		return "", err
	}

	created := tpl.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.Workflow.ID = created.ID
	created.Workflow.IsTemplate = true
	if created.Workflow.Version == "" {
		created.Workflow.Version = domain.InitialVersion
	}
	if created.Workflow.Status == "" {
		created.Workflow.Status = domain.StatusDraft
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Workflow.CreatedAt = now
	created.Workflow.UpdatedAt = now

	span.SetAttributes(attribute.String("template.id", created.ID))

	if err := s.repo.PutTemplate(ctx, created); err != nil {
		return "", err
	}
	s.templates.Set(ctx, created.ID, created, s.cacheTTL)

	log.Info(log.CatTemplate, "template created", "id", created.ID, "name", created.Name)
	return created.ID, nil
}

// GetTemplate retrieves a template, cache first with persistence fallback.
// Fetching a plain workflow through the template API fails with
// TemplateError.
func (s *Service) GetTemplate(ctx context.Context, id string) (*domain.WorkflowTemplate, error) {
	ctx, span := s.tracer.Start(ctx, "registry.get_template",
		trace.WithAttributes(attribute.String("template.id", id)))
	defer span.End()

	if tpl, ok := s.templates.Get(ctx, id); ok {
		return tpl.Clone(), nil
	}

	tpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.templates.Set(ctx, id, tpl, s.cacheTTL)
	return tpl.Clone(), nil
}

// ListTemplates returns every template. Like workflow listing, bulk reads
// bypass the cache.
func (s *Service) ListTemplates(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	ctx, span := s.tracer.Start(ctx, "registry.list_templates")
	defer span.End()

	return s.repo.ListTemplates(ctx)
}

// DeleteTemplate removes a template's definition row and evicts it from
// both caches. Workflows spawned from the template keep their template_id
// back-reference; it is not cleared (same no-cascade policy as workflow
// deletion).
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "registry.delete_template",
		trace.WithAttributes(attribute.String("template.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.templates.Delete(ctx, id)
	_ = s.workflows.Delete(ctx, id)
	log.Info(log.CatTemplate, "template deleted", "id", id)
	return nil
}

// CreateFromTemplate instantiates a workflow from a template: the embedded
// definition is cloned under a new id, renamed, unflagged as template and
// back-referenced to its source, then parameters are substituted and the
// result goes through the normal create path.
//
// A missing required parameter fails with MissingParameterError before any
// persistence write occurs.
func (s *Service) CreateFromTemplate(ctx context.Context, templateID, name string, params map[string]any) (string, error) {
	ctx, span := s.tracer.Start(ctx, "registry.create_from_template",
		trace.WithAttributes(attribute.String("template.id", templateID)))
	defer span.End()

	tpl, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return "", err
	}

	wf := tpl.Workflow.Clone()
	wf.ID = uuid.NewString()
	wf.Name = name
	wf.IsTemplate = false
	wf.TemplateID = tpl.ID

	substituted, err := s.engine.ApplyParameters(wf, tpl.Parameters, params)
	if err != nil {
		return "", err
	}

	id, err := s.CreateWorkflow(ctx, substituted)
	if err != nil {
		return "", err
	}
	log.Info(log.CatTemplate, "workflow instantiated from template", "template", templateID, "workflow", id)
	return id, nil
}
