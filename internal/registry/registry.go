package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flowdeck/flowdeck/internal/cachemanager"
	"github.com/flowdeck/flowdeck/internal/log"
	"github.com/flowdeck/flowdeck/internal/template"
	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// Service is the workflow definition registry. It composes the persistence
// gateway, the two read caches and the template engine. Pass the service
// instance explicitly to callers; there is no ambient singleton.
type Service struct {
	repo      domain.DefinitionRepository
	workflows cachemanager.CacheManager[string, *domain.WorkflowDefinition]
	templates cachemanager.CacheManager[string, *domain.WorkflowTemplate]
	engine    *template.Engine
	tracer    trace.Tracer
	cacheTTL  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL overrides the default cache entry lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = ttl
	}
}

// WithTracer attaches a tracer; operations open a span each. Without it a
// no-op tracer is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithSubstituter swaps the template engine's substitution strategy.
func WithSubstituter(sub template.Substituter) Option {
	return func(s *Service) {
		s.engine = template.NewEngineWithSubstituter(sub)
	}
}

// NewService creates a registry over the given repository.
func NewService(repo domain.DefinitionRepository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		engine:   template.NewEngine(),
		tracer:   noop.NewTracerProvider().Tracer("registry"),
		cacheTTL: cachemanager.DefaultExpiration,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.workflows = cachemanager.NewInMemoryCacheManager[string, *domain.WorkflowDefinition](
		"workflow-definitions", s.cacheTTL, cachemanager.DefaultCleanupInterval)
	s.templates = cachemanager.NewInMemoryCacheManager[string, *domain.WorkflowTemplate](
		"workflow-templates", s.cacheTTL, cachemanager.DefaultCleanupInterval)
	return s
}

// CreateWorkflow validates and persists a new definition, writes it through
// to the cache and returns the assigned id. An empty id is replaced with a
// generated one; an empty version and status default to "1.0.0" and draft.
func (s *Service) CreateWorkflow(ctx context.Context, def *domain.WorkflowDefinition) (string, error) {
	ctx, span := s.tracer.Start(ctx, "registry.create_workflow")
	defer span.End()

	if err := def.Validate(); err != nil {
		return "", err
	}

	created := def.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.Version == "" {
		created.Version = domain.InitialVersion
	}
	if created.Status == "" {
		created.Status = domain.StatusDraft
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	span.SetAttributes(attribute.String("workflow.id", created.ID))

	if err := s.repo.Create(ctx, created); err != nil {
		return "", err
	}
	s.workflows.Set(ctx, created.ID, created, s.cacheTTL)

	log.Info(log.CatRegistry, "workflow created", "id", created.ID, "name", created.Name)
	return created.ID, nil
}

// UpdateWorkflow persists a full update of an existing definition. The
// persisted state (never the cache) is loaded as the baseline, snapshotted
// into a new immutable version, and the patch component is bumped.
//
// No transaction spans the baseline read and the write: two concurrent
// updates on the same id can interleave. The last write wins and both
// snapshots are kept.
func (s *Service) UpdateWorkflow(ctx context.Context, def *domain.WorkflowDefinition, changelog string) (*domain.WorkflowDefinition, error) {
	ctx, span := s.tracer.Start(ctx, "registry.update_workflow",
		trace.WithAttributes(attribute.String("workflow.id", def.ID)))
	defer span.End()

	updated, err := s.updateWorkflow(ctx, def, changelog)
	if err != nil {
		return nil, err
	}
	log.Info(log.CatRegistry, "workflow updated", "id", updated.ID, "version", updated.Version)
	return updated, nil
}

// updateWorkflow is the shared update path. An empty changelog is replaced
// with diff stats between the baseline and the incoming content.
func (s *Service) updateWorkflow(ctx context.Context, def *domain.WorkflowDefinition, changelog string) (*domain.WorkflowDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	baseline, err := s.repo.Get(ctx, def.ID)
	if err != nil {
		return nil, err
	}

	if changelog == "" {
		changelog = diffChangelog(baseline, def)
	}
	now := time.Now()
	snapshot := &domain.WorkflowVersion{
		WorkflowID: baseline.ID,
		Version:    baseline.Version,
		Definition: baseline,
		Changelog:  changelog,
		CreatedAt:  now,
	}
	if err := s.repo.CreateVersion(ctx, snapshot); err != nil {
		return nil, err
	}

	newVersion, err := domain.BumpPatch(baseline.Version)
	if err != nil {
		return nil, err
	}

	updated := def.Clone()
	updated.Version = newVersion
	updated.CreatedAt = baseline.CreatedAt
	updated.UpdatedAt = now

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.workflows.Set(ctx, updated.ID, updated, s.cacheTTL)
	return updated.Clone(), nil
}

// DeleteWorkflow removes a definition from persistence and from the cache.
// Version history is not cascaded: snapshots of the deleted workflow remain
// readable, and template back-references on spawned workflows are left
// intact.
func (s *Service) DeleteWorkflow(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "registry.delete_workflow",
		trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.workflows.Delete(ctx, id)
	log.Info(log.CatRegistry, "workflow deleted", "id", id)
	return nil
}

// GetWorkflow retrieves a definition, cache first with persistence
// fallback. A miss populates the cache.
func (s *Service) GetWorkflow(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	ctx, span := s.tracer.Start(ctx, "registry.get_workflow",
		trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	if def, ok := s.workflows.Get(ctx, id); ok {
		return def.Clone(), nil
	}

	def, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.workflows.Set(ctx, id, def, s.cacheTTL)
	return def.Clone(), nil
}

// ListWorkflows returns every plain definition in the registry. Bulk
// listing always bypasses the cache and re-reads persistence in full;
// single-item cache entries can be stale relative to a fresh list.
// Template rows are excluded; they are listed through ListTemplates.
func (s *Service) ListWorkflows(ctx context.Context) ([]*domain.WorkflowDefinition, error) {
	ctx, span := s.tracer.Start(ctx, "registry.list_workflows")
	defer span.End()

	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.WorkflowDefinition, 0, len(defs))
	for _, def := range defs {
		if def.IsTemplate {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

// SearchWorkflows pre-filters at the persistence layer (keyword wins over
// category when both are supplied) and post-filters in memory: status is an
// exact match, tags match when ANY requested tag is present.
func (s *Service) SearchWorkflows(ctx context.Context, filter domain.SearchFilter) ([]*domain.WorkflowDefinition, error) {
	ctx, span := s.tracer.Start(ctx, "registry.search_workflows")
	defer span.End()

	var (
		defs []*domain.WorkflowDefinition
		err  error
	)
	switch {
	case filter.Keyword != "":
		defs, err = s.repo.SearchByKeyword(ctx, filter.Keyword)
	case filter.Category != "":
		defs, err = s.repo.ListByCategory(ctx, filter.Category)
	default:
		defs, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*domain.WorkflowDefinition, 0, len(defs))
	for _, def := range defs {
		if def.IsTemplate {
			continue
		}
		if filter.Status != "" && def.Status != filter.Status {
			continue
		}
		if !def.HasAnyTag(filter.Tags) {
			continue
		}
		out = append(out, def)
	}
	return out, nil
}

// ListVersions returns all immutable snapshots of a workflow, newest first.
// Snapshots survive deletion of their workflow.
func (s *Service) ListVersions(ctx context.Context, id string) ([]*domain.WorkflowVersion, error) {
	ctx, span := s.tracer.Start(ctx, "registry.list_versions",
		trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	return s.repo.ListVersions(ctx, id)
}

// GetVersion returns the snapshot with an exact version string match.
func (s *Service) GetVersion(ctx context.Context, id, version string) (*domain.WorkflowVersion, error) {
	ctx, span := s.tracer.Start(ctx, "registry.get_version",
		trace.WithAttributes(attribute.String("workflow.id", id), attribute.String("workflow.version", version)))
	defer span.End()

	return s.repo.GetVersion(ctx, id, version)
}

// RollbackToVersion restores the content of a historical snapshot through
// the normal update path. The update snapshots the current state first (the
// safety net) and bumps the patch, so the version number keeps moving
// forward: rollback restores content, never an old version number.
func (s *Service) RollbackToVersion(ctx context.Context, id, version string) (*domain.WorkflowDefinition, error) {
	ctx, span := s.tracer.Start(ctx, "registry.rollback_to_version",
		trace.WithAttributes(attribute.String("workflow.id", id), attribute.String("workflow.version", version)))
	defer span.End()

	target, err := s.repo.GetVersion(ctx, id, version)
	if err != nil {
		return nil, err
	}

	restored := target.Definition.Clone()
	restored.ID = id

	updated, err := s.updateWorkflow(ctx, restored, "rollback to version "+version)
	if err != nil {
		return nil, err
	}
	log.Info(log.CatRegistry, "workflow rolled back", "id", id, "restored", version, "now_at", updated.Version)
	return updated, nil
}

// PublishWorkflow moves a definition to the published status.
func (s *Service) PublishWorkflow(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	return s.transition(ctx, "registry.publish_workflow", id, domain.StatusPublished)
}

// ArchiveWorkflow moves a definition to the archived status.
func (s *Service) ArchiveWorkflow(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	return s.transition(ctx, "registry.archive_workflow", id, domain.StatusArchived)
}

// DisableWorkflow moves a definition to the disabled status.
func (s *Service) DisableWorkflow(ctx context.Context, id string) (*domain.WorkflowDefinition, error) {
	return s.transition(ctx, "registry.disable_workflow", id, domain.StatusDisabled)
}

// transition loads the persisted definition, applies a one-way status
// change and saves it through the normal update path. There is no reverse
// path: archived and disabled definitions never return to published.
func (s *Service) transition(ctx context.Context, op, id string, target domain.Status) (*domain.WorkflowDefinition, error) {
	ctx, span := s.tracer.Start(ctx, op,
		trace.WithAttributes(attribute.String("workflow.id", id), attribute.String("workflow.status", string(target))))
	defer span.End()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, &domain.ValidationError{
			Field:  "status",
			Reason: "cannot transition from " + string(current.Status) + " to " + string(target),
		}
	}

	changed := current.Clone()
	changed.Status = target
	updated, err := s.updateWorkflow(ctx, changed, "status changed to "+string(target))
	if err != nil {
		return nil, err
	}
	log.Info(log.CatRegistry, "workflow status changed", "id", id, "status", target)
	return updated, nil
}

// CloneWorkflow duplicates a definition's content under a new id and name.
// The clone starts a brand-new lineage: status draft, version "1.0.0",
// fresh timestamps, no inherited history.
func (s *Service) CloneWorkflow(ctx context.Context, id, newName string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "registry.clone_workflow",
		trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	src, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	clone := src.Clone()
	clone.ID = ""
	clone.Name = newName
	if clone.Name == "" {
		clone.Name = "Copy of " + src.Name
	}
	clone.Status = domain.StatusDraft
	clone.Version = domain.InitialVersion

	newID, err := s.CreateWorkflow(ctx, clone)
	if err != nil {
		return "", err
	}
	log.Info(log.CatRegistry, "workflow cloned", "source", id, "clone", newID)
	return newID, nil
}

// ClearCache flushes both read caches. Persistence is untouched.
func (s *Service) ClearCache(ctx context.Context) {
	_ = s.workflows.Flush(ctx)
	_ = s.templates.Flush(ctx)
	log.Debug(log.CatCache, "registry caches cleared")
}

// PreloadCache warms both caches from persistence.
func (s *Service) PreloadCache(ctx context.Context) error {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if def.IsTemplate {
			continue
		}
		s.workflows.Set(ctx, def.ID, def, s.cacheTTL)
	}

	tpls, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return err
	}
	for _, tpl := range tpls {
		s.templates.Set(ctx, tpl.ID, tpl, s.cacheTTL)
	}

	log.Debug(log.CatCache, "registry caches preloaded", "workflows", len(defs), "templates", len(tpls))
	return nil
}
