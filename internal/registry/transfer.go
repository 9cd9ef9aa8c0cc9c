package registry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdeck/flowdeck/internal/log"
	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// ExportWorkflows bundles the requested definitions for transfer. Ids that
// fail to load are skipped silently (logged, no error surfaced). With
// includeTemplates set, ALL templates are appended, not only those related
// to the exported workflows.
func (s *Service) ExportWorkflows(ctx context.Context, ids []string, includeTemplates bool) (*domain.Bundle, error) {
	ctx, span := s.tracer.Start(ctx, "registry.export_workflows",
		trace.WithAttributes(attribute.Int("export.requested", len(ids))))
	defer span.End()

	bundle := &domain.Bundle{}
	for _, id := range ids {
		def, err := s.GetWorkflow(ctx, id)
		if err != nil {
			log.Warn(log.CatTransfer, "skipping unexportable workflow", "id", id, "error", err)
			continue
		}
		bundle.Workflows = append(bundle.Workflows, def)
	}

	if includeTemplates {
		tpls, err := s.repo.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		bundle.Templates = tpls
	}

	log.Info(log.CatTransfer, "workflows exported",
		"workflows", len(bundle.Workflows), "templates", len(bundle.Templates))
	return bundle, nil
}

// ExportAll bundles the full registry listing.
func (s *Service) ExportAll(ctx context.Context, includeTemplates bool) (*domain.Bundle, error) {
	ctx, span := s.tracer.Start(ctx, "registry.export_all")
	defer span.End()

	defs, err := s.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &domain.Bundle{Workflows: defs}
	if includeTemplates {
		tpls, err := s.repo.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		bundle.Templates = tpls
	}
	return bundle, nil
}

// ImportWorkflows merges a bundle into the registry, workflows first, then
// templates, each item independently and best-effort: an existing id fails
// with a recorded duplicate unless overwrite is set, an overwrite runs a
// full update (snapshotting and bumping the version even for byte-identical
// content), an absent id runs a full create. The operation never aborts on
// a single item's failure; earlier successes stay committed. A nil bundle
// imports nothing.
func (s *Service) ImportWorkflows(ctx context.Context, bundle *domain.Bundle, overwrite bool) (*domain.ImportResult, error) {
	if bundle == nil {
		return &domain.ImportResult{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "registry.import_workflows",
		trace.WithAttributes(
			attribute.Int("import.workflows", len(bundle.Workflows)),
			attribute.Int("import.templates", len(bundle.Templates)),
			attribute.Bool("import.overwrite", overwrite),
		))
	defer span.End()

	result := &domain.ImportResult{}

	for _, def := range bundle.Workflows {
		if def == nil {
			continue
		}
		s.importWorkflow(ctx, def, overwrite, result)
	}
	for _, tpl := range bundle.Templates {
		if tpl == nil {
			continue
		}
		s.importTemplate(ctx, tpl, overwrite, result)
	}

	log.Info(log.CatTransfer, "bundle imported",
		"succeeded", result.SuccessCount, "failed", result.ErrorCount, "overwrite", overwrite)
	return result, nil
}

func (s *Service) importWorkflow(ctx context.Context, def *domain.WorkflowDefinition, overwrite bool, result *domain.ImportResult) {
	exists, err := s.exists(ctx, def.ID)
	if err != nil {
		result.RecordError(fmt.Sprintf("workflow %s: %v", def.ID, err))
		return
	}

	switch {
	case exists && !overwrite:
		result.RecordError((&domain.DuplicateError{Kind: "workflow", ID: def.ID}).Error())
	case exists:
		if _, err := s.updateWorkflow(ctx, def, "imported with overwrite"); err != nil {
			result.RecordError(fmt.Sprintf("workflow %s: %v", def.ID, err))
			return
		}
		result.RecordSuccess(&result.ImportedWorkflows, def.ID)
	default:
		id, err := s.CreateWorkflow(ctx, def)
		if err != nil {
			result.RecordError(fmt.Sprintf("workflow %s: %v", def.ID, err))
			return
		}
		result.RecordSuccess(&result.ImportedWorkflows, id)
	}
}

func (s *Service) importTemplate(ctx context.Context, tpl *domain.WorkflowTemplate, overwrite bool, result *domain.ImportResult) {
	exists, err := s.exists(ctx, tpl.ID)
	if err != nil {
		result.RecordError(fmt.Sprintf("template %s: %v", tpl.ID, err))
		return
	}

	switch {
	case exists && !overwrite:
		result.RecordError((&domain.DuplicateError{Kind: "template", ID: tpl.ID}).Error())
	case exists:
		if err := s.overwriteTemplate(ctx, tpl); err != nil {
			result.RecordError(fmt.Sprintf("template %s: %v", tpl.ID, err))
			return
		}
		result.RecordSuccess(&result.ImportedTemplates, tpl.ID)
	default:
		id, err := s.CreateTemplate(ctx, tpl)
		if err != nil {
			result.RecordError(fmt.Sprintf("template %s: %v", tpl.ID, err))
			return
		}
		result.RecordSuccess(&result.ImportedTemplates, id)
	}
}

// overwriteTemplate runs the template equivalent of a full update: the
// embedded definition goes through the versioned update path, then the
// template metadata is rewritten around the result.
func (s *Service) overwriteTemplate(ctx context.Context, tpl *domain.WorkflowTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	imported := tpl.Clone()
	imported.Workflow.ID = imported.ID
	imported.Workflow.IsTemplate = true

	updated, err := s.updateWorkflow(ctx, imported.Workflow, "imported with overwrite")
	if err != nil {
		return err
	}
	imported.Workflow = updated
	imported.UpdatedAt = updated.UpdatedAt

	if err := s.repo.PutTemplate(ctx, imported); err != nil {
		return err
	}
	s.templates.Set(ctx, imported.ID, imported, s.cacheTTL)
	return nil
}

// exists reports whether a definition row (workflow or template) with the
// id is present in persistence. An empty id is always absent: the create
// path will assign one.
func (s *Service) exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := s.repo.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}
