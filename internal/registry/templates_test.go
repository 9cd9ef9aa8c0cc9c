package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

func reportTemplate() *domain.WorkflowTemplate {
	return &domain.WorkflowTemplate{
		Name:         "Report Template",
		Description:  "parameterized report",
		TemplateType: "reporting",
		Workflow: &domain.WorkflowDefinition{
			Name: "Report Template",
			Steps: []domain.Step{
				{"type": "fetch", "url": "https://example.com/{{dataset}}"},
				{"type": "email", "to": "{{recipient}}", "subject": "{{subject}}"},
			},
			Tags: []string{"reporting"},
		},
		Parameters: []domain.TemplateParameter{
			{Name: "dataset", Required: true},
			{Name: "recipient", Required: true},
			{Name: "subject", Default: "Report"},
		},
	}
}

func TestService_CreateTemplate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	id, err := svc.CreateTemplate(ctx, reportTemplate())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	tpl, err := svc.GetTemplate(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Report Template", tpl.Name)
	require.Equal(t, id, tpl.Workflow.ID, "Embedded definition shares the template id")
	require.True(t, tpl.Workflow.IsTemplate)
	require.Equal(t, domain.InitialVersion, tpl.Workflow.Version)
	require.Len(t, tpl.Parameters, 3)
}

func TestService_CreateTemplate_Invalid(t *testing.T) {
	svc := setupService(t)

	tpl := reportTemplate()
	tpl.Workflow = nil
	_, err := svc.CreateTemplate(context.Background(), tpl)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestService_GetTemplate_NotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetTemplate(context.Background(), "missing")
	require.Error(t, err)

	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestService_GetTemplate_PlainWorkflow(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	id, err := svc.CreateWorkflow(ctx, dailyReport())
	require.NoError(t, err)

	_, err = svc.GetTemplate(ctx, id)
	require.Error(t, err)

	var tplErr *domain.TemplateError
	require.True(t, errors.As(err, &tplErr))
}

func TestService_ListTemplates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateWorkflow(ctx, dailyReport())
	require.NoError(t, err)
	id, err := svc.CreateTemplate(ctx, reportTemplate())
	require.NoError(t, err)

	templates, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	require.Equal(t, id, templates[0].ID)
}

func TestService_DeleteTemplate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	id, err := svc.CreateTemplate(ctx, reportTemplate())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTemplate(ctx, id))

	_, err = svc.GetTemplate(ctx, id)
	require.Error(t, err)
}

func TestService_CreateFromTemplate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tplID, err := svc.CreateTemplate(ctx, reportTemplate())
	require.NoError(t, err)

	id, err := svc.CreateFromTemplate(ctx, tplID, "Q3 Sales Report", map[string]any{
		"dataset":   "q3-sales",
		"recipient": "sales@example.com",
	})
	require.NoError(t, err)

	wf, err := svc.GetWorkflow(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Q3 Sales Report", wf.Name)
	require.False(t, wf.IsTemplate)
	require.Equal(t, tplID, wf.TemplateID, "Spawned workflow keeps its source back-reference")
	require.Equal(t, domain.StatusDraft, wf.Status)
	require.Equal(t, domain.InitialVersion, wf.Version)
	require.Equal(t, "https://example.com/q3-sales", wf.Steps[0]["url"])
	require.Equal(t, "sales@example.com", wf.Steps[1]["to"])
	require.Equal(t, "Report", wf.Steps[1]["subject"], "Unsupplied parameter falls back to its default")
}

func TestService_CreateFromTemplate_MissingRequiredParameter(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tplID, err := svc.CreateTemplate(ctx, reportTemplate())
	require.NoError(t, err)

	before, err := svc.ListWorkflows(ctx)
	require.NoError(t, err)

	_, err = svc.CreateFromTemplate(ctx, tplID, "Broken", map[string]any{"dataset": "q3"})
	require.Error(t, err)

	var missing *domain.MissingParameterError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "recipient", missing.Name)

	after, err := svc.ListWorkflows(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before), "A failed instantiation writes nothing")
}

func TestService_CreateFromTemplate_UnknownTemplate(t *testing.T) {
	svc := setupService(t)

	_, err := svc.CreateFromTemplate(context.Background(), "missing", "X", nil)
	require.Error(t, err)
}

func TestService_CreateFromTemplate_DoesNotMutateTemplate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tplID, err := svc.CreateTemplate(ctx, reportTemplate())
	require.NoError(t, err)

	_, err = svc.CreateFromTemplate(ctx, tplID, "Spawned", map[string]any{
		"dataset":   "q3",
		"recipient": "a@example.com",
	})
	require.NoError(t, err)

	tpl, err := svc.GetTemplate(ctx, tplID)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/{{dataset}}", tpl.Workflow.Steps[0]["url"],
		"Template placeholders survive instantiation")
}
