package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// DefinitionModel represents a row of the workflow_definitions table.
// Fields map directly to SQL columns: structured blobs (steps, config,
// trigger, tags, template metadata) are JSON-encoded text, time values are
// Unix timestamps.
type DefinitionModel struct {
	ID           string
	Name         string
	Description  string
	Version      string
	Status       string
	Steps        string
	Config       *string // nullable, JSON encoded
	Trigger      *string // nullable, JSON encoded
	Tags         *string // nullable, JSON encoded
	Category     string
	IsTemplate   bool
	TemplateID   *string // nullable
	TemplateMeta *string // nullable, JSON encoded; present only for template rows
	CreatedAt    int64   // Unix timestamp
	UpdatedAt    int64   // Unix timestamp
}

// templateMeta is the JSON document stored in the template_meta column.
// It carries the template-level fields that do not belong to the embedded
// definition row.
type templateMeta struct {
	Name         string                     `json:"name"`
	Description  string                     `json:"description,omitempty"`
	TemplateType string                     `json:"template_type,omitempty"`
	Parameters   []domain.TemplateParameter `json:"parameters,omitempty"`
	Tags         []string                   `json:"tags,omitempty"`
}

// VersionModel represents a row of the workflow_versions table.
type VersionModel struct {
	ID         int64
	WorkflowID string
	Version    string
	Definition string // JSON encoded full snapshot
	Changelog  string
	CreatedBy  string
	CreatedAt  int64 // Unix timestamp
}

// toDefinitionModel converts a domain definition to its row form.
func toDefinitionModel(def *domain.WorkflowDefinition) (*DefinitionModel, error) {
	steps := def.Steps
	if steps == nil {
		steps = []domain.Step{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("encode steps: %w", err)
	}

	m := &DefinitionModel{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Version:     def.Version,
		Status:      string(def.Status),
		Steps:       string(stepsJSON),
		Category:    def.Category,
		IsTemplate:  def.IsTemplate,
		CreatedAt:   def.CreatedAt.Unix(),
		UpdatedAt:   def.UpdatedAt.Unix(),
	}
	if def.Config != nil {
		encoded, err := json.Marshal(def.Config)
		if err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		s := string(encoded)
		m.Config = &s
	}
	if def.Trigger != nil {
		encoded, err := json.Marshal(def.Trigger)
		if err != nil {
			return nil, fmt.Errorf("encode trigger: %w", err)
		}
		s := string(encoded)
		m.Trigger = &s
	}
	if len(def.Tags) > 0 {
		encoded, err := json.Marshal(def.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tags: %w", err)
		}
		s := string(encoded)
		m.Tags = &s
	}
	if def.TemplateID != "" {
		templateID := def.TemplateID
		m.TemplateID = &templateID
	}
	return m, nil
}

// toDomain converts a row back into a domain definition.
func (m *DefinitionModel) toDomain() (*domain.WorkflowDefinition, error) {
	def := &domain.WorkflowDefinition{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		Status:      domain.Status(m.Status),
		Category:    m.Category,
		IsTemplate:  m.IsTemplate,
		CreatedAt:   time.Unix(m.CreatedAt, 0),
		UpdatedAt:   time.Unix(m.UpdatedAt, 0),
	}
	if err := json.Unmarshal([]byte(m.Steps), &def.Steps); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	if m.Config != nil {
		if err := json.Unmarshal([]byte(*m.Config), &def.Config); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if m.Trigger != nil {
		if err := json.Unmarshal([]byte(*m.Trigger), &def.Trigger); err != nil {
			return nil, fmt.Errorf("decode trigger: %w", err)
		}
	}
	if m.Tags != nil {
		if err := json.Unmarshal([]byte(*m.Tags), &def.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if m.TemplateID != nil {
		def.TemplateID = *m.TemplateID
	}
	return def, nil
}

// toTemplate reconstitutes the template view from a template row. The
// caller must have verified is_template is set.
func (m *DefinitionModel) toTemplate() (*domain.WorkflowTemplate, error) {
	def, err := m.toDomain()
	if err != nil {
		return nil, err
	}

	var meta templateMeta
	if m.TemplateMeta != nil {
		if err := json.Unmarshal([]byte(*m.TemplateMeta), &meta); err != nil {
			return nil, fmt.Errorf("decode template metadata: %w", err)
		}
	}

	tpl := &domain.WorkflowTemplate{
		ID:           m.ID,
		Name:         meta.Name,
		Description:  meta.Description,
		TemplateType: meta.TemplateType,
		Workflow:     def,
		Parameters:   meta.Parameters,
		Tags:         meta.Tags,
		CreatedAt:    def.CreatedAt,
		UpdatedAt:    def.UpdatedAt,
	}
	if tpl.Name == "" {
		// Template rows written before metadata existed fall back to the
		// embedded definition's name.
		tpl.Name = def.Name
	}
	return tpl, nil
}

// encodeTemplateMeta renders the metadata document for a template row.
func encodeTemplateMeta(tpl *domain.WorkflowTemplate) (string, error) {
	encoded, err := json.Marshal(templateMeta{
		Name:         tpl.Name,
		Description:  tpl.Description,
		TemplateType: tpl.TemplateType,
		Parameters:   tpl.Parameters,
		Tags:         tpl.Tags,
	})
	if err != nil {
		return "", fmt.Errorf("encode template metadata: %w", err)
	}
	return string(encoded), nil
}

// toVersionModel converts a domain snapshot to its row form.
func toVersionModel(v *domain.WorkflowVersion) (*VersionModel, error) {
	defJSON, err := json.Marshal(v.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot definition: %w", err)
	}
	return &VersionModel{
		WorkflowID: v.WorkflowID,
		Version:    v.Version,
		Definition: string(defJSON),
		Changelog:  v.Changelog,
		CreatedBy:  v.CreatedBy,
		CreatedAt:  v.CreatedAt.Unix(),
	}, nil
}

// toDomain converts a version row back into a domain snapshot.
func (m *VersionModel) toDomain() (*domain.WorkflowVersion, error) {
	var def domain.WorkflowDefinition
	if err := json.Unmarshal([]byte(m.Definition), &def); err != nil {
		return nil, fmt.Errorf("decode snapshot definition: %w", err)
	}
	return &domain.WorkflowVersion{
		WorkflowID: m.WorkflowID,
		Version:    m.Version,
		Definition: &def,
		Changelog:  m.Changelog,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  time.Unix(m.CreatedAt, 0),
	}, nil
}
