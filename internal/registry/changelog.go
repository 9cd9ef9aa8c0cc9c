package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

// diffChangelog summarizes the content change between the baseline and the
// incoming definition as insert/delete character counts over their document
// forms. System-assigned fields (version, timestamps) are zeroed first so a
// pure metadata save reads as "no content changes".
func diffChangelog(baseline, incoming *domain.WorkflowDefinition) string {
	before := contentDocument(baseline)
	after := contentDocument(incoming)
	if before == after {
		return "no content changes"
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)

	var inserted, deleted int
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	return fmt.Sprintf("content changed (+%d/-%d chars)", inserted, deleted)
}

func contentDocument(def *domain.WorkflowDefinition) string {
	stripped := def.Clone()
	stripped.Version = ""
	stripped.CreatedAt = time.Time{}
	stripped.UpdatedAt = time.Time{}
	doc, err := json.Marshal(stripped)
	if err != nil {
		return ""
	}
	return string(doc)
}
