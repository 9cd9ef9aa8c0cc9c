package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

func TestDiffChangelog_ContentChange(t *testing.T) {
	before := dailyReport()
	after := dailyReport()
	after.Description = "a longer description than before"

	changelog := diffChangelog(before, after)
	require.Contains(t, changelog, "content changed")
	require.Contains(t, changelog, "+")
}

func TestDiffChangelog_VersionAndTimestampsIgnored(t *testing.T) {
	before := dailyReport()
	before.Version = "1.0.0"
	before.CreatedAt = time.Now().Add(-time.Hour)

	after := before.Clone()
	after.Version = "1.0.1"
	after.CreatedAt = time.Now()
	after.UpdatedAt = time.Now()

	require.Equal(t, "no content changes", diffChangelog(before, after),
		"System-assigned fields must not show up as content diffs")
}

func TestDiffChangelog_StepChange(t *testing.T) {
	before := dailyReport()
	after := before.Clone()
	after.Steps = append(after.Steps, domain.Step{"type": "archive"})

	changelog := diffChangelog(before, after)
	require.Contains(t, changelog, "content changed")
}
