package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkflowVersion is an immutable snapshot of a definition, taken once per
// mutating save. The Definition field holds the full pre-update content at
// that version. Snapshots are never mutated; deleting a workflow does not
// delete its snapshots.
type WorkflowVersion struct {
	WorkflowID string              `json:"workflow_id" yaml:"workflow_id"`
	Version    string              `json:"version" yaml:"version"`
	Definition *WorkflowDefinition `json:"definition" yaml:"definition"`
	Changelog  string              `json:"changelog,omitempty" yaml:"changelog,omitempty"`
	// CreatedBy identifies who produced the snapshot. The registry never
	// fills it; it is reserved for a host layer with a notion of identity
	// and stays empty otherwise.
	CreatedBy string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ParseVersion parses a "major.minor.patch" version string into its three
// components. Each component must be a non-negative integer in canonical
// decimal form: leading zeros ("01.2.3") and signs ("+1.0.0") fail with
// VersionFormatError, as does anything other than exactly three dot-separated
// parts. Every accepted string re-renders to itself, so stored versions are
// comparable byte-for-byte.
func ParseVersion(v string) (major, minor, patch int, err error) {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return 0, 0, 0, &VersionFormatError{Value: v}
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, convErr := strconv.Atoi(part)
		if convErr != nil || n < 0 || part == "" {
			return 0, 0, 0, &VersionFormatError{Value: v}
		}
		// Reject forms like "01" or "+1" that Atoi would accept or
		// normalize differently from the canonical rendering.
		if strconv.Itoa(n) != part {
			return 0, 0, 0, &VersionFormatError{Value: v}
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// BumpPatch returns the version with the same major and minor components
// and the patch component incremented by one. Major and minor bumps are a
// manual field edit, never produced by this helper.
func BumpPatch(v string) (string, error) {
	major, minor, patch, err := ParseVersion(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1), nil
}
