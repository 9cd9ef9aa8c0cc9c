package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefinitionFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.yaml")
	content := `name: Daily Report
description: collect numbers
steps:
  - type: fetch
    url: https://example.com/data
  - type: email
    to: team@example.com
tags: [daily, email]
category: reporting
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	def, err := loadDefinitionFile(path)
	require.NoError(t, err)
	require.Equal(t, "Daily Report", def.Name)
	require.Len(t, def.Steps, 2)
	require.Equal(t, "fetch", def.Steps[0]["type"])
	require.Equal(t, []string{"daily", "email"}, def.Tags)
}

// JSON is a subset of YAML, so the same loader handles both formats.
func TestLoadDefinitionFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.json")
	content := `{"name": "Daily Report", "steps": [{"type": "fetch"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	def, err := loadDefinitionFile(path)
	require.NoError(t, err)
	require.Equal(t, "Daily Report", def.Name)
	require.Len(t, def.Steps, 1)
}

func TestLoadDefinitionFile_Missing(t *testing.T) {
	_, err := loadDefinitionFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadDefinitionFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: [\n"), 0o600))

	_, err := loadDefinitionFile(path)
	require.Error(t, err)
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	expected := []string{
		"workflow:list", "workflow:show", "workflow:create", "workflow:update",
		"workflow:delete", "workflow:search", "workflow:versions", "workflow:rollback",
		"workflow:publish", "workflow:archive", "workflow:disable", "workflow:clone",
		"template:list", "template:show", "template:create", "template:delete", "template:spawn",
		"bundle:export", "bundle:import",
	}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range expected {
		require.True(t, registered[name], "%s should be registered", name)
	}
}
