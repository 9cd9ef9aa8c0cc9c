package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowdeck/flowdeck/internal/registry"
	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

var (
	bundleOut       string
	bundleIn        string
	bundleTemplates bool
	bundleOverwrite bool
)

var bundleExportCmd = &cobra.Command{
	Use:   "bundle:export [id...]",
	Short: "Export workflows to a bundle file",
	Long: `Export workflow definitions as a YAML bundle.

With no arguments every workflow is exported. Ids restrict the export to
specific workflows; ids that cannot be loaded are skipped. --templates adds
all templates to the bundle.

Examples:
  flowdeck bundle:export -o all.yaml --templates
  flowdeck bundle:export 6f1c... 81d2... -o picked.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			var bundle *domain.Bundle
			var err error
			if len(args) == 0 {
				bundle, err = svc.ExportAll(ctx, bundleTemplates)
			} else {
				bundle, err = svc.ExportWorkflows(ctx, args, bundleTemplates)
			}
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := yaml.NewEncoder(&buf).Encode(bundle); err != nil {
				return fmt.Errorf("encoding bundle: %w", err)
			}
			if bundleOut == "" || bundleOut == "-" {
				_, err = os.Stdout.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(bundleOut, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", bundleOut, err)
			}
			fmt.Printf("exported %d workflows, %d templates to %s\n",
				len(bundle.Workflows), len(bundle.Templates), bundleOut)
			return nil
		})
	},
}

var bundleImportCmd = &cobra.Command{
	Use:   "bundle:import",
	Short: "Import workflows from a bundle file",
	Long: `Import workflow definitions and templates from a YAML or JSON bundle.

Import is best-effort: each entry succeeds or fails on its own and the
summary reports both counts. Existing ids are skipped unless --overwrite
is given, in which case the incoming content lands as a new version.

Examples:
  flowdeck bundle:import -f all.yaml
  flowdeck bundle:import -f all.yaml --overwrite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bundleIn == "" {
			return cmd.Help()
		}
		data, err := os.ReadFile(bundleIn)
		if err != nil {
			return fmt.Errorf("reading %s: %w", bundleIn, err)
		}
		var bundle domain.Bundle
		if err := yaml.Unmarshal(data, &bundle); err != nil {
			return fmt.Errorf("parsing %s: %w", bundleIn, err)
		}
		return withService(func(ctx context.Context, svc *registry.Service) error {
			result, err := svc.ImportWorkflows(ctx, &bundle, bundleOverwrite)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d, failed %d\n", result.SuccessCount, result.ErrorCount)
			for _, msg := range result.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", msg)
			}
			return nil
		})
	},
}

func init() {
	bundleExportCmd.Flags().StringVarP(&bundleOut, "out", "o", "", "output file (default: stdout)")
	bundleExportCmd.Flags().BoolVar(&bundleTemplates, "templates", false, "include all templates")
	bundleImportCmd.Flags().StringVarP(&bundleIn, "file", "f", "", "bundle file (required)")
	bundleImportCmd.Flags().BoolVar(&bundleOverwrite, "overwrite", false, "overwrite existing workflows and templates")

	rootCmd.AddCommand(bundleExportCmd, bundleImportCmd)
}
