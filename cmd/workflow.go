package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowdeck/flowdeck/internal/registry"
	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

var (
	wfFile      string
	wfKeyword   string
	wfStatus    string
	wfCategory  string
	wfTags      []string
	wfChangelog string
	wfCloneName string
)

var workflowListCmd = &cobra.Command{
	Use:   "workflow:list",
	Short: "List workflow definitions",
	Long: `List all workflow definitions in the registry.

Templates are not included; use 'flowdeck template:list' for those.

Examples:
  flowdeck workflow:list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			defs, err := svc.ListWorkflows(ctx)
			if err != nil {
				return err
			}
			printDefinitionTable(defs)
			return nil
		})
	},
}

var workflowShowCmd = &cobra.Command{
	Use:   "workflow:show <id>",
	Short: "Show a workflow definition as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			def, err := svc.GetWorkflow(ctx, args[0])
			if err != nil {
				return err
			}
			return yaml.NewEncoder(os.Stdout).Encode(def)
		})
	},
}

var workflowCreateCmd = &cobra.Command{
	Use:   "workflow:create",
	Short: "Create a workflow definition from a file",
	Long: `Create a workflow definition from a YAML or JSON file.

The new workflow starts at version 1.0.0 in draft status unless the file
says otherwise. The generated id is printed on success.

Examples:
  flowdeck workflow:create -f daily-report.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if wfFile == "" {
			return cmd.Help()
		}
		def, err := loadDefinitionFile(wfFile)
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *registry.Service) error {
			id, err := svc.CreateWorkflow(ctx, def)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

var workflowUpdateCmd = &cobra.Command{
	Use:   "workflow:update",
	Short: "Update a workflow definition from a file",
	Long: `Update a workflow definition from a YAML or JSON file.

The file must carry the id of an existing workflow. The previous content is
snapshotted into version history and the patch version is bumped.

Examples:
  flowdeck workflow:update -f daily-report.yaml
  flowdeck workflow:update -f daily-report.yaml -m "tightened schedule"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if wfFile == "" {
			return cmd.Help()
		}
		def, err := loadDefinitionFile(wfFile)
		if err != nil {
			return err
		}
		return withService(func(ctx context.Context, svc *registry.Service) error {
			updated, err := svc.UpdateWorkflow(ctx, def, wfChangelog)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", updated.ID, updated.Version)
			return nil
		})
	},
}

var workflowDeleteCmd = &cobra.Command{
	Use:   "workflow:delete <id>",
	Short: "Delete a workflow definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			return svc.DeleteWorkflow(ctx, args[0])
		})
	},
}

var workflowSearchCmd = &cobra.Command{
	Use:   "workflow:search",
	Short: "Search workflow definitions",
	Long: `Search workflow definitions by keyword, status, category, or tags.

Keyword matches against name and description. Tags match ANY-of.

Examples:
  flowdeck workflow:search -k report
  flowdeck workflow:search --status published --tag daily --tag email`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := domain.SearchFilter{
			Keyword:  wfKeyword,
			Category: wfCategory,
			Tags:     wfTags,
		}
		if wfStatus != "" {
			status := domain.Status(wfStatus)
			if !status.IsValid() {
				return fmt.Errorf("unknown status %q", wfStatus)
			}
			filter.Status = status
		}
		return withService(func(ctx context.Context, svc *registry.Service) error {
			defs, err := svc.SearchWorkflows(ctx, filter)
			if err != nil {
				return err
			}
			printDefinitionTable(defs)
			return nil
		})
	},
}

var workflowVersionsCmd = &cobra.Command{
	Use:   "workflow:versions <id>",
	Short: "List version history for a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			versions, err := svc.ListVersions(ctx, args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tCREATED\tCHANGELOG")
			for _, v := range versions {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					v.Version, v.CreatedAt.Format("2006-01-02 15:04"), v.Changelog)
			}
			return w.Flush()
		})
	},
}

var workflowRollbackCmd = &cobra.Command{
	Use:   "workflow:rollback <id> <version>",
	Short: "Roll a workflow back to an earlier version",
	Long: `Restore the content of an earlier version as a new patch version.

Rollback is forward-only: the current content is snapshotted first, so a
rollback can itself be rolled back.

Examples:
  flowdeck workflow:rollback 6f1c... 1.0.0`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			restored, err := svc.RollbackToVersion(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", restored.ID, restored.Version)
			return nil
		})
	},
}

var workflowPublishCmd = &cobra.Command{
	Use:   "workflow:publish <id>",
	Short: "Publish a draft workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			_, err := svc.PublishWorkflow(ctx, args[0])
			return err
		})
	},
}

var workflowArchiveCmd = &cobra.Command{
	Use:   "workflow:archive <id>",
	Short: "Archive a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			_, err := svc.ArchiveWorkflow(ctx, args[0])
			return err
		})
	},
}

var workflowDisableCmd = &cobra.Command{
	Use:   "workflow:disable <id>",
	Short: "Disable a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			_, err := svc.DisableWorkflow(ctx, args[0])
			return err
		})
	},
}

var workflowCloneCmd = &cobra.Command{
	Use:   "workflow:clone <id>",
	Short: "Clone a workflow into a fresh draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			id, err := svc.CloneWorkflow(ctx, args[0], wfCloneName)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

// loadDefinitionFile reads a workflow definition from a YAML or JSON file.
// JSON is a subset of YAML, so one decoder covers both.
func loadDefinitionFile(path string) (*domain.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var def domain.WorkflowDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &def, nil
}

func printDefinitionTable(defs []*domain.WorkflowDefinition) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVERSION\tSTATUS\tCATEGORY")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			def.ID, def.Name, def.Version, def.Status, def.Category)
	}
	_ = w.Flush()
}

func init() {
	workflowCreateCmd.Flags().StringVarP(&wfFile, "file", "f", "", "workflow definition file (required)")
	workflowUpdateCmd.Flags().StringVarP(&wfFile, "file", "f", "", "workflow definition file (required)")
	workflowUpdateCmd.Flags().StringVarP(&wfChangelog, "message", "m", "", "changelog message for the new version")
	workflowSearchCmd.Flags().StringVarP(&wfKeyword, "keyword", "k", "", "match against name and description")
	workflowSearchCmd.Flags().StringVar(&wfStatus, "status", "", "filter by status (draft, published, archived, disabled)")
	workflowSearchCmd.Flags().StringVar(&wfCategory, "category", "", "filter by category")
	workflowSearchCmd.Flags().StringArrayVar(&wfTags, "tag", nil, "filter by tag (repeatable, ANY-of)")
	workflowCloneCmd.Flags().StringVarP(&wfCloneName, "name", "n", "", "name for the clone (default: Copy of <name>)")

	rootCmd.AddCommand(
		workflowListCmd,
		workflowShowCmd,
		workflowCreateCmd,
		workflowUpdateCmd,
		workflowDeleteCmd,
		workflowSearchCmd,
		workflowVersionsCmd,
		workflowRollbackCmd,
		workflowPublishCmd,
		workflowArchiveCmd,
		workflowDisableCmd,
		workflowCloneCmd,
	)
}
