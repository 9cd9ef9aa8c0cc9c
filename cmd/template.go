package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowdeck/flowdeck/internal/registry"
	"github.com/flowdeck/flowdeck/internal/workflows/domain"
)

var (
	tplFile   string
	tplParams []string
)

var templateListCmd = &cobra.Command{
	Use:   "template:list",
	Short: "List workflow templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			templates, err := svc.ListTemplates(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tPARAMETERS")
			for _, tpl := range templates {
				names := make([]string, 0, len(tpl.Parameters))
				for _, p := range tpl.Parameters {
					names = append(names, p.Name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					tpl.ID, tpl.Name, tpl.TemplateType, strings.Join(names, ","))
			}
			return w.Flush()
		})
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "template:show <id>",
	Short: "Show a workflow template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			tpl, err := svc.GetTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			return yaml.NewEncoder(os.Stdout).Encode(tpl)
		})
	},
}

var templateCreateCmd = &cobra.Command{
	Use:   "template:create",
	Short: "Create a workflow template from a file",
	Long: `Create a workflow template from a YAML or JSON file.

The file holds the template metadata, its parameter declarations, and the
embedded workflow definition carrying {{name}} placeholders.

Examples:
  flowdeck template:create -f report-template.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tplFile == "" {
			return cmd.Help()
		}
		data, err := os.ReadFile(tplFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", tplFile, err)
		}
		var tpl domain.WorkflowTemplate
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return fmt.Errorf("parsing %s: %w", tplFile, err)
		}
		return withService(func(ctx context.Context, svc *registry.Service) error {
			id, err := svc.CreateTemplate(ctx, &tpl)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "template:delete <id>",
	Short: "Delete a workflow template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, svc *registry.Service) error {
			return svc.DeleteTemplate(ctx, args[0])
		})
	},
}

var templateSpawnCmd = &cobra.Command{
	Use:   "template:spawn <id> <name>",
	Short: "Instantiate a workflow from a template",
	Long: `Create a new draft workflow from a template with parameters substituted.

Parameters are supplied as repeated --param name=value flags. Declared
parameters without a supplied value fall back to their default; a required
parameter with no value and no default aborts before anything is written.

Examples:
  flowdeck template:spawn 3a9e... "Weekly Digest" --param recipient=team@example.com`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := make(map[string]any, len(tplParams))
		for _, kv := range tplParams {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || name == "" {
				return fmt.Errorf("invalid --param %q, want name=value", kv)
			}
			params[name] = value
		}
		return withService(func(ctx context.Context, svc *registry.Service) error {
			id, err := svc.CreateFromTemplate(ctx, args[0], args[1], params)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

func init() {
	templateCreateCmd.Flags().StringVarP(&tplFile, "file", "f", "", "template file (required)")
	templateSpawnCmd.Flags().StringArrayVarP(&tplParams, "param", "p", nil, "template parameter (name=value, repeatable)")

	rootCmd.AddCommand(
		templateListCmd,
		templateShowCmd,
		templateCreateCmd,
		templateDeleteCmd,
		templateSpawnCmd,
	)
}
