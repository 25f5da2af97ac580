package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quotedeck/services"
)

func newTemplateImportCmd(d *deps) *cobra.Command {
	var makeDefault bool
	cmd := &cobra.Command{
		Use:   "template-import <file.toml>",
		Short: "Validate a TOML template and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := loggerFromContext(ctx)

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open template: %w", err)
			}
			defer f.Close()

			tpl, err := services.DecodeTemplate(f)
			if err != nil {
				return err
			}
			if makeDefault {
				tpl.IsDefault = true
			}
			if err := d.composer.Validate(nil, tpl); err != nil {
				return fmt.Errorf("template %q is invalid: %w", tpl.Name, err)
			}
			if err := d.store.SaveTemplate(ctx, tpl); err != nil {
				return err
			}
			logger.Info("imported template", "name", tpl.Name, "kind", tpl.Kind, "modules", len(tpl.Modules))
			fmt.Fprintln(cmd.OutOrStdout(), tpl.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default template for its kind")
	addVerboseFlag(cmd)
	return cmd
}

func newTemplateExportCmd(d *deps) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "template-export <templateId>",
		Short: "Write a stored template as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			tpl, err := d.store.LoadTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return services.EncodeTemplate(cmd.OutOrStdout(), tpl)
			}
			var sb strings.Builder
			if err := services.EncodeTemplate(&sb, tpl); err != nil {
				return err
			}
			return writeOutput(output, []byte(sb.String()))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	addVerboseFlag(cmd)
	return cmd
}

func newTemplateCheckCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template-check <templateId>",
		Short: "Show how a template packs into rows and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := loggerFromContext(ctx)

			tpl, err := d.store.LoadTemplate(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", tpl.Name, tpl.Kind)
			for i, row := range services.PackModules(tpl.Modules) {
				cells := make([]string, len(row.Placements))
				for j, p := range row.Placements {
					cells[j] = fmt.Sprintf("%s[%s,%s]", p.Module.Label(), widthName(p.Module.Width), p.Align)
				}
				fmt.Fprintf(out, "row %d (%.0f%%): %s\n", i+1, row.Width(), strings.Join(cells, " "))
			}
			if footer, ok := services.FindFooter(tpl.Modules); ok {
				fmt.Fprintf(out, "footer: %s\n", footer.Label())
			}

			if err := d.composer.Validate(nil, tpl); err != nil {
				var n int
				for _, line := range strings.Split(err.Error(), "\n") {
					logger.Error(line)
					n++
				}
				return fmt.Errorf("template %q has %d problem(s)", tpl.Name, n)
			}
			logger.Info("template is valid", "name", tpl.Name)
			return nil
		},
	}
	addVerboseFlag(cmd)
	return cmd
}

func widthName(w services.Width) string {
	if w == "" {
		return string(services.WidthFull)
	}
	return string(w)
}
