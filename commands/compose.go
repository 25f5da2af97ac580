package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"quotedeck/services"
)

func newComposeCmd(d *deps) *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "compose <templateId> <quoteId>",
		Short: "Render one quote with a template to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			ctx, cancel := context.WithTimeout(ctx, d.cfg.Export.Timeout)
			defer cancel()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			exporter := services.NewExporter(d.store, d.composer)
			res, err := exporter.Export(ctx, services.ExportRequest{
				TemplateID: args[0],
				QuoteID:    args[1],
				Format:     format,
			})
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = filepath.Join(d.cfg.Export.OutputDir, res.FileName)
			}
			if err := writeOutput(path, res.Data); err != nil {
				return err
			}
			logger.Debug("totals", "charge", res.Totals.TotalCharge, "cost", res.Totals.TotalCost, "margin", res.Totals.Margin)
			prog.done(fmt.Sprintf("Wrote %s", path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <output_dir>/<quote number>.<ext>)")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "output format: pdf, html or xlsx")
	addVerboseFlag(cmd)
	return cmd
}

func newComposeBatchCmd(d *deps) *cobra.Command {
	var (
		templateID string
		kind       string
		format     string
		workers    int
		all        bool
		outputDir  string
	)
	cmd := &cobra.Command{
		Use:   "compose-batch [quoteId...]",
		Short: "Render many quotes concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			ids := args
			if all {
				recs, err := d.app.FindAllRecords(services.CollectionQuotes)
				if err != nil {
					return fmt.Errorf("list quotes: %w", err)
				}
				ids = ids[:0]
				for _, r := range recs {
					ids = append(ids, r.Id)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no quotes given; pass quote ids or --all")
			}
			if workers < 1 {
				workers = d.cfg.Export.BatchWorkers
			}
			if outputDir == "" {
				outputDir = d.cfg.Export.OutputDir
			}

			reqs := make([]services.ExportRequest, len(ids))
			for i, id := range ids {
				reqs[i] = services.ExportRequest{
					QuoteID:    id,
					TemplateID: templateID,
					Kind:       services.DocumentKind(kind),
					Format:     format,
				}
			}

			ctx, cancel := context.WithTimeout(ctx, d.cfg.Export.Timeout*batchRounds(len(reqs), workers))
			defer cancel()

			logger.Debug("composing", "quotes", len(reqs), "workers", workers)
			items, batchErr := services.NewExporter(d.store, d.composer).ExportBatch(ctx, reqs, workers)

			written := 0
			for _, it := range items {
				if it.Err != nil {
					logger.Error("compose failed", "err", it.Err)
					continue
				}
				if it.Result == nil {
					continue
				}
				path := filepath.Join(outputDir, it.Result.FileName)
				if err := writeOutput(path, it.Result.Data); err != nil {
					return err
				}
				logger.Debug("wrote", "path", path)
				written++
			}
			prog.done(fmt.Sprintf("Wrote %d of %d documents to %s", written, len(reqs), outputDir))
			return batchErr
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "template id (default: the default template for --kind)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "quote", "document kind used to pick the default template")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "output format: pdf, html or xlsx")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent renders (default export.batch_workers)")
	cmd.Flags().BoolVar(&all, "all", false, "render every quote")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default export.output_dir)")
	addVerboseFlag(cmd)
	return cmd
}

// batchRounds is how many timeout windows a batch may take.
func batchRounds(jobs, workers int) time.Duration {
	rounds := (jobs + workers - 1) / workers
	if rounds < 1 {
		rounds = 1
	}
	return time.Duration(rounds)
}
