package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/lending"
)

func newReconcileCmd() *cobra.Command {
	var (
		bookID       string
		reportDir    string
		reportFormat string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute available copies from the borrow records",
		Long: `Recompute each book's available copy count as quantity minus its active
borrows and repair any drift.

Examples:
  library reconcile
  library reconcile --book 4f1c2b9e-...
  library reconcile --report-dir ./reports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reportFormat != "json" && reportFormat != "yaml" {
				return fmt.Errorf("unknown report format %q", reportFormat)
			}

			svc, err := openServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := context.Background()
			if bookID != "" {
				book, correction, err := svc.Reconciler.ReconcileBook(ctx, bookID)
				corrected := 0
				if correction != nil {
					corrected = 1
				}
				svc.Audit.LogReconcile(0, bookID, 1, corrected, err)
				if err != nil {
					return err
				}
				if correction != nil {
					printCorrection(*correction)
				} else {
					ok("%s is consistent (%d of %d available)", book.Title, book.AvailableQuantity, book.Quantity)
				}
				return nil
			}

			result, err := svc.Reconciler.ReconcileAll(ctx)
			if result != nil {
				svc.Audit.LogReconcile(0, "", result.Checked, result.Corrected, err)
				printReconcileResult(result)
				if reportDir != "" {
					path, saveErr := saveReport(audit.NewReportWriter(reportDir), reportFormat, result)
					if saveErr != nil {
						warn("Failed to write report: %v", saveErr)
					} else {
						ok("Report written to %s", path)
					}
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&bookID, "book", "", "Reconcile a single book by ID")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Write a report of the sweep to this directory")
	cmd.Flags().StringVar(&reportFormat, "report-format", "json", "Report format: json or yaml")
	return cmd
}

func printCorrection(c lending.Correction) {
	fmt.Printf("  %s %s: %d -> %d available (%d on loan)\n",
		color.YellowString("fixed"), c.Title, c.Previous, c.Corrected, c.ActiveBorrows)
}

func printReconcileResult(result *lending.ReconcileResult) {
	for _, c := range result.Corrections {
		printCorrection(c)
	}
	summary := fmt.Sprintf("Checked %d books, corrected %d", result.Checked, result.Corrected)
	if result.Failed > 0 {
		warn("%s, %d failed", summary, result.Failed)
		return
	}
	ok("%s", summary)
}

func saveReport(w *audit.ReportWriter, format string, result *lending.ReconcileResult) (string, error) {
	if format == "yaml" {
		return w.SaveYAML("reconcile", result)
	}
	return w.SaveJSON("reconcile", result)
}
