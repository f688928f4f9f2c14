package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/export"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)

	addPeriodFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "Output zip file (defaults to closer-<period>.zip)")

	importCmd.Flags().String("deal", "", "Link every imported expense to this deal ID")
	importCmd.Flags().Bool("dry-run", false, "Show the expenses that would be created without saving them")

	clearCmd.Flags().Bool("yes", false, "Confirm deleting every deal, expense and activity")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the accountant export zip for a period",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(runExport),
}

func runExport(cmd *cobra.Command, _ []string, a *app.App) error {
	p, err := periodFromFlags(cmd)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("closer-%s-%s.zip", p.Start.Format("20060102"), p.End.Format("20060102"))
	}

	bundle := a.Export.Export(cmd.Context(), p)
	if err := export.WriteZipFile(out, bundle); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n\n%s", out, export.GenerateSummary(bundle))

	return nil
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import the debit lines of a bank statement CSV as expenses",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithApp(runImport),
}

func runImport(cmd *cobra.Command, args []string, a *app.App) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	if dryRun {
		drafts, err := a.Importer.Preview(cmd.Context(), f)
		if err != nil {
			return err
		}

		t := newTable("Date", "Amount", "Category", "Description")
		for _, d := range drafts {
			category := d.Category.Label()
			if !d.Matched {
				category += " *"
			}

			t.Row(d.Date.Format("2006-01-02"), money(d.Amount), category, d.Description)
		}

		fmt.Fprintln(out, t)
		fmt.Fprintln(out, "* no learned rule matched")

		return nil
	}

	var dealID *string
	if id, _ := cmd.Flags().GetString("deal"); id != "" {
		dealID = &id
	}

	res, err := a.Importer.Import(cmd.Context(), f, dealID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d expenses, skipped %d.\n", len(res.Created), res.Skipped)

	return nil
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every deal, expense and activity",
	Args:  cobra.NoArgs,
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("refusing to clear data without --yes")
		}

		wasDemo := a.Demo.Active()

		if err := a.Demo.Clear(cmd.Context()); err != nil {
			return err
		}

		if wasDemo {
			fmt.Fprintln(cmd.OutOrStdout(), "Demo mode disabled, real records kept.")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), "All records deleted.")

		return nil
	}),
}
