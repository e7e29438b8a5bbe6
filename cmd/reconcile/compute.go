package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/productivity"
)

func newComputeCmd() *cobra.Command {
	var (
		input  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Run one calculation payload and print the result",
		Long: `Run the productivity engine on a calculation payload (the same JSON the
POST /api/productivity endpoint accepts). Nothing is read from or written to a store.`,
		Example: `
  # Full result as JSON
  reconcile compute --input march.json

  # Summary and delay report as a table
  reconcile compute --input march.json --format table

  # Payload from stdin
  cat march.json | reconcile compute --input -
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown format %q (json|table)", format)
			}

			data, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			params, err := factory.NewPayloadFactory().ParsePayload(data)
			if err != nil {
				return err
			}

			result := productivity.CalculateWorkerProductivity(params)
			if format == "table" {
				return printTable(cmd.OutOrStdout(), result)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "Payload file, - for stdin")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or table")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func printTable(out io.Writer, r productivity.Result) error {
	fs := r.FinalSummary
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Employee\t%s\n", fs.EmployeeName)
	fmt.Fprintf(tw, "Period\t%s\n", fs.Period)
	fmt.Fprintf(tw, "Days\t%d total, %d present, %d absent, %d sundays, %d holidays\n",
		fs.TotalDays, fs.PresentDays, fs.AbsentDays, fs.Sundays, fs.Holidays)
	fmt.Fprintf(tw, "Working time\t%s\n", fs.TotalWorkingTime)
	fmt.Fprintf(tw, "Permission time\t%s\n", fs.TotalPermissionTime)
	fmt.Fprintf(tw, "Original salary\t%s\n", fs.OriginalSalary)
	fmt.Fprintf(tw, "Deductions\t%s (absent %s, permission %s, advance %s)\n",
		fs.TotalDeduction, fs.AbsentDeduction, fs.PermissionDeduction, fs.AdvanceDeduction)
	fmt.Fprintf(tw, "Final salary\t%s\n", fs.FinalSalary)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "DATE\tOUT\tIN\tDELAY\tTYPE\tDEDUCTION\tSTATUS\tREMARKS")
	for _, row := range r.Report {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.DisplayDate, row.OutTime, row.InTime, row.DelayTime, row.DelayType,
			row.DeductionAmount, row.Status, row.Remarks)
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(tw, "warning\t%s %s\n", w.Date, w.Message)
	}
	return tw.Flush()
}
