// Command reconcile runs the productivity engine from the command line.
//
//	reconcile compute --input payload.json --format table
//	reconcile close --driver sqlite --db attendance.db --month 2025-03
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reconcile",
		Short:         "Reconcile attendance punches into working time and payroll",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newComputeCmd(), newCloseCmd())
	return root
}
