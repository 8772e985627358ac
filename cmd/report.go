package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet-ledger/internal/report"
	"github.com/Tiliavir/timesheet-ledger/internal/timecalc"
)

var (
	reportMonth  string
	reportFormat string
	reportStdout bool
	reportDir    string
)

var reportCmd = &cobra.Command{
	Use:   "report <customer>",
	Short: "Build a customer's monthly report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Month of the entry dates (YYYY-MM); defaults to the current month")
	addDeliveryFlags(reportCmd, &reportFormat, &reportStdout, &reportDir)
}

func runReport(cmd *cobra.Command, args []string) error {
	customer := args[0]

	e := openEnv()
	defer e.close()

	month := reportMonth
	if month == "" {
		month = timecalc.MonthKey(e.now())
	}
	year, m, err := timecalc.ParseMonth(month)
	if err != nil {
		fail(1, err)
	}

	format, sink := deliveryFor(e, reportFormat, reportStdout, reportDir)
	r := e.sess.MonthlyReport(customer, year, m, format)
	if r.EntryCount == 0 {
		fmt.Printf("No entries for %q in %s.\n", customer, month)
		return nil
	}

	path, err := sink.Deliver(report.MonthlyDocument(r))
	if err != nil {
		fail(2, err)
	}
	if reportStdout {
		return nil
	}
	fmt.Printf("%s %s: %d entries, %s h (%s)\n",
		customer, month, r.EntryCount, timecalc.FormatHours(r.TotalHours), timecalc.FormatDuration(r.TotalHours))
	fmt.Printf("Written to %s\n", path)
	return nil
}
