package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet-ledger/internal/ledger"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/timecalc"
)

var (
	entryCustomer string
	entryProject  string
	entryDate     string
	entryIn       string
	entryOut      string
	entryMonth    string
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record and manage timesheet entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a work session",
	Args:  cobra.NoArgs,
	RunE:  runEntryAdd,
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved entries in save order",
	Args:  cobra.NoArgs,
	RunE:  runEntryList,
}

var entryRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete an entry by report id",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryRemove,
}

func init() {
	entryAddCmd.Flags().StringVar(&entryCustomer, "customer", "", "Customer name")
	entryAddCmd.Flags().StringVar(&entryProject, "project", "", "Project name")
	entryAddCmd.Flags().StringVar(&entryDate, "date", "", "Work date (YYYY-MM-DD); defaults to today")
	entryAddCmd.Flags().StringVar(&entryIn, "in", "", "Entrance time (HH:MM)")
	entryAddCmd.Flags().StringVar(&entryOut, "out", "", "Exit time (HH:MM)")
	_ = entryAddCmd.MarkFlagRequired("customer")
	_ = entryAddCmd.MarkFlagRequired("in")
	_ = entryAddCmd.MarkFlagRequired("out")

	entryListCmd.Flags().StringVar(&entryCustomer, "customer", "", "Only entries of this customer")
	entryListCmd.Flags().StringVar(&entryMonth, "month", "", "Only entries dated in this month (YYYY-MM); requires --customer")

	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryRemoveCmd)
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if entryDate != "" {
		d, err := model.ParseDate(entryDate)
		if err != nil {
			fail(1, err)
		}
		date = d.Time
	}

	e := openEnv()
	defer e.close()

	if c, ok := e.sess.FindCustomer(entryCustomer); !ok {
		fmt.Fprintf(os.Stderr, "Warning: customer %q is not in the directory\n", entryCustomer)
	} else if entryProject != "" && !c.HasProject(entryProject) {
		fmt.Fprintf(os.Stderr, "Warning: project %q is not listed for %q\n", entryProject, c.Name)
	}

	saved, err := e.sess.AppendEntry(ledger.Candidate{
		CustomerName: entryCustomer,
		ProjectName:  entryProject,
		Date:         model.NewDate(date.Year(), date.Month(), date.Day()),
		EntranceTime: entryIn,
		ExitTime:     entryOut,
	})
	check(err)

	hours := timecalc.HoursBetween(saved.EntranceTime, saved.ExitTime)
	fmt.Printf("Saved %s: %s %s-%s (%s h)\n", saved.ID, saved.Date, saved.EntranceTime, saved.ExitTime, timecalc.FormatHours(hours))
	return nil
}

func runEntryList(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	var entries []model.Entry
	switch {
	case entryMonth != "":
		if entryCustomer == "" {
			fail(1, fmt.Errorf("--customer is required when --month is specified"))
		}
		year, month, err := timecalc.ParseMonth(entryMonth)
		if err != nil {
			fail(1, err)
		}
		entries = e.sess.FilterEntries(entryCustomer, year, month)
	default:
		for _, en := range e.sess.Entries() {
			if entryCustomer == "" || strings.EqualFold(en.CustomerName, entryCustomer) {
				entries = append(entries, en)
			}
		}
	}

	printEntries(entries)
	return nil
}

func printEntries(entries []model.Entry) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}
	fmt.Print(table(entryRows(entries)))
}

func entryRows(entries []model.Entry) [][]string {
	rows := [][]string{{"ID", "Date", "Customer", "Project", "Time", "Hours"}}
	for _, e := range entries {
		rows = append(rows, []string{
			string(e.ID),
			e.Date.String(),
			e.CustomerName,
			e.ProjectName,
			e.EntranceTime + "-" + e.ExitTime,
			timecalc.FormatHours(timecalc.HoursBetween(e.EntranceTime, e.ExitTime)),
		})
	}
	return rows
}

func runEntryRemove(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	removed, err := e.sess.RemoveEntry(model.ReportID(args[0]))
	check(err)
	if !removed {
		fmt.Printf("No entry %s.\n", args[0])
		return nil
	}
	fmt.Printf("Removed entry %s\n", args[0])
	return nil
}
