package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/report"
)

var (
	exportFormat string
	exportStdout bool
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a single entry as timesheet-<id>.csv",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	addDeliveryFlags(exportCmd, &exportFormat, &exportStdout, &exportDir)
}

// addDeliveryFlags registers the format and destination flags shared by
// export and report.
func addDeliveryFlags(cmd *cobra.Command, format *string, stdout *bool, dir *string) {
	cmd.Flags().StringVar(format, "format", "", "CSV layout: v2 (default from config) or v1")
	cmd.Flags().BoolVar(stdout, "stdout", false, "Write the CSV to stdout instead of a file")
	cmd.Flags().StringVar(dir, "dir", "", "Target directory (default from config, else current directory)")
}

// deliveryFor resolves the format and sink for a command invocation.
func deliveryFor(e *env, format string, stdout bool, dir string) (report.Format, report.Sink) {
	if format == "" {
		format = e.cfg.Export.Format
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		fail(1, err)
	}
	if stdout {
		return f, report.WriterSink{W: os.Stdout}
	}
	if dir == "" {
		dir = e.cfg.Export.Dir
	}
	if dir == "" {
		dir = "."
	}
	return f, report.DirSink{Dir: dir}
}

func runExport(cmd *cobra.Command, args []string) error {
	e := openEnv()
	defer e.close()

	format, sink := deliveryFor(e, exportFormat, exportStdout, exportDir)
	doc, ok := e.sess.ExportEntry(model.ReportID(args[0]), format)
	if !ok {
		fail(1, fmt.Errorf("no entry %s", args[0]))
	}
	path, err := sink.Deliver(doc)
	if err != nil {
		fail(2, err)
	}
	if !exportStdout {
		fmt.Printf("Exported %s to %s\n", doc.Subject, path)
	}
	return nil
}
