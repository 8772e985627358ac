// Package report renders ledger entries as CSV documents.
//
// Fields are wrapped in double quotes without escaping embedded quotes or
// newlines. Existing consumers depend on this exact shape.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/timecalc"
)

// Format selects the CSV column layout.
type Format int

const (
	// FormatCurrent is ID,Customer,Company,Project,Date,Hours.
	FormatCurrent Format = iota
	// FormatLegacy is ID,Customer,Date,Hours, used by early single-entry exports.
	FormatLegacy
)

var headers = map[Format][]string{
	FormatCurrent: {"ID", "Customer", "Company", "Project", "Date", "Hours"},
	FormatLegacy:  {"ID", "Customer", "Date", "Hours"},
}

// ParseFormat maps "v2"/"current" and "v1"/"legacy" to a Format. The empty
// string selects FormatCurrent.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "v2", "current":
		return FormatCurrent, nil
	case "v1", "legacy":
		return FormatLegacy, nil
	default:
		return 0, fmt.Errorf("unknown export format %q: use v1 or v2", s)
	}
}

func (f Format) String() string {
	if f == FormatLegacy {
		return "v1"
	}
	return "v2"
}

// CustomerLookup resolves a customer by name. Entries may refer to
// customers that no longer exist.
type CustomerLookup interface {
	Find(name string) (model.Customer, bool)
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}

// ToCSV renders entries in the given order. Rows are separated by "\n" with
// no trailing newline; zero entries produce only the header.
func ToCSV(entries []model.Entry, lookup CustomerLookup, format Format) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, strings.Join(headers[format], ","))
	for _, e := range entries {
		hours := timecalc.FormatHours(timecalc.HoursBetween(e.EntranceTime, e.ExitTime))
		var row []string
		switch format {
		case FormatLegacy:
			row = []string{string(e.ID), e.CustomerName, e.Date.String(), hours}
		default:
			company := ""
			if c, ok := lookup.Find(e.CustomerName); ok {
				company = c.CompanyName
			}
			row = []string{string(e.ID), e.CustomerName, company, e.ProjectName, e.Date.String(), hours}
		}
		lines = append(lines, quoteRow(row))
	}
	return strings.Join(lines, "\n")
}

// EntrySource is the read side of the ledger used for monthly reports.
type EntrySource interface {
	Filter(customerName string, year int, month time.Month) []model.Entry
}

// MonthlyReport aggregates one customer's entries in a calendar month.
// EntryCount is zero when there is nothing to report.
type MonthlyReport struct {
	CustomerName string
	Year         int
	Month        time.Month
	TotalHours   decimal.Decimal
	EntryCount   int
	CSV          string
}

// BuildMonthlyReport filters src by customer and entry date, sums the hours
// and renders the CSV.
func BuildMonthlyReport(customerName string, year int, month time.Month, lookup CustomerLookup, src EntrySource, format Format) MonthlyReport {
	entries := src.Filter(customerName, year, month)
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(timecalc.HoursBetween(e.EntranceTime, e.ExitTime))
	}
	return MonthlyReport{
		CustomerName: customerName,
		Year:         year,
		Month:        month,
		TotalHours:   total,
		EntryCount:   len(entries),
		CSV:          ToCSV(entries, lookup, format),
	}
}

var slugSeparators = regexp.MustCompile(`[\s.]+`)

func slug(s string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
}

// EntryFilename is the download name of a single-entry export.
func EntryFilename(id model.ReportID) string {
	return fmt.Sprintf("timesheet-%s.csv", id)
}

// MonthlyFilename is the download name of a monthly report.
func MonthlyFilename(customerName string, year int, month time.Month) string {
	return fmt.Sprintf("timesheet-%s-%04d-%02d.csv", slug(customerName), year, int(month))
}
