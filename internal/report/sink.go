package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Tiliavir/timesheet-ledger/internal/model"
)

// Document is a finished export handed to a delivery sink.
type Document struct {
	Filename string
	Subject  string
	Body     []byte
}

// Sink delivers a Document, e.g. to disk or an outgoing mail.
type Sink interface {
	Deliver(doc Document) (string, error)
}

// EntryDocument wraps a single-entry export.
func EntryDocument(e model.Entry, lookup CustomerLookup, format Format) Document {
	return Document{
		Filename: EntryFilename(e.ID),
		Subject:  fmt.Sprintf("Timesheet %s", e.ID),
		Body:     []byte(ToCSV([]model.Entry{e}, lookup, format)),
	}
}

// MonthlyDocument wraps a monthly report.
func MonthlyDocument(r MonthlyReport) Document {
	return Document{
		Filename: MonthlyFilename(r.CustomerName, r.Year, r.Month),
		Subject:  fmt.Sprintf("Timesheet %s %s %d", r.CustomerName, r.Month, r.Year),
		Body:     []byte(r.CSV),
	}
}

// DirSink writes documents into a directory.
type DirSink struct {
	Dir string
}

// Deliver writes doc to Dir/doc.Filename and returns the written path.
func (s DirSink) Deliver(doc Document) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(s.Dir, doc.Filename)
	if err := os.WriteFile(path, doc.Body, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriterSink streams the document body to W followed by a newline.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Deliver(doc Document) (string, error) {
	if _, err := fmt.Fprintf(s.W, "%s\n", doc.Body); err != nil {
		return "", err
	}
	return doc.Filename, nil
}
