// Package session ties the directory, ledger and id generator to one store
// and serializes every mutation against it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Tiliavir/timesheet-ledger/internal/directory"
	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/ledger"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/remote"
	"github.com/Tiliavir/timesheet-ledger/internal/report"
	"github.com/Tiliavir/timesheet-ledger/internal/reportid"
)

// Options configures a Session.
type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// Session owns all mutable state of one running application.
type Session struct {
	mu  sync.Mutex
	l   *slog.Logger
	dir *directory.Directory
	lg  *ledger.Ledger
}

// Open loads every snapshot from s. It never fails: missing or malformed
// state loads as empty.
func Open(s kvstore.Store, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	ids := reportid.New(s, opts.Logger)
	lg := ledger.Load(s, ids, ledger.Options{Now: opts.Now, Logger: opts.Logger})
	for _, e := range lg.All() {
		ids.Observe(e.ID)
	}
	return &Session{
		l:   opts.Logger,
		dir: directory.Load(s, opts.Logger),
		lg:  lg,
	}
}

// IsNotice reports whether err only means the change was not persisted.
func IsNotice(err error) bool {
	return err != nil && kvstore.IsWriteError(err) && !IsValidation(err)
}

// IsValidation reports whether err rejected the operation without changing
// any state.
func IsValidation(err error) bool {
	return errors.Is(err, directory.ErrValidation) || errors.Is(err, ledger.ErrValidation)
}

func (s *Session) AddCustomer(name, companyName, email string) (model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.AddCustomer(name, companyName, email)
}

func (s *Session) RemoveCustomer(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.RemoveCustomer(name)
}

func (s *Session) AddProject(customerName, projectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.AddProject(customerName, projectName)
}

func (s *Session) RemoveProject(customerName, projectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.RemoveProject(customerName, projectName)
}

func (s *Session) SetCustomerEmail(customerName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.SetCustomerEmail(customerName, email)
}

func (s *Session) Customers() []model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Customers()
}

func (s *Session) FindCustomer(name string) (model.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Find(name)
}

// AppendEntry saves a new entry. The customer and project are not required
// to exist in the directory.
func (s *Session) AppendEntry(c ledger.Candidate) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lg.Append(c)
	if err == nil {
		s.l.Info("entry saved", slog.String("id", string(e.ID)), slog.String("customer", e.CustomerName))
	}
	return e, err
}

func (s *Session) RemoveEntry(id model.ReportID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lg.Remove(id)
}

func (s *Session) Entries() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lg.All()
}

func (s *Session) FindEntry(id model.ReportID) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lg.Find(id)
}

func (s *Session) FilterEntries(customerName string, year int, month time.Month) []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lg.Filter(customerName, year, month)
}

// ExportEntry renders a single entry as a document. ok is false for an
// unknown id.
func (s *Session) ExportEntry(id model.ReportID, format report.Format) (report.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lg.Find(id)
	if !ok {
		return report.Document{}, false
	}
	return report.EntryDocument(e, s.dir, format), true
}

// MonthlyReport builds the report for one customer and month.
func (s *Session) MonthlyReport(customerName string, year int, month time.Month, format report.Format) report.MonthlyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.BuildMonthlyReport(customerName, year, month, s.dir, s.lg, format)
}

// SyncCustomers submits a snapshot of the directory to sub. The lock is not
// held during the remote calls and the directory is never modified.
func (s *Session) SyncCustomers(ctx context.Context, sub remote.Submitter) remote.SyncResult {
	customers := s.Customers()
	res := remote.SyncCustomers(ctx, sub, customers, s.l)
	s.l.Info("customer sync finished", slog.Int("succeeded", res.Succeeded), slog.Int("failed", res.Failed))
	return res
}
