// Package ledger stores saved timesheet entries in save order.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/timecalc"
)

var (
	// ErrValidation is the parent of every rejected ledger mutation.
	ErrValidation = errors.New("validation error")

	// ErrInvalidRange means the exit time is not after the entrance time.
	ErrInvalidRange = fmt.Errorf("%w: exit time must be after entrance time", ErrValidation)
)

// IDSource issues report ids for a YYYY-MM bucket.
type IDSource interface {
	Next(month string) (model.ReportID, error)
}

// Candidate is an entry that has not been saved yet.
type Candidate struct {
	CustomerName string
	ProjectName  string
	Date         model.Date
	EntranceTime string
	ExitTime     string
}

// Validate checks that both times parse and exit is after entrance.
func (c Candidate) Validate() error {
	in, err := timecalc.ParseClock(c.EntranceTime)
	if err != nil {
		return fmt.Errorf("%w: entrance: %v", ErrInvalidRange, err)
	}
	out, err := timecalc.ParseClock(c.ExitTime)
	if err != nil {
		return fmt.Errorf("%w: exit: %v", ErrInvalidRange, err)
	}
	if !out.After(in) {
		return fmt.Errorf("%w: %s-%s", ErrInvalidRange, c.EntranceTime, c.ExitTime)
	}
	return nil
}

// Ledger is the append/delete store of entries.
type Ledger struct {
	store   kvstore.Store
	ids     IDSource
	now     func() time.Time
	l       *slog.Logger
	entries []model.Entry
}

// Options configures a Ledger.
type Options struct {
	// Now stamps the id month bucket. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Load reads the ledger snapshot from s. A missing or malformed snapshot
// yields an empty ledger.
func Load(s kvstore.Store, ids IDSource, opts Options) *Ledger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	lg := &Ledger{store: s, ids: ids, now: opts.Now, l: opts.Logger}
	var entries []model.Entry
	if kvstore.LoadJSON(s, kvstore.KeyEntries, &entries, lg.l) {
		lg.entries = entries
	}
	return lg
}

func (lg *Ledger) persist() error {
	if err := kvstore.SaveJSON(lg.store, kvstore.KeyEntries, lg.entries); err != nil {
		lg.l.Warn("ledger not persisted", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Append validates c, assigns a fresh id from the current month (not the
// entry's date) and saves it. Validation failures leave the ledger and the
// id counters unchanged. Storage write failures are returned alongside the
// created entry, which is kept in memory.
func (lg *Ledger) Append(c Candidate) (model.Entry, error) {
	if err := c.Validate(); err != nil {
		return model.Entry{}, err
	}
	id, idErr := lg.ids.Next(timecalc.MonthKey(lg.now()))
	if idErr != nil && !kvstore.IsWriteError(idErr) {
		return model.Entry{}, fmt.Errorf("issuing report id: %w", idErr)
	}
	e := model.Entry{
		ID:           id,
		CustomerName: c.CustomerName,
		ProjectName:  c.ProjectName,
		Date:         c.Date,
		EntranceTime: c.EntranceTime,
		ExitTime:     c.ExitTime,
	}
	lg.entries = append(lg.entries, e)
	return e, errors.Join(idErr, lg.persist())
}

// Remove deletes the entry with id. It reports whether anything was removed;
// an unknown id is not an error.
func (lg *Ledger) Remove(id model.ReportID) (bool, error) {
	n := len(lg.entries)
	lg.entries = slices.DeleteFunc(lg.entries, func(e model.Entry) bool {
		return e.ID == id
	})
	if len(lg.entries) == n {
		return false, nil
	}
	return true, lg.persist()
}

// All returns every entry in save order.
func (lg *Ledger) All() []model.Entry {
	return slices.Clone(lg.entries)
}

// Find returns the entry with id.
func (lg *Ledger) Find(id model.ReportID) (model.Entry, bool) {
	i := slices.IndexFunc(lg.entries, func(e model.Entry) bool { return e.ID == id })
	if i < 0 {
		return model.Entry{}, false
	}
	return lg.entries[i], true
}

// Filter returns the entries of customerName whose date falls in year/month,
// in save order. The customer name matches ignoring case.
func (lg *Ledger) Filter(customerName string, year int, month time.Month) []model.Entry {
	var out []model.Entry
	for _, e := range lg.entries {
		if strings.EqualFold(e.CustomerName, customerName) && timecalc.InMonth(e.Date.Time, year, month) {
			out = append(out, e)
		}
	}
	return out
}
