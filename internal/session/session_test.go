package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/ledger"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/remote"
	"github.com/Tiliavir/timesheet-ledger/internal/report"
	"github.com/Tiliavir/timesheet-ledger/internal/session"
)

func may2024() time.Time { return time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC) }

func TestMonthlyScenario(t *testing.T) {
	s := session.Open(kvstore.NewMemory(), session.Options{Now: may2024})
	_, err := s.AddCustomer("A", "Alpha GmbH", "")
	require.NoError(t, err)
	require.NoError(t, s.AddProject("A", "P1"))

	e, err := s.AppendEntry(ledger.Candidate{CustomerName: "A", ProjectName: "P1", Date: model.NewDate(2024, time.May, 10), EntranceTime: "09:00", ExitTime: "17:30"})
	require.NoError(t, err)
	assert.Equal(t, model.ReportID("2024-05-0001"), e.ID)

	_, err = s.AppendEntry(ledger.Candidate{CustomerName: "B", ProjectName: "X", Date: model.NewDate(2024, time.May, 12), EntranceTime: "10:00", ExitTime: "11:00"})
	require.NoError(t, err)

	r := s.MonthlyReport("A", 2024, time.May, report.FormatCurrent)
	assert.Equal(t, 1, r.EntryCount)
	assert.Equal(t, "8.50", r.TotalHours.StringFixed(2))

	doc, ok := s.ExportEntry(e.ID, report.FormatCurrent)
	require.True(t, ok)
	assert.Equal(t, "timesheet-2024-05-0001.csv", doc.Filename)

	_, ok = s.ExportEntry("2024-05-9999", report.FormatCurrent)
	assert.False(t, ok)
}

func TestReopenRestoresState(t *testing.T) {
	store := kvstore.NewMemory()
	s := session.Open(store, session.Options{Now: may2024})
	_, _ = s.AddCustomer("A", "Alpha GmbH", "a@alpha.test")
	_, err := s.AppendEntry(ledger.Candidate{CustomerName: "A", Date: model.NewDate(2024, time.May, 10), EntranceTime: "09:00", ExitTime: "10:00"})
	require.NoError(t, err)

	again := session.Open(store, session.Options{Now: may2024})
	assert.Equal(t, s.Customers(), again.Customers())
	assert.Equal(t, s.Entries(), again.Entries())

	e, err := again.AppendEntry(ledger.Candidate{CustomerName: "A", Date: model.NewDate(2024, time.May, 11), EntranceTime: "09:00", ExitTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, model.ReportID("2024-05-0002"), e.ID)
}

func TestCorruptCountersDoNotReuseLedgerIDs(t *testing.T) {
	store := kvstore.NewMemory()
	s := session.Open(store, session.Options{Now: may2024})
	first, err := s.AppendEntry(ledger.Candidate{CustomerName: "A", Date: model.NewDate(2024, time.May, 10), EntranceTime: "09:00", ExitTime: "10:00"})
	require.NoError(t, err)
	require.NoError(t, store.Set(kvstore.KeyCounters, []byte("[")))

	again := session.Open(store, session.Options{Now: may2024})
	next, err := again.AppendEntry(ledger.Candidate{CustomerName: "A", Date: model.NewDate(2024, time.May, 11), EntranceTime: "09:00", ExitTime: "10:00"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)
	assert.Equal(t, model.ReportID("2024-05-0002"), next.ID)
}

func TestErrorClassification(t *testing.T) {
	store := kvstore.NewMemory()
	s := session.Open(store, session.Options{Now: may2024})
	_, _ = s.AddCustomer("A", "", "")

	_, err := s.AddCustomer("a", "", "")
	assert.True(t, session.IsValidation(err))
	assert.False(t, session.IsNotice(err))

	_, err = s.AppendEntry(ledger.Candidate{CustomerName: "A", EntranceTime: "10:00", ExitTime: "09:00"})
	assert.True(t, session.IsValidation(err))

	store.SetReadOnly(true)
	_, err = s.AddCustomer("B", "", "")
	assert.True(t, session.IsNotice(err))
	_, ok := s.FindCustomer("B")
	assert.True(t, ok)

	e, err := s.AppendEntry(ledger.Candidate{CustomerName: "A", EntranceTime: "09:00", ExitTime: "10:00"})
	assert.True(t, session.IsNotice(err))
	_, ok = s.FindEntry(e.ID)
	assert.True(t, ok)

	assert.False(t, session.IsNotice(nil))
}

func TestConcurrentAppendsGetUniqueIDs(t *testing.T) {
	s := session.Open(kvstore.NewMemory(), session.Options{Now: may2024})
	var wg sync.WaitGroup
	for range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AppendEntry(ledger.Candidate{CustomerName: "A", Date: model.NewDate(2024, time.May, 1), EntranceTime: "09:00", ExitTime: "10:00"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[model.ReportID]bool{}
	for _, e := range s.Entries() {
		assert.False(t, seen[e.ID])
		seen[e.ID] = true
	}
	assert.Len(t, seen, 40)
}

type rejectAll struct{}

func (rejectAll) SubmitCustomer(context.Context, remote.CustomerPayload) (remote.Result, error) {
	return remote.Result{Success: false, Error: "offline"}, nil
}

func TestSyncFailureKeepsDirectory(t *testing.T) {
	s := session.Open(kvstore.NewMemory(), session.Options{Now: may2024})
	_, _ = s.AddCustomer("A", "", "")
	_, _ = s.AddCustomer("B", "", "")

	res := s.SyncCustomers(context.Background(), rejectAll{})
	assert.Equal(t, 0, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, s.Customers(), 2)
}
