// Package reportid issues month-scoped sequential report ids of the form
// YYYY-MM-NNNN.
package reportid

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
)

var (
	monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	idPattern    = regexp.MustCompile(`^(\d{4}-(?:0[1-9]|1[0-2]))-(\d{4})$`)
)

// Generator hands out ids. Counters per month are independent, never reused
// and never decremented.
type Generator struct {
	mu     sync.Mutex
	store  kvstore.Store
	l      *slog.Logger
	issued map[string]int
}

// New returns a Generator persisting its counters in s.
func New(s kvstore.Store, l *slog.Logger) *Generator {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return &Generator{store: s, l: l, issued: map[string]int{}}
}

func (g *Generator) load() map[string]int {
	counters := map[string]int{}
	if !kvstore.LoadJSON(g.store, kvstore.KeyCounters, &counters, g.l) || counters == nil {
		counters = map[string]int{}
	}
	// Values issued in this session win over a stale or lost snapshot.
	for k, v := range g.issued {
		if v > counters[k] {
			counters[k] = v
		}
	}
	return counters
}

// Next issues the next id for month (YYYY-MM). If the counter cannot be
// persisted the id is still returned, together with an error wrapping
// kvstore.ErrWrite; later calls in the same session keep counting up.
func (g *Generator) Next(month string) (model.ReportID, error) {
	if !monthPattern.MatchString(month) {
		return "", fmt.Errorf("invalid month bucket %q: expected YYYY-MM", month)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	counters := g.load()
	n := counters[month] + 1
	if n > 9999 {
		return "", fmt.Errorf("report id space for %s exhausted", month)
	}
	counters[month] = n
	g.issued[month] = n

	id := model.ReportID(fmt.Sprintf("%s-%04d", month, n))
	if err := kvstore.SaveJSON(g.store, kvstore.KeyCounters, counters); err != nil {
		g.l.Warn("report counter not persisted", slog.String("id", string(id)), slog.String("error", err.Error()))
		return id, err
	}
	return id, nil
}

// Observe records ids that are already in use, so a lost or corrupt counter
// snapshot cannot hand them out again. Malformed ids are ignored.
func (g *Generator) Observe(ids ...model.ReportID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		m := idPattern.FindStringSubmatch(string(id))
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[2])
		if n > g.issued[m[1]] {
			g.issued[m[1]] = n
		}
	}
}

// Last returns the last value issued for month, or 0.
func (g *Generator) Last(month string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load()[month]
}
