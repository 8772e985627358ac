package reportid_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/model"
	"github.com/Tiliavir/timesheet-ledger/internal/reportid"
)

func TestNextFirstOfMonth(t *testing.T) {
	g := reportid.New(kvstore.NewMemory(), nil)
	id, err := g.Next("2024-05")
	require.NoError(t, err)
	assert.Equal(t, model.ReportID("2024-05-0001"), id)
}

func TestNextStrictlyIncreasingPerMonth(t *testing.T) {
	g := reportid.New(kvstore.NewMemory(), nil)
	for i := 1; i <= 12; i++ {
		may, err := g.Next("2024-05")
		require.NoError(t, err)
		assert.Equal(t, model.ReportID(fmt.Sprintf("2024-05-%04d", i)), may)
		if i%3 == 0 {
			jun, err := g.Next("2024-06")
			require.NoError(t, err)
			assert.Equal(t, model.ReportID(fmt.Sprintf("2024-06-%04d", i/3)), jun)
		}
	}
	assert.Equal(t, 12, g.Last("2024-05"))
	assert.Equal(t, 4, g.Last("2024-06"))
	assert.Equal(t, 0, g.Last("2024-07"))
}

func TestCountersSurviveReload(t *testing.T) {
	s := kvstore.NewMemory()
	g := reportid.New(s, nil)
	_, _ = g.Next("2024-05")
	_, _ = g.Next("2024-05")

	id, err := reportid.New(s, nil).Next("2024-05")
	require.NoError(t, err)
	assert.Equal(t, model.ReportID("2024-05-0003"), id)
}

func TestMalformedCountersStartOver(t *testing.T) {
	s := kvstore.NewMemory()
	require.NoError(t, s.Set(kvstore.KeyCounters, []byte("[1,2")))
	id, err := reportid.New(s, nil).Next("2024-05")
	require.NoError(t, err)
	assert.Equal(t, model.ReportID("2024-05-0001"), id)
}

func TestWriteFailureStillUnique(t *testing.T) {
	s := kvstore.NewMemory()
	g := reportid.New(s, nil)
	s.SetReadOnly(true)

	first, err := g.Next("2024-05")
	assert.True(t, kvstore.IsWriteError(err))
	second, err := g.Next("2024-05")
	assert.True(t, kvstore.IsWriteError(err))

	assert.Equal(t, model.ReportID("2024-05-0001"), first)
	assert.Equal(t, model.ReportID("2024-05-0002"), second)
}

func TestInvalidMonth(t *testing.T) {
	g := reportid.New(kvstore.NewMemory(), nil)
	for _, m := range []string{"", "2024-5", "2024-13", "24-05", "2024/05"} {
		_, err := g.Next(m)
		assert.Error(t, err, m)
	}
}

func TestConcurrentNextIsUnique(t *testing.T) {
	g := reportid.New(kvstore.NewMemory(), nil)
	const n = 50
	ids := make(chan model.ReportID, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := g.Next("2024-05")
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[model.ReportID]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestObserveGuardsAgainstLostCounters(t *testing.T) {
	s := kvstore.NewMemory()
	require.NoError(t, s.Set(kvstore.KeyCounters, []byte("{corrupt")))

	g := reportid.New(s, nil)
	g.Observe("2024-05-0007", "2024-05-0003", "2024-06-0002", "not-an-id", "2024-13-0001")

	id, err := g.Next("2024-05")
	require.NoError(t, err)
	assert.Equal(t, model.ReportID("2024-05-0008"), id)
	assert.Equal(t, 2, g.Last("2024-06"))
	assert.Equal(t, 0, g.Last("2024-13"))
}
