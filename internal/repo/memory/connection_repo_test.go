package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/steveyiyo/tutor-relay/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConnectionRepo_Lifecycle(t *testing.T) {
	r := NewConnectionRepo()
	now := time.Now()
	r.Add(Connection{ID: "a", RemoteAddr: "10.0.0.1", ConnectedAt: now, LastActivity: now})
	r.Add(Connection{ID: "b", ConnectedAt: now})

	assert.EqualValues(t, 2, r.Active())
	assert.EqualValues(t, 2, r.Total())

	later := now.Add(time.Minute)
	r.Touch("a", later)
	r.RecordProgress("a", types.ProgressUpdate{ConnectionID: "a", GrammarScore: 80})

	c, ok := r.Get("a")
	require.True(t, ok)
	assert.EqualValues(t, 1, c.MessageCount)
	assert.Equal(t, later, c.LastActivity)
	require.NotNil(t, c.LastProgress)
	assert.Equal(t, 80, c.LastProgress.GrammarScore)

	final, ok := r.Remove("a")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", final.RemoteAddr)
	assert.EqualValues(t, 1, r.Active())
	assert.EqualValues(t, 2, r.Total())

	_, ok = r.Get("a")
	assert.False(t, ok)
	_, ok = r.Remove("a")
	assert.False(t, ok)
	assert.EqualValues(t, 1, r.Active())
}

func TestConnectionRepo_DuplicateAdd(t *testing.T) {
	r := NewConnectionRepo()
	r.Add(Connection{ID: "a"})
	r.Add(Connection{ID: "a"})

	assert.EqualValues(t, 1, r.Active())
	assert.EqualValues(t, 1, r.Total())
}

func TestConnectionRepo_UnknownIDIgnored(t *testing.T) {
	r := NewConnectionRepo()
	r.Touch("missing", time.Now())
	r.RecordProgress("missing", types.ProgressUpdate{})

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestConnectionRepo_ConcurrentTouch(t *testing.T) {
	r := NewConnectionRepo()
	r.Add(Connection{ID: "a"})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Touch("a", time.Now())
		}()
	}
	wg.Wait()

	c, _ := r.Get("a")
	assert.EqualValues(t, 50, c.MessageCount)
}
