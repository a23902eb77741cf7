package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

type stubSearchRemote struct {
	calls   int32
	results func(q string) []domain.Restaurant
}

func (s *stubSearchRemote) ListRestaurants(ctx context.Context, search string) ([]domain.Restaurant, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.results(search), nil
}

func TestLiveSearch_DebouncesKeystrokes(t *testing.T) {
	remote := &stubSearchRemote{
		results: func(q string) []domain.Restaurant {
			return []domain.Restaurant{{ID: 1, Name: q}}
		},
	}
	search := newLiveSearch(remote, 30*time.Millisecond)
	defer search.Stop()

	for _, q := range []string{"b", "bi", "bir", "biry", "biryani"} {
		search.SetQuery(q)
		time.Sleep(5 * time.Millisecond)
	}
	snap := search.Snapshot()
	assert.True(t, snap.Pending)
	assert.Equal(t, int32(0), atomic.LoadInt32(&remote.calls), "nothing fires while typing")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && search.Snapshot().Pending {
		time.Sleep(5 * time.Millisecond)
	}

	snap = search.Snapshot()
	require.False(t, snap.Pending)
	assert.Equal(t, int32(1), atomic.LoadInt32(&remote.calls), "only the final query reaches the API")
	assert.Equal(t, "biryani", snap.Query)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "biryani", snap.Results[0].Name)
}

func TestLiveSearch_StaleResponseIsDropped(t *testing.T) {
	block := make(chan struct{})
	remote := &stubSearchRemote{
		results: func(q string) []domain.Restaurant {
			if q == "old" {
				<-block
			}
			return []domain.Restaurant{{Name: q}}
		},
	}
	search := newLiveSearch(remote, time.Millisecond)
	defer search.Stop()

	search.SetQuery("old")
	time.Sleep(20 * time.Millisecond) // "old" is now in flight and blocked
	search.SetQuery("new")
	time.Sleep(20 * time.Millisecond)
	close(block)
	time.Sleep(20 * time.Millisecond)

	snap := search.Snapshot()
	assert.Equal(t, "new", snap.Query)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "new", snap.Results[0].Name, "the superseded response never lands")
}

func TestLiveSearchEndpoint(t *testing.T) {
	g := newGateway(t)
	cookie := g.login(t, "eater@feastdash.pk", domain.UserCustomer)

	rec := g.do(t, http.MethodGet, "/api/search?q=spice", cookie, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "spice", body["query"])
	assert.Equal(t, true, body["pending"], "the debounce window is still open")

	// After the quiet period the same endpoint serves the results.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec = g.do(t, http.MethodGet, "/api/search", cookie, nil)
		body = decode[map[string]any](t, rec)
		if body["pending"] == false {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.Equal(t, false, body["pending"])
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "Spice Hut", results[0].(map[string]any)["name"])
}
