package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabishkhalil463/FeastDash/internal/api"
)

// submitInFlight parks a wizard inside its payment delay so the registry can
// be poked while the attempt is processing. Closing release lets it settle.
func submitInFlight(t *testing.T, reg *Registry, sessionID string) (*Wizard, chan struct{}, chan error) {
	t.Helper()
	store, _ := loadedCart(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	place := func(ctx context.Context, req api.CreateOrderRequest) (string, error) {
		return "FD-11223344", nil
	}
	sleep := func(time.Duration) {
		close(entered)
		<-release
	}

	w, err := reg.Begin(sessionID, store, place, sleep)
	require.NoError(t, err)
	require.NoError(t, w.SetDelivery(validDelivery()))
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-entered
	return w, release, done
}

func TestRegistry_ProcessingWizardCannotBeReplaced(t *testing.T) {
	reg := NewRegistry()
	w, release, done := submitInFlight(t, reg, "sess-1")

	_, err := reg.Begin("sess-1", nil, nil, nil)
	assert.ErrorIs(t, err, ErrProcessing)
	assert.ErrorIs(t, reg.Discard("sess-1"), ErrProcessing)
	got, ok := reg.Get("sess-1")
	require.True(t, ok)
	assert.Same(t, w, got, "the in-flight wizard survives")

	// Other sessions are unaffected.
	otherStore, _ := loadedCart(t)
	_, err = reg.Begin("sess-2", otherStore, nil, func(time.Duration) {})
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, reg.Discard("sess-1"))
	_, ok = reg.Get("sess-1")
	assert.False(t, ok)
}

func TestRegistry_DropIgnoresProcessing(t *testing.T) {
	reg := NewRegistry()
	_, release, done := submitInFlight(t, reg, "sess-1")

	reg.Drop("sess-1")
	_, ok := reg.Get("sess-1")
	assert.False(t, ok)

	close(release)
	require.NoError(t, <-done)
}
