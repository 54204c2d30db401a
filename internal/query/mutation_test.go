package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutationSuccessCallback(t *testing.T) {
	var got int
	m := NewMutation("create", func(ctx context.Context, in int) (int, error) {
		return in * 2, nil
	}).OnSuccess(func(out int) { got = out })

	out, err := m.Do(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, 42, out)
	require.Equal(t, 42, got)
	require.False(t, m.Pending())
	require.NoError(t, m.Err())
}

func TestMutationErrorCallbackAndReset(t *testing.T) {
	boom := errors.New("boom")
	var seen error
	m := NewMutation("delete", func(ctx context.Context, in int) (struct{}, error) {
		return struct{}{}, boom
	}).OnError(func(err error) { seen = err })

	_, err := m.Do(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, seen, boom)
	require.ErrorIs(t, m.Err(), boom)

	// Reopening a modal clears the stale error banner.
	m.Reset()
	require.NoError(t, m.Err())
}

func TestMutationPendingDuringFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	m := NewMutation("run", func(ctx context.Context, in int) (int, error) {
		close(started)
		<-release
		return in, nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Do(context.Background(), 1)
	}()

	<-started
	require.True(t, m.Pending())
	close(release)
	<-done
	require.False(t, m.Pending())
}
