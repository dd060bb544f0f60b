package provider

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadinessState(t *testing.T) {
	tests := []struct {
		name  string
		steps func(r *Readiness)
		want  State
	}{
		{
			name:  "no input",
			steps: func(r *Readiness) {},
			want:  StateUnknown,
		},
		{
			name:  "only data loaded",
			steps: func(r *Readiness) { r.DataLoaded() },
			want:  StateUnknown,
		},
		{
			name:  "only complete config",
			steps: func(r *Readiness) { r.ConfigChanged(true) },
			want:  StateUnknown,
		},
		{
			name: "data loaded, config incomplete",
			steps: func(r *Readiness) {
				r.DataLoaded()
				r.ConfigChanged(false)
			},
			want: StateNotReady,
		},
		{
			name: "data loaded, config complete",
			steps: func(r *Readiness) {
				r.ConfigChanged(true)
				r.DataLoaded()
			},
			want: StateReady,
		},
		{
			name: "config becomes incomplete again",
			steps: func(r *Readiness) {
				r.DataLoaded()
				r.ConfigChanged(true)
				r.ConfigChanged(false)
			},
			want: StateNotReady,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReadiness()
			tt.steps(r)
			require.Equal(t, tt.want, r.State())
			require.Equal(t, tt.want == StateReady, r.IsReady())
		})
	}
}

func TestReadinessSubscribe(t *testing.T) {
	r := NewReadiness()
	var mu sync.Mutex
	var got []bool
	r.Subscribe(func(ready bool) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ready)
	})

	r.DataLoaded()
	r.ConfigChanged(false)
	r.ConfigChanged(false)
	r.ConfigChanged(true)
	r.ConfigChanged(true)
	r.DataLoaded()
	r.ConfigChanged(false)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []bool{false, true, false}, got)
}

func TestReadinessSubscribeConcurrentChanges(t *testing.T) {
	for range 20 {
		r := NewReadiness()
		r.DataLoaded()

		var mu sync.Mutex
		var got []bool
		r.Subscribe(func(ready bool) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, ready)
		})

		var wg sync.WaitGroup
		for i := range 50 {
			wg.Go(func() { r.ConfigChanged(i%2 == 0) })
		}
		wg.Wait()

		mu.Lock()
		require.NotEmpty(t, got)
		for i := 1; i < len(got); i++ {
			require.NotEqual(t, got[i-1], got[i], "repeated delivery at %d", i)
		}
		require.Equal(t, r.IsReady(), got[len(got)-1])
		mu.Unlock()
	}
}

func TestReadinessWait(t *testing.T) {
	t.Run("blocks until config is complete", func(t *testing.T) {
		r := NewReadiness()
		r.DataLoaded()
		r.ConfigChanged(false)

		done := make(chan error, 1)
		go func() { done <- r.Wait(t.Context()) }()

		select {
		case <-done:
			require.Fail(t, "wait returned before config was complete")
		case <-time.After(50 * time.Millisecond):
		}

		r.ConfigChanged(true)
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "wait did not return after config became complete")
		}
	})

	t.Run("respects context", func(t *testing.T) {
		r := NewReadiness()
		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
	})

	t.Run("latches after first success", func(t *testing.T) {
		r := NewReadiness()
		r.DataLoaded()
		r.ConfigChanged(true)
		require.NoError(t, r.Wait(t.Context()))

		r.ConfigChanged(false)
		require.Equal(t, StateNotReady, r.State())

		ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
		defer cancel()
		require.NoError(t, r.Wait(ctx))
	})
}
