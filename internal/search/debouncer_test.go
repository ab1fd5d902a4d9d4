package search

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncer_OnlyLastQueryDelivered(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	d := NewDebouncer(30*time.Millisecond, func(query string) {
		mu.Lock()
		delivered = append(delivered, query)
		mu.Unlock()
	})
	defer d.Stop()

	d.Trigger("a")
	d.Trigger("al")
	d.Trigger("ali")

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"ali"}, delivered)
}

func TestDebouncer_SeparateQuietPeriods(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	d := NewDebouncer(20*time.Millisecond, func(query string) {
		mu.Lock()
		delivered = append(delivered, query)
		mu.Unlock()
	})
	defer d.Stop()

	d.Trigger("first")
	time.Sleep(60 * time.Millisecond)
	d.Trigger("second")
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, delivered)
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	var delivered []string

	d := NewDebouncer(30*time.Millisecond, func(query string) {
		mu.Lock()
		delivered = append(delivered, query)
		mu.Unlock()
	})

	d.Trigger("doomed")
	d.Stop()

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, delivered)
}
