package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_CoalescesConcurrentCalls(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int64
	release := make(chan struct{})

	const n = 16
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("Do: %v", err)
			}
			results[i] = v
		}(i)
	}

	// Release the leader only after every other caller joined its flight.
	for joined(&g, "k") != n-1 {
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("fn must run once, ran %d times", calls.Load())
	}
	for i, v := range results {
		if v != 42 {
			t.Fatalf("caller %d got %d", i, v)
		}
	}
	if g.InFlight() != 0 {
		t.Fatal("flight must be removed after completion")
	}
}

func joined(g *Group[string, int], key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.m[key]; ok {
		return c.dups
	}
	return -1
}

func TestDo_SharesError(t *testing.T) {
	var g Group[int, string]
	errBoom := errors.New("boom")
	_, shared, err := g.Do(context.Background(), 1, func() (string, error) { return "", errBoom })
	if !errors.Is(err, errBoom) || shared {
		t.Fatalf("want unshared errBoom, got shared=%v err=%v", shared, err)
	}
}

// A follower whose context ends stops waiting; the leader keeps going.
func TestDo_FollowerContextCancel(t *testing.T) {
	var g Group[string, int]
	release := make(chan struct{})
	leaderDone := make(chan int)

	go func() {
		v, _, _ := g.Do(context.Background(), "k", func() (int, error) {
			<-release
			return 7, nil
		})
		leaderDone <- v
	}()
	for g.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, shared, err := g.Do(ctx, "k", func() (int, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) || !shared {
		t.Fatalf("follower want context.Canceled, got shared=%v err=%v", shared, err)
	}

	close(release)
	if v := <-leaderDone; v != 7 {
		t.Fatalf("leader got %d", v)
	}
}

// A panicking fn must not leave the key stuck.
func TestDo_PanicReleasesKey(t *testing.T) {
	var g Group[string, int]
	func() {
		defer func() { _ = recover() }()
		_, _, _ = g.Do(context.Background(), "k", func() (int, error) { panic("fn") })
	}()

	if g.InFlight() != 0 {
		t.Fatal("panicking flight must be removed")
	}
	v, _, err := g.Do(context.Background(), "k", func() (int, error) { return 1, nil })
	if err != nil || v != 1 {
		t.Fatalf("key must be usable after panic: v=%d err=%v", v, err)
	}
}
