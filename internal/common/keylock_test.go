package common

import (
	"context"
	"sync"
	"testing"
)

func TestMutexKeyLock_SerializesSameKey(t *testing.T) {
	kl := NewMutexKeyLock()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := kl.Acquire(ctx, "k")
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("Expected 50 increments under the lock, got %d", counter)
	}
}

func TestMutexKeyLock_IndependentKeys(t *testing.T) {
	kl := NewMutexKeyLock()
	ctx := context.Background()

	releaseA, err := kl.Acquire(ctx, "a")
	if err != nil {
		t.Fatalf("Acquire a failed: %v", err)
	}
	defer releaseA()

	// A held lock on one key must not block another key
	releaseB, err := kl.Acquire(ctx, "b")
	if err != nil {
		t.Fatalf("Acquire b failed: %v", err)
	}
	releaseB()
}
