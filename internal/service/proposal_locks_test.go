package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestKeyedMutex_SerializesSameID(t *testing.T) {
	defer goleak.VerifyNone(t)

	k := newKeyedMutex()
	id := uuid.New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(id)
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInside)
	assert.Equal(t, 0, k.size())
}

func TestKeyedMutex_DifferentIDsProceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	k := newKeyedMutex()
	unlockA := k.Lock(uuid.New())

	done := make(chan struct{})
	go func() {
		unlock := k.Lock(uuid.New())
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different id blocked")
	}
	unlockA()
	assert.Equal(t, 0, k.size())
}
