package usecase

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()

	const workers = 16
	var counter int
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			release := locks.lock("account:a@b.com")
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locks := newKeyedMutex()

	releaseA := locks.lock("study-a")
	// a different key must not block
	releaseB := locks.lock("study-b")
	releaseB()
	releaseA()

	// entries are dropped once released
	assert.Empty(t, locks.locks)
}

func TestKeyedMutexReuseAfterRelease(t *testing.T) {
	locks := newKeyedMutex()

	release := locks.lock("study-a")
	release()
	release = locks.lock("study-a")
	release()
}
