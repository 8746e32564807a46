package dialogue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionLocksSerializeSameSession(t *testing.T) {
	l := newSessionLocks()
	unlock := l.lock("a")

	acquired := make(chan struct{})
	go func() {
		u := l.lock("a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()
	<-acquired
	require.Eventually(t, func() bool { return l.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSessionLocksIndependentSessions(t *testing.T) {
	l := newSessionLocks()
	unlockA := l.lock("a")
	defer unlockA()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.lock("b")()
	}()
	wg.Wait()
	require.Equal(t, 1, l.size())
}
