package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Add_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := newTestPeer(t, "alice").session
	bob := newTestPeer(t, "bob").session

	registry.Add(alice)
	registry.Add(bob)
	req.Equal(2, registry.Len())

	registry.Remove(alice)
	req.Equal(1, registry.Len())

	// Removing an absent session is a no-op.
	registry.Remove(alice)
	req.Equal(1, registry.Len())
}

func TestRegistry_ForEach_Visits_Each_Session_Once(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	alice := newTestPeer(t, "alice").session
	bob := newTestPeer(t, "bob").session
	registry.Add(alice)
	registry.Add(bob)

	visits := make(map[string]int)
	registry.ForEach(func(s *Session) {
		visits[s.Username]++
	})
	req.Equal(map[string]int{"alice": 1, "bob": 1}, visits)
}

func TestRegistry_ForEach_Survives_Concurrent_Mutation(t *testing.T) {
	registry := NewRegistry()
	seed := make([]*Session, 0, 8)
	for i := 0; i < 8; i++ {
		s := newTestPeer(t, "seed").session
		seed = append(seed, s)
		registry.Add(s)
	}

	churn := newTestPeer(t, "churn").session
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			registry.Add(churn)
			registry.Remove(churn)
		}
	}()

	for i := 0; i < 50; i++ {
		visited := 0
		registry.ForEach(func(*Session) { visited++ })
		require.GreaterOrEqual(t, visited, len(seed))
	}
	wg.Wait()
}
