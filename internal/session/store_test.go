package session

import (
	"sync"
	"testing"

	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/engine"
)

func newTestStore() *Store {
	return NewStore(func(sessionID string) *engine.Session {
		return engine.NewSession(sessionID, core.SystemClock(), nil, nil)
	})
}

func TestStoreGetOrCreate(t *testing.T) {
	store := newTestStore()

	first := store.GetOrCreate("s1")
	if first == nil {
		t.Fatal("factory was not invoked")
	}
	if second := store.GetOrCreate("s1"); second != first {
		t.Error("same id must return the same session")
	}
	if other := store.GetOrCreate("s2"); other == first {
		t.Error("different ids must not share a session")
	}
	if store.Len() != 2 {
		t.Errorf("len = %d, want 2", store.Len())
	}
}

func TestStoreGetAndRemove(t *testing.T) {
	store := newTestStore()

	if _, ok := store.Get("s1"); ok {
		t.Error("Get must not create sessions")
	}

	store.GetOrCreate("s1")
	if _, ok := store.Get("s1"); !ok {
		t.Error("session missing after GetOrCreate")
	}

	store.Remove("s1")
	if _, ok := store.Get("s1"); ok {
		t.Error("session still present after Remove")
	}
	if store.Len() != 0 {
		t.Errorf("len = %d after Remove", store.Len())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	sessions := make([]*engine.Session, 32)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = store.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(sessions); i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent GetOrCreate produced distinct sessions")
		}
	}
	if store.Len() != 1 {
		t.Errorf("len = %d, want 1", store.Len())
	}
}
