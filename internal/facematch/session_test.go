package facematch

import (
	"sync"
	"testing"
)

func TestSession_Empty(t *testing.T) {
	s := NewSession()
	if s.Registered() {
		t.Error("new session should not be registered")
	}
	if s.Embedding() != nil {
		t.Error("new session should have no embedding")
	}
	if !s.RegisteredAt().IsZero() {
		t.Error("new session should have zero RegisteredAt")
	}
}

func TestSession_EmbeddingReturnsCopy(t *testing.T) {
	s := NewSession()
	s.store(Embedding{1, 2, 3})

	got := s.Embedding()
	got[0] = 99

	if s.Embedding()[0] != 1 {
		t.Error("mutating the returned embedding changed the session")
	}
}

func TestSession_Clear(t *testing.T) {
	s := NewSession()
	s.store(Embedding{1})
	s.Clear()

	if s.Registered() {
		t.Error("expected session to be cleared")
	}
	if !s.RegisteredAt().IsZero() {
		t.Error("expected RegisteredAt to be reset")
	}
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.store(Embedding{float64(i)})
		}()
		go func() {
			defer wg.Done()
			_ = s.Embedding()
			_ = s.Registered()
		}()
	}
	wg.Wait()

	if !s.Registered() {
		t.Error("expected a registration after concurrent stores")
	}
}
