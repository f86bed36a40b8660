package liveness

import (
	"testing"
)

func TestRegistryCreateAndGet(t *testing.T) {
	registry := NewSessionRegistry(DefaultConfig())

	session, err := registry.Create("device-1", CreateOptions{NumChallenges: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	found, ok := registry.Get(session.ID())
	if !ok {
		t.Fatal("session not found after Create")
	}
	if found.ID() != session.ID() {
		t.Errorf("looked up session %s, want %s", found.ID(), session.ID())
	}
	if _, ok := registry.Get("01J0000000000000000000000"); ok {
		t.Error("lookup of an unknown id should miss")
	}
}

func TestRegistryCapacityCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxActiveSessions = 2
	registry := NewSessionRegistry(cfg)

	for i := 0; i < 2; i++ {
		if _, err := registry.Create("device-1", CreateOptions{NumChallenges: 1}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if _, err := registry.Create("device-1", CreateOptions{NumChallenges: 1}); err != ErrRegistryCapacity {
		t.Fatalf("Create over capacity returned %v, want ErrRegistryCapacity", err)
	}
}

func TestRegistryRemoveAbandonsLiveSession(t *testing.T) {
	registry := NewSessionRegistry(DefaultConfig())
	session, err := registry.Create("device-1", CreateOptions{NumChallenges: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	registry.Remove(session.ID())
	if !session.Phase().Terminal() {
		t.Fatal("removing a live session should run the eviction backstop")
	}
	if reason := session.FailureReason(); reason == nil || *reason != ReasonSessionExpired {
		t.Errorf("failure reason = %v, want %s", reason, ReasonSessionExpired)
	}
}

func TestRegistryRemoveTerminalSessionKeepsReason(t *testing.T) {
	registry := NewSessionRegistry(DefaultConfig())
	session, err := registry.Create("device-1", CreateOptions{NumChallenges: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	session.Abandon(ReasonSessionAbandoned)
	registry.Remove(session.ID())
	if reason := session.FailureReason(); reason == nil || *reason != ReasonSessionAbandoned {
		t.Errorf("failure reason = %v, want %s", reason, ReasonSessionAbandoned)
	}
}

func TestRegistrySessionsAreIndependent(t *testing.T) {
	registry := NewSessionRegistry(DefaultConfig())
	a, err := registry.Create("device-1", CreateOptions{NumChallenges: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := registry.Create("device-2", CreateOptions{NumChallenges: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID() == b.ID() {
		t.Fatal("two sessions share an id")
	}

	a.Abandon(ReasonSessionAbandoned)
	if b.Phase().Terminal() {
		t.Error("abandoning one session affected another")
	}
}
