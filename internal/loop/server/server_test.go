package server

import (
	"context"
	"testing"
	"time"

	"github.com/tomz197/somanaut/internal/logging"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Run(ctx)
	return s
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegisterUnregister(t *testing.T) {
	s := startServer(t)
	a := s.RegisterClient("alice")
	b := s.RegisterClient("bob")
	if a.ID == b.ID {
		t.Fatal("duplicate client ids")
	}
	eventually(t, func() bool { return s.Players() == 2 })

	s.UnregisterClient(a.ID)
	eventually(t, func() bool { return s.Players() == 1 })
	if _, ok := <-a.EventsCh; ok {
		t.Fatal("events channel still open after unregister")
	}
}

func TestShutdownNotifiesAndWaits(t *testing.T) {
	s := startServer(t)
	h := s.RegisterClient("alice")
	eventually(t, func() bool { return s.Players() == 1 })

	go func() {
		ev := <-h.EventsCh
		if ev.Type == EventServerShutdown {
			s.UnregisterClient(h.ID)
		}
	}()

	start := time.Now()
	s.Shutdown(5 * time.Second)
	if time.Since(start) > 2*time.Second {
		t.Fatal("Shutdown waited for the full timeout")
	}
	if s.Players() != 0 {
		t.Fatalf("players = %d", s.Players())
	}
}

func TestShutdownTimeout(t *testing.T) {
	s := startServer(t)
	s.RegisterClient("stuck")
	eventually(t, func() bool { return s.Players() == 1 })

	start := time.Now()
	s.Shutdown(300 * time.Millisecond)
	if time.Since(start) < 250*time.Millisecond {
		t.Fatal("Shutdown returned before timeout with clients connected")
	}
}

func TestHallOfFame(t *testing.T) {
	s := startServer(t)
	alice := s.RegisterClient("alice")
	bob := s.RegisterClient("bob")
	eventually(t, func() bool { return s.Players() == 2 })

	s.ReportScore(alice.ID, 120)
	s.ReportScore(bob.ID, 300)
	s.ReportScore(alice.ID, 80) // lower than alice's best, ignored
	s.ReportScore(bob.ID, 0)    // zero scores never rank

	eventually(t, func() bool { return len(s.TopScores()) == 2 })
	top := s.TopScores()
	if top[0].Username != "bob" || top[0].Score != 300 || top[1].Username != "alice" || top[1].Score != 120 {
		t.Fatalf("top = %+v", top)
	}
}

func TestLeaderboardLimitAndTies(t *testing.T) {
	b := leaderboard{limit: 3}
	b.insert(TopScoreEntry{Username: "a", Score: 50, clientID: 1})
	b.insert(TopScoreEntry{Username: "b", Score: 50, clientID: 2})
	b.insert(TopScoreEntry{Username: "c", Score: 70, clientID: 3})
	if b.insert(TopScoreEntry{Username: "d", Score: 10, clientID: 4}) {
		t.Fatal("entry below the board reported as a change")
	}
	if !b.insert(TopScoreEntry{Username: "a", Score: 90, clientID: 5}) {
		t.Fatal("improved score not recorded")
	}

	want := []string{"a", "c", "b"}
	if len(b.entries) != len(want) {
		t.Fatalf("entries = %+v", b.entries)
	}
	for i, name := range want {
		if b.entries[i].Username != name {
			t.Fatalf("entries = %+v, want order %v", b.entries, want)
		}
	}
}
