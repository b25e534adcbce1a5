package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOpenCreatesSession(t *testing.T) {
	s := NewStore("secret", nil)

	for _, in := range []string{"", "not-a-uuid"} {
		id, st := s.Open(in)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("Open(%q) returned id %q: %v", in, id, err)
		}
		if st.IsGM || st.SelectedHex != nil || !st.ShowFog {
			t.Errorf("Open(%q) initial state = %+v", in, st)
		}
	}

	id, _ := s.Open("")
	again, _ := s.Open(id)
	if again != id {
		t.Errorf("reopening %q returned %q", id, again)
	}
}

func TestUnlockGM(t *testing.T) {
	flags := NewMemoryFlags()
	s := NewStore("secret", flags)
	id, _ := s.Open("")

	ok, err := s.UnlockGM(id, "wrong")
	if err != nil || ok {
		t.Fatalf("wrong key: %v, %v", ok, err)
	}
	if st, _ := s.Get(id); st.IsGM {
		t.Fatal("wrong key unlocked GM")
	}

	ok, err = s.UnlockGM(id, "secret")
	if err != nil || !ok {
		t.Fatalf("right key: %v, %v", ok, err)
	}
	if st, _ := s.Get(id); !st.IsGM {
		t.Error("GM not set after unlock")
	}
	if on, _ := flags.GMFlag(id); !on {
		t.Error("GM flag not persisted")
	}

	// A fresh store over the same flags restores GM for the same id.
	restored := NewStore("secret", flags)
	if _, st := restored.Open(id); !st.IsGM {
		t.Error("persisted flag not loaded on open")
	}

	if err := s.ResetGM(id); err != nil {
		t.Fatal(err)
	}
	if st, _ := s.Get(id); st.IsGM {
		t.Error("GM still set after reset")
	}
	if on, _ := flags.GMFlag(id); on {
		t.Error("flag still persisted after reset")
	}
}

func TestUnlockDisabledWithoutKey(t *testing.T) {
	s := NewStore("", nil)
	id, _ := s.Open("")
	if s.UnlockEnabled() {
		t.Error("unlock should be disabled")
	}
	if ok, _ := s.UnlockGM(id, ""); ok {
		t.Error("empty key must never unlock")
	}
}

func TestUnlockUnknownSession(t *testing.T) {
	s := NewStore("secret", nil)
	if _, err := s.UnlockGM(uuid.NewString(), "secret"); err == nil {
		t.Error("expected error for unknown session")
	}
}

type failingFlags struct{}

func (failingFlags) SetGMFlag(string, bool) error { return errors.New("disk full") }
func (failingFlags) GMFlag(string) (bool, error)  { return false, nil }

func TestUnlockPersistFailure(t *testing.T) {
	s := NewStore("secret", failingFlags{})
	id, _ := s.Open("")
	ok, err := s.UnlockGM(id, "secret")
	if err == nil || ok {
		t.Fatalf("got %v, %v; want persist error", ok, err)
	}
	if st, _ := s.Get(id); st.IsGM {
		t.Error("GM set despite persist failure")
	}
}

func TestSelectionAndFog(t *testing.T) {
	s := NewStore("secret", nil)
	id, _ := s.Open("")

	idx := 42
	if !s.SetSelectedHex(id, &idx) {
		t.Fatal("SetSelectedHex failed")
	}
	idx = 7 // caller's variable must not alias stored state
	if st, _ := s.Get(id); st.SelectedHex == nil || *st.SelectedHex != 42 {
		t.Errorf("selected = %v", st.SelectedHex)
	}
	s.SetSelectedHex(id, nil)
	if st, _ := s.Get(id); st.SelectedHex != nil {
		t.Error("selection not cleared")
	}

	if s.ToggleFog(id) {
		t.Error("first toggle should hide fog")
	}
	if !s.ToggleFog(id) {
		t.Error("second toggle should show fog")
	}
	if s.SetSelectedHex("missing", &idx) {
		t.Error("unknown session should not accept selection")
	}
}

type countingFlags struct {
	*MemoryFlags
	reads int
}

func (c *countingFlags) GMFlag(id string) (bool, error) {
	c.reads++
	return c.MemoryFlags.GMFlag(id)
}

func TestOpenIsBounded(t *testing.T) {
	flags := &countingFlags{MemoryFlags: NewMemoryFlags()}
	s := NewStore("secret", flags)
	s.maxSessions = 100

	for i := 0; i < 10000; i++ {
		s.Open("")
	}
	if n := s.Len(); n > 100 {
		t.Errorf("held %d sessions, cap is 100", n)
	}
	if flags.reads != 0 {
		t.Errorf("new anonymous sessions read the flag store %d times", flags.reads)
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore("secret", nil)
	s.maxSessions = 3
	s.idleTimeout = time.Hour
	s.now = func() time.Time { return now }

	stale, _ := s.Open("")
	s.Open("")
	now = now.Add(2 * time.Hour)
	active, _ := s.Open("")
	s.Open("") // store is full: both idle sessions go

	if _, ok := s.Get(stale); ok {
		t.Error("idle session still held")
	}
	if _, ok := s.Get(active); !ok {
		t.Error("recent session was dropped")
	}
	if n := s.Len(); n != 2 {
		t.Errorf("held %d sessions, want 2", n)
	}
}

func TestEvictedGMSessionReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore("secret", nil)
	s.maxSessions = 10
	s.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	gm, _ := s.Open("")
	if ok, err := s.UnlockGM(gm, "secret"); err != nil || !ok {
		t.Fatalf("unlock: %v, %v", ok, err)
	}
	for i := 0; i < 50; i++ {
		s.Open("")
	}
	if _, ok := s.Get(gm); ok {
		t.Fatal("expected the GM session to be evicted")
	}

	id, st := s.Open(gm)
	if id != gm || !st.IsGM {
		t.Errorf("reopened %q as %q with %+v, want GM", gm, id, st)
	}
}
