package chats

import (
	"testing"
	"time"
)

func TestClockIsStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewClock(func() time.Time { return fixed })

	prev := clock.Next()
	for i := 0; i < 50; i++ {
		next := clock.Next()
		if next <= prev {
			t.Fatalf("expected %q > %q", next, prev)
		}
		prev = next
	}
}

func TestClockSortsLexicallyAcrossFractions(t *testing.T) {
	times := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 5, 100_000_000, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 5, 120_000_000, time.UTC),
	}
	i := 0
	clock := NewClock(func() time.Time { v := times[i]; i++; return v })

	a, b := clock.Next(), clock.Next()
	if a >= b {
		t.Fatalf("expected %q < %q", a, b)
	}
	if _, err := time.Parse(time.RFC3339Nano, a); err != nil {
		t.Fatalf("timestamp %q is not RFC3339: %v", a, err)
	}
}

func TestSessionKeys(t *testing.T) {
	if got := DocumentSessionKey("1-a.pdf"); got != "pdf#1-a.pdf" {
		t.Fatalf("unexpected document key %q", got)
	}
	if got := GeneralSessionKey("  "); got != GeneralSession {
		t.Fatalf("expected general session, got %q", got)
	}
	if got := GeneralSessionKey("s1"); got != "s1" {
		t.Fatalf("expected s1, got %q", got)
	}
}
