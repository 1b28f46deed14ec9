package session

import (
	"testing"
	"time"

	"review-eval-app/internal/dataset"
)

func TestOrderStableWithinSession(t *testing.T) {
	st := NewStore(time.Hour)
	s := st.Create("u1")

	first := s.Order("p1")
	for i := 0; i < 20; i++ {
		if got := s.Order("p1"); got != first {
			t.Fatalf("order changed on access %d: %v vs %v", i, got, first)
		}
	}
}

func TestOrderIsUniformAcrossSessions(t *testing.T) {
	st := NewStore(time.Hour)

	counts := map[[2]dataset.Variant]int{}
	const trials = 400
	for i := 0; i < trials; i++ {
		counts[st.Create("u1").Order("p1")]++
	}

	forward := [2]dataset.Variant{dataset.Variant53, dataset.Variant55}
	reversed := [2]dataset.Variant{dataset.Variant55, dataset.Variant53}
	if counts[forward]+counts[reversed] != trials {
		t.Fatalf("unexpected orderings observed: %v", counts)
	}
	// Loose bounds; a fair coin stays inside these with overwhelming odds.
	for _, order := range [][2]dataset.Variant{forward, reversed} {
		if counts[order] < trials/4 || counts[order] > 3*trials/4 {
			t.Errorf("ordering %v drawn %d of %d times", order, counts[order], trials)
		}
	}
}

func TestRatingsPersistPerSession(t *testing.T) {
	st := NewStore(time.Hour)
	s := st.Create("u1")

	if got := s.Rating("p1_5_3_Summary"); got != "" {
		t.Errorf("untouched control should be empty, got %q", got)
	}
	s.SetRating("p1_5_3_Summary", "Mostly Agree")
	if got := s.Rating("p1_5_3_Summary"); got != "Mostly Agree" {
		t.Errorf("rating not stored: %q", got)
	}

	other := st.Create("u2")
	if got := other.Rating("p1_5_3_Summary"); got != "" {
		t.Errorf("ratings leaked across sessions: %q", got)
	}
}

func TestGetUnknownToken(t *testing.T) {
	st := NewStore(time.Hour)
	if _, ok := st.Get("missing"); ok {
		t.Error("unknown token should not resolve")
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	st := NewStore(10 * time.Millisecond)
	s := st.Create("u1")

	time.Sleep(20 * time.Millisecond)
	if n := st.Sweep(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if _, ok := st.Get(s.Token); ok {
		t.Error("evicted session should be gone")
	}
}
