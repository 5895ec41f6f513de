package progress

import "testing"

func mustTracker(t *testing.T, r int, easy bool) Tracker {
	t.Helper()
	tr, err := NewTracker(r, easy)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr
}

func TestNewTrackerRejectsNonPositiveRequirement(t *testing.T) {
	for _, r := range []int{0, -3} {
		if _, err := NewTracker(r, false); err == nil {
			t.Fatalf("expected error for requirement %d", r)
		}
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		count int
		want  Tier
	}{
		{0, Bronze}, {2, Bronze}, {3, Silver}, {5, Silver},
		{6, Gold}, {8, Gold}, {9, Mastered}, {12, Mastered},
	}
	for _, tc := range cases {
		if got := TierFor(tc.count, 3); got != tc.want {
			t.Fatalf("count %d: expected %s, got %s", tc.count, tc.want, got)
		}
	}
}

func TestRecordCorrectScenarioA(t *testing.T) {
	tr := mustTracker(t, 3, false)
	p := Progress{}
	wantTiers := []Tier{Bronze, Bronze, Silver}
	wantSignals := []Signal{SignalNone, SignalNone, SignalTierUp}
	for i := range wantTiers {
		res := tr.RecordCorrect(p)
		p = res.Progress
		if p.Count != i+1 {
			t.Fatalf("step %d: expected count %d, got %d", i, i+1, p.Count)
		}
		if res.After != wantTiers[i] {
			t.Fatalf("step %d: expected tier %s, got %s", i, wantTiers[i], res.After)
		}
		if res.Signal != wantSignals[i] {
			t.Fatalf("step %d: expected signal %s, got %s", i, wantSignals[i], res.Signal)
		}
	}
}

func TestRecordCorrectMonotonic(t *testing.T) {
	for _, r := range []int{1, 3, 5} {
		tr := mustTracker(t, r, false)
		p := Progress{}
		prev := Bronze
		for i := 0; i < 3*r; i++ {
			res := tr.RecordCorrect(p)
			if res.Progress.Count != p.Count+1 {
				t.Fatalf("r=%d: count must grow by one", r)
			}
			if res.After < prev || res.After > prev+1 {
				t.Fatalf("r=%d: tier moved from %s to %s", r, prev, res.After)
			}
			prev = res.After
			p = res.Progress
		}
		if prev != Mastered {
			t.Fatalf("r=%d: expected mastered after %d answers, got %s", r, 3*r, prev)
		}
	}
}

func TestRecordCorrectMasteredSignal(t *testing.T) {
	tr := mustTracker(t, 3, false)
	res := tr.RecordCorrect(Progress{Count: 8})
	if res.Signal != SignalMastered || res.After != Mastered || res.Progress.Count != 9 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRecordIncorrectDemotion(t *testing.T) {
	tr := mustTracker(t, 3, false)
	cases := []struct {
		name      string
		count     int
		wantCount int
		wantTier  Tier
		wantSig   Signal
	}{
		{"gold to silver", 6, 5, Silver, SignalDemoted},
		{"high gold", 8, 5, Silver, SignalDemoted},
		{"silver to bronze", 4, 2, Bronze, SignalDemoted},
		{"bronze stays", 2, 2, Bronze, SignalMiss},
		{"zero stays", 0, 0, Bronze, SignalMiss},
	}
	for _, tc := range cases {
		res := tr.RecordIncorrect(Progress{Count: tc.count}, true)
		if res.Progress.Count != tc.wantCount || res.After != tc.wantTier || res.Signal != tc.wantSig {
			t.Fatalf("%s: unexpected result %+v", tc.name, res)
		}
		if res.Before-res.After > 1 {
			t.Fatalf("%s: demoted more than one tier", tc.name)
		}
	}
}

func TestRecordIncorrectDisarmedOrEasy(t *testing.T) {
	tr := mustTracker(t, 3, false)
	if res := tr.RecordIncorrect(Progress{Count: 7}, false); res.Progress.Count != 7 || res.Signal != SignalMiss {
		t.Fatalf("disarmed miss must not mutate: %+v", res)
	}
	easy := mustTracker(t, 3, true)
	if res := easy.RecordIncorrect(Progress{Count: 7}, true); res.Progress.Count != 7 || res.Changed() {
		t.Fatalf("easy mode must not mutate: %+v", res)
	}
}

func TestDemotedWordRepromotesOnNextCorrect(t *testing.T) {
	tr := mustTracker(t, 4, false)
	res := tr.RecordIncorrect(Progress{Count: 9}, true)
	if res.After != Silver {
		t.Fatalf("expected silver, got %s", res.After)
	}
	next := tr.RecordCorrect(res.Progress)
	if next.After != Gold || next.Signal != SignalTierUp {
		t.Fatalf("expected immediate re-promotion, got %+v", next)
	}
}

func TestFraction(t *testing.T) {
	tr := mustTracker(t, 4, false)
	if got := tr.Fraction(Progress{Count: 5}); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}
	if got := tr.Fraction(Progress{Count: 12}); got != 1 {
		t.Fatalf("expected 1 for mastered, got %v", got)
	}
}
