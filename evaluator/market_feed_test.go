package evaluator

import (
	"testing"

	"harmonichain/primitives"
	"harmonichain/protocol"
)

func seedWitness(t *testing.T, s *State, owner string) {
	t.Helper()
	if _, err := s.Witnesses.Create(func(w *WitnessRow) {
		w.Owner = owner
	}); err != nil {
		t.Fatalf("seed witness %q: %v", owner, err)
	}
}

// TestFeedPublishMedianIsOneSamplePerWitness covers spec §4.4's "the system
// feed is the median of the most recent feed per active witness": three
// witnesses each publish once, then one of them republishes a second,
// different rate. The median must still reflect one sample per witness
// (the republisher's latest), not be skewed by counting the same witness
// twice.
func TestFeedPublishMedianIsOneSamplePerWitness(t *testing.T) {
	s, native := newTestState(t)
	quote, err := s.Assets.Create(func(a *AssetRow) {
		a.Symbol = "USD"
		a.Precision = 6
		a.MaxSupply = 1_000_000_000_000
	})
	if err != nil {
		t.Fatalf("create quote asset: %v", err)
	}

	seedWitness(t, s, "w1")
	seedWitness(t, s, "w2")
	seedWitness(t, s, "w3")

	publish := func(witness string, now uint64, rate int64) {
		t.Helper()
		op := &protocol.FeedPublishOperation{
			Publisher: witness,
			ExchangeRate: primitives.Price{
				Base:  primitives.NewAmount(native, rate),
				Quote: primitives.NewAmount(quote, 1_000_000),
			},
		}
		if err := s.applyFeedPublish(now, op); err != nil {
			t.Fatalf("applyFeedPublish(%s): %v", witness, err)
		}
	}

	publish("w1", 1000, 100)
	publish("w2", 1000, 200)
	publish("w3", 1000, 300)

	history, ok := s.findFeedHistory(native, quote)
	if !ok {
		t.Fatal("expected a feed history row to exist")
	}
	if got := history.CurrentMedian.Base.Value; got != 200 {
		t.Fatalf("median base value = %d, want 200 (the middle of 100/200/300)", got)
	}

	// w1 republishes repeatedly with a high rate; the median must move to
	// reflect w1's one latest sample, not be dragged by counting w1's old
	// entries alongside its new one.
	publish("w1", 1001, 900)
	publish("w1", 1002, 950)

	history, ok = s.findFeedHistory(native, quote)
	if !ok {
		t.Fatal("expected a feed history row to exist")
	}
	// Samples are now w1=950, w2=200, w3=300 -> median 300.
	if got := history.CurrentMedian.Base.Value; got != 300 {
		t.Fatalf("median base value after republish = %d, want 300", got)
	}
}

// TestRotateFeedWindowExpiresStaleWitnessSamples covers spec §4.4's 7-day
// window: a witness's sample that has aged out must stop contributing to
// the median once RotateFeedWindow runs. Witness feed state is seeded
// directly (rather than via applyFeedPublish) so the two witnesses' sample
// ages can be set independently of each other.
func TestRotateFeedWindowExpiresStaleWitnessSamples(t *testing.T) {
	s, native := newTestState(t)
	quote, err := s.Assets.Create(func(a *AssetRow) {
		a.Symbol = "USD"
		a.Precision = 6
		a.MaxSupply = 1_000_000_000_000
	})
	if err != nil {
		t.Fatalf("create quote asset: %v", err)
	}

	price := func(rate int64) primitives.Price {
		return primitives.Price{
			Base:  primitives.NewAmount(native, rate),
			Quote: primitives.NewAmount(quote, 1_000_000),
		}
	}

	if _, err := s.Witnesses.Create(func(w *WitnessRow) {
		w.Owner = "w1"
		w.FeedPrice = price(900)
		w.FeedTime = 1 // about to fall outside the window
	}); err != nil {
		t.Fatalf("seed w1: %v", err)
	}
	if _, err := s.Witnesses.Create(func(w *WitnessRow) {
		w.Owner = "w2"
		w.FeedPrice = price(100)
		w.FeedTime = feedWindowSeconds // comfortably inside the window
	}); err != nil {
		t.Fatalf("seed w2: %v", err)
	}

	// At this instant both samples are still live: median of 100 and 900.
	if err := s.RotateFeedWindow(feedWindowSeconds - 1); err != nil {
		t.Fatalf("RotateFeedWindow: %v", err)
	}
	history, ok := s.findFeedHistory(native, quote)
	if !ok {
		t.Fatal("expected a feed history row to exist")
	}
	if got := history.CurrentMedian.Base.Value; got != 900 {
		t.Fatalf("median base value with both samples live = %d, want 900", got)
	}

	// Advance past w1's window boundary; only w2's sample remains live.
	if err := s.RotateFeedWindow(feedWindowSeconds + 1); err != nil {
		t.Fatalf("RotateFeedWindow: %v", err)
	}
	history, ok = s.findFeedHistory(native, quote)
	if !ok {
		t.Fatal("expected the feed history row to still exist")
	}
	if got := history.CurrentMedian.Base.Value; got != 100 {
		t.Fatalf("median base value after window rotation = %d, want 100 (only w2 still live)", got)
	}
}
