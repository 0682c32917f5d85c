package catalog

import (
	"math/rand"
	"testing"

	"quizlive/internal/domain"
)

func newTestSelector(c *Catalog) *Selector {
	return NewSelector(c, rand.New(rand.NewSource(42)))
}

func servedSet(hashes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}

func TestNextNeverRepeatsUntilExhaustion(t *testing.T) {
	c := New()
	for _, text := range []string{"q1", "q2", "q3", "q4", "q5"} {
		c.Put(question("Reti", domain.LevelBase, text))
	}
	sel := newTestSelector(c)

	served := servedSet()
	for i := 0; i < 5; i++ {
		q, ok := sel.Next(domain.LevelBase, "", served, nil)
		if !ok {
			t.Fatalf("expected question %d before exhaustion", i+1)
		}
		if _, seen := served[q.Hash()]; seen {
			t.Fatalf("question %q repeated", q.Question)
		}
		served[q.Hash()] = struct{}{}
	}
	if _, ok := sel.Next(domain.LevelBase, "", served, nil); ok {
		t.Fatalf("expected exhaustion after all questions served")
	}
}

func TestNextSingleCandidateIsDeterministic(t *testing.T) {
	c := New()
	q1 := question("Reti", domain.LevelBase, "q1")
	q2 := question("Reti", domain.LevelBase, "q2")
	c.Put(q1)
	c.Put(q2)
	sel := newTestSelector(c)

	got, ok := sel.Next(domain.LevelBase, "Reti", servedSet(q1.Hash()), nil)
	if !ok || got.Question != "q2" {
		t.Fatalf("expected the only unserved question, got %+v ok=%v", got, ok)
	}
}

func TestNextWeightedFallbackDistribution(t *testing.T) {
	c := New()
	// topicA fully served; topicB has 2 unserved, topicC has 1.
	a1 := question("topicA", domain.LevelBase, "a1")
	c.Put(a1)
	c.Put(question("topicB", domain.LevelBase, "b1"))
	c.Put(question("topicB", domain.LevelBase, "b2"))
	c.Put(question("topicC", domain.LevelBase, "c1"))
	sel := newTestSelector(c)
	served := servedSet(a1.Hash())

	counts := map[string]int{}
	const trials = 3000
	for i := 0; i < trials; i++ {
		q, ok := sel.Next(domain.LevelBase, "topicA", served, nil)
		if !ok {
			t.Fatalf("expected fallback question")
		}
		if q.Topic == "topicA" {
			t.Fatalf("served topicA question returned")
		}
		counts[q.Topic]++
	}

	// topicB has twice the unserved count, so roughly twice the picks.
	ratio := float64(counts["topicB"]) / float64(counts["topicC"])
	if ratio < 1.6 || ratio > 2.5 {
		t.Fatalf("expected ~2:1 topicB:topicC, got %v (ratio %.2f)", counts, ratio)
	}
}

func TestNextFallbackSkipsExhaustedTopics(t *testing.T) {
	c := New()
	a1 := question("topicA", domain.LevelBase, "a1")
	b1 := question("topicB", domain.LevelBase, "b1")
	c1 := question("topicC", domain.LevelBase, "c1")
	c.Put(a1)
	c.Put(b1)
	c.Put(c1)
	sel := newTestSelector(c)

	// Everything except topicC is served: fallback must always land there.
	served := servedSet(a1.Hash(), b1.Hash())
	for i := 0; i < 20; i++ {
		q, ok := sel.Next(domain.LevelBase, "topicA", served, nil)
		if !ok || q.Topic != "topicC" {
			t.Fatalf("expected topicC, got %+v ok=%v", q, ok)
		}
	}
}

func TestNextOverlayTakesPriority(t *testing.T) {
	c := New()
	c.Put(question("Reti", domain.LevelBase, "global"))
	sel := newTestSelector(c)

	overlay := []domain.Question{question("Reti", domain.LevelBase, "overlay only")}
	q, ok := sel.Next(domain.LevelBase, "", servedSet(), overlay)
	if !ok || q.Question != "overlay only" {
		t.Fatalf("expected overlay question, got %+v ok=%v", q, ok)
	}
}

func TestNextOverlayExhaustedDoesNotFallBack(t *testing.T) {
	c := New()
	c.Put(question("Reti", domain.LevelBase, "global"))
	sel := newTestSelector(c)

	ov := question("Reti", domain.LevelBase, "overlay only")
	overlay := []domain.Question{ov}

	// Overlay has entries for the level but all are served: the search ends
	// without consulting the global catalog.
	if q, ok := sel.Next(domain.LevelBase, "", servedSet(ov.Hash()), overlay); ok {
		t.Fatalf("expected no question, got %+v", q)
	}

	// An empty overlay falls through to the global catalog instead.
	if _, ok := sel.Next(domain.LevelBase, "", servedSet(), nil); !ok {
		t.Fatalf("expected global fallback with no overlay")
	}
}

func TestNextUnknownLevelIsExhausted(t *testing.T) {
	c := New()
	c.Put(question("Reti", domain.LevelBase, "q1"))
	sel := newTestSelector(c)

	if _, ok := sel.Next(domain.LevelAvanzato, "", servedSet(), nil); ok {
		t.Fatalf("level without questions must be exhausted")
	}
}

func TestWeightedPickCapsAtThreeTopics(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	candidates := []topicCount{
		{"t1", 10}, {"t2", 8}, {"t3", 5}, {"t4", 100},
	}
	// t4 sorts first; t3 has the lowest count of the kept three, t1/t2/t4
	// stay. t3's original slot is cut.
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		cands := make([]topicCount, len(candidates))
		copy(cands, candidates)
		topic, ok := weightedPick(cands, rnd)
		if !ok {
			t.Fatalf("expected a pick")
		}
		seen[topic] = true
	}
	if seen["t3"] {
		t.Fatalf("t3 should never be picked, only the top three by count compete")
	}
	if !seen["t4"] || !seen["t1"] {
		t.Fatalf("expected high-count topics to appear, got %v", seen)
	}
}

func TestWeightedPickEmpty(t *testing.T) {
	if _, ok := weightedPick(nil, rand.New(rand.NewSource(1))); ok {
		t.Fatalf("no candidates means no pick")
	}
}
