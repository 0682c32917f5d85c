package catalog

import (
	"math/rand"
	"sort"
	"sync"

	"quizlive/internal/domain"
)

// fallbackTopics caps how many sibling topics compete when the sticky topic
// runs dry.
const fallbackTopics = 3

// Selector picks the next unserved question for a participant. Selection is
// deliberately randomized for variety across participants; the random source
// is injected so tests can seed it.
type Selector struct {
	catalog *Catalog

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSelector(c *Catalog, rnd *rand.Rand) *Selector {
	return &Selector{catalog: c, rnd: rnd}
}

// Next returns one question for the given level that is not in served,
// or ok=false when every eligible question has been shown (exhaustion, a
// normal outcome).
//
// The session overlay, when it has entries for the level, takes priority
// over the global catalog: the pick is made among unserved overlay entries
// (further narrowed to topic when one is given) and an exhausted overlay
// ends the search without falling back to the global catalog. An empty
// overlay falls through.
//
// In the global catalog the sticky topic is tried first; when it has no
// unserved questions left, the top three sibling topics by unserved count
// compete in a weighted draw (a topic with twice the unserved questions is
// twice as likely), then the question is drawn uniformly within the winner.
func (s *Selector) Next(level domain.Level, topic string, served map[string]struct{}, overlay []domain.Question) (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(overlay) > 0 {
		return pickOverlay(overlay, topic, served, s.rnd)
	}

	topics := s.catalog.TopicsFor(level)
	if len(topics) == 0 {
		return domain.Question{}, false
	}

	if topic == "" {
		topic = topics[s.rnd.Intn(len(topics))]
	}

	if q, ok := pickUnserved(s.catalog.QuestionsFor(level, topic), served, s.rnd); ok {
		return q, true
	}

	// Sticky topic exhausted: weigh the siblings by unserved count.
	var candidates []topicCount
	for _, other := range topics {
		if other == topic {
			continue
		}
		unserved := countUnserved(s.catalog.QuestionsFor(level, other), served)
		if unserved > 0 {
			candidates = append(candidates, topicCount{Topic: other, Count: unserved})
		}
	}
	winner, ok := weightedPick(candidates, s.rnd)
	if !ok {
		return domain.Question{}, false
	}
	return pickUnserved(s.catalog.QuestionsFor(level, winner), served, s.rnd)
}

func pickOverlay(overlay []domain.Question, topic string, served map[string]struct{}, rnd *rand.Rand) (domain.Question, bool) {
	eligible := make([]domain.Question, 0, len(overlay))
	for _, q := range overlay {
		if topic != "" && q.Topic != topic {
			continue
		}
		if _, seen := served[q.Hash()]; seen {
			continue
		}
		eligible = append(eligible, q)
	}
	if len(eligible) == 0 {
		return domain.Question{}, false
	}
	return eligible[rnd.Intn(len(eligible))], true
}

func pickUnserved(questions []domain.Question, served map[string]struct{}, rnd *rand.Rand) (domain.Question, bool) {
	eligible := questions[:0:0]
	for _, q := range questions {
		if _, seen := served[q.Hash()]; !seen {
			eligible = append(eligible, q)
		}
	}
	if len(eligible) == 0 {
		return domain.Question{}, false
	}
	return eligible[rnd.Intn(len(eligible))], true
}

func countUnserved(questions []domain.Question, served map[string]struct{}) int {
	n := 0
	for _, q := range questions {
		if _, seen := served[q.Hash()]; !seen {
			n++
		}
	}
	return n
}

// topicCount pairs a topic with its number of unserved questions.
type topicCount struct {
	Topic string
	Count int
}

// weightedPick draws one topic among the top fallbackTopics candidates by
// count, with probability proportional to count. Pure given the candidates
// and the random source.
func weightedPick(candidates []topicCount, rnd *rand.Rand) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Count > candidates[j].Count
	})
	if len(candidates) > fallbackTopics {
		candidates = candidates[:fallbackTopics]
	}

	total := 0
	for _, c := range candidates {
		total += c.Count
	}
	n := rnd.Intn(total)
	for _, c := range candidates {
		n -= c.Count
		if n < 0 {
			return c.Topic, true
		}
	}
	return candidates[len(candidates)-1].Topic, true
}
