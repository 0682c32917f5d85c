package catalog

import (
	"sort"
	"sync"

	"quizlive/internal/domain"
)

// Catalog is the in-memory question store, grouped by level and topic.
// Grouping is by exact string equality: topics differing in case or
// whitespace are distinct buckets. Reads are safe for concurrent use;
// ingestion swaps state under the write lock so readers never observe a
// half-populated topic list.
type Catalog struct {
	mu     sync.RWMutex
	levels map[domain.Level]map[string][]domain.Question
	hashes map[string]struct{}
}

func New() *Catalog {
	return &Catalog{
		levels: make(map[domain.Level]map[string][]domain.Question),
		hashes: make(map[string]struct{}),
	}
}

// Put adds one question, deduplicating on content hash. It reports whether
// the question was actually added.
func (c *Catalog) Put(q domain.Question) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.putLocked(q)
}

// PutAll ingests a batch atomically and returns how many survived dedup.
func (c *Catalog) PutAll(questions []domain.Question) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, q := range questions {
		if c.putLocked(q) {
			added++
		}
	}
	return added
}

func (c *Catalog) putLocked(q domain.Question) bool {
	hash := q.Hash()
	if _, dup := c.hashes[hash]; dup {
		return false
	}
	topics, ok := c.levels[q.Level]
	if !ok {
		topics = make(map[string][]domain.Question)
		c.levels[q.Level] = topics
	}
	topics[q.Topic] = append(topics[q.Topic], q)
	c.hashes[hash] = struct{}{}
	return true
}

// QuestionsFor returns a copy of the questions at (level, topic).
func (c *Catalog) QuestionsFor(level domain.Level, topic string) []domain.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	questions := c.levels[level][topic]
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out
}

// TopicsFor returns the sorted topic names that have at least one question
// at the given level.
func (c *Catalog) TopicsFor(level domain.Level) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	topics := make([]string, 0, len(c.levels[level]))
	for topic, questions := range c.levels[level] {
		if len(questions) > 0 {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// Len returns the total number of questions across all levels.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hashes)
}

// Empty reports whether the catalog holds no questions at all.
func (c *Catalog) Empty() bool {
	return c.Len() == 0
}
