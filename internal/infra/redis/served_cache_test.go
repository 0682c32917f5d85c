package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizlive/internal/app"
	"quizlive/internal/domain"
	"quizlive/internal/infra/memory"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

// countingStore counts reads of the served history so tests can tell a
// cache hit from a store hit.
type countingStore struct {
	app.Store
	calls int
}

func (s *countingStore) ServedHashes(ctx context.Context, participantID string) ([]string, error) {
	s.calls++
	return s.Store.ServedHashes(ctx, participantID)
}

func serveQuestion(t *testing.T, store app.Store, participantID, text string) string {
	t.Helper()
	q := domain.Question{
		Topic:       "Reti",
		Level:       domain.LevelBase,
		Question:    text,
		Options:     []string{"A", "B"},
		AnswerIndex: 0,
	}
	err := store.RecordServe(context.Background(), domain.ServedQuestion{
		ParticipantID: participantID,
		QuestionHash:  q.Hash(),
		Question:      q,
	}, domain.NewProgress(participantID, "s1"))
	if err != nil {
		t.Fatalf("record serve: %v", err)
	}
	return q.Hash()
}

func TestServedHashesFillsSetOnMiss(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	inner := &countingStore{Store: memory.NewStore()}
	h1 := serveQuestion(t, inner, "p1", "uno")
	h2 := serveQuestion(t, inner, "p1", "due")

	cache := NewServedCache(inner, newClient(mr), time.Minute)
	inner.calls = 0

	hashes, err := cache.ServedHashes(context.Background(), "p1")
	if err != nil {
		t.Fatalf("served hashes: %v", err)
	}
	sort.Strings(hashes)
	want := []string{h1, h2}
	sort.Strings(want)
	if len(hashes) != 2 || hashes[0] != want[0] || hashes[1] != want[1] {
		t.Fatalf("hashes = %v, want %v", hashes, want)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one store read on miss, got %d", inner.calls)
	}

	// Second read comes from the set.
	if _, err := cache.ServedHashes(context.Background(), "p1"); err != nil {
		t.Fatalf("served hashes: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected cache hit, store calls = %d", inner.calls)
	}
	if ttl := mr.TTL("quiz:served:p1"); ttl <= 0 {
		t.Fatalf("cached set must expire, ttl = %v", ttl)
	}
}

func TestRecordServeKeepsSetCoherent(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	inner := &countingStore{Store: memory.NewStore()}
	cache := NewServedCache(inner, newClient(mr), time.Minute)

	h := serveQuestion(t, cache, "p1", "uno")

	members, err := mr.SMembers("quiz:served:p1")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 1 || members[0] != h {
		t.Fatalf("set = %v, want [%s]", members, h)
	}

	// The filled set means the next read never touches the store.
	inner.calls = 0
	if _, err := cache.ServedHashes(context.Background(), "p1"); err != nil {
		t.Fatalf("served hashes: %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected cache hit after write-through, store calls = %d", inner.calls)
	}
}

func TestResetParticipantDropsKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	inner := memory.NewStore()
	cache := NewServedCache(inner, newClient(mr), time.Minute)

	serveQuestion(t, cache, "p1", "uno")
	if !mr.Exists("quiz:served:p1") {
		t.Fatalf("set should exist after a serve")
	}

	if err := cache.ResetParticipant(context.Background(), "p1", "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if mr.Exists("quiz:served:p1") {
		t.Fatalf("reset must drop the cached set")
	}
	hashes, err := cache.ServedHashes(context.Background(), "p1")
	if err != nil {
		t.Fatalf("served hashes: %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("history must be empty after reset, got %v", hashes)
	}
}

func TestEmptyHistoryReadsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	inner := &countingStore{Store: memory.NewStore()}
	cache := NewServedCache(inner, newClient(mr), time.Minute)

	hashes, err := cache.ServedHashes(context.Background(), "p1")
	if err != nil {
		t.Fatalf("served hashes: %v", err)
	}
	if len(hashes) != 0 {
		t.Fatalf("expected no hashes, got %v", hashes)
	}
	// Empty histories are never cached; each read consults the store.
	if _, err := cache.ServedHashes(context.Background(), "p1"); err != nil {
		t.Fatalf("served hashes: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("empty history must read through, store calls = %d", inner.calls)
	}
}
