package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/review"
)

var (
	day1  = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2  = day1.AddDate(0, 0, 1)
	today = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "problems.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func mustUpsert(t *testing.T, store *Store, slug string, d models.Difficulty, accepted time.Time) int64 {
	t.Helper()
	id, err := store.UpsertProblem(context.Background(), models.Problem{
		Title:      slug,
		Slug:       slug,
		Difficulty: d,
		Code:       "class Solution: pass",
		Language:   "python3",
		AcceptedAt: accepted,
	})
	if err != nil {
		t.Fatalf("upsert %s: %v", slug, err)
	}
	return id
}

func slugs(ps []models.Problem) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Slug
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestOpen_ReappliesMigrationsIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problems.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustUpsert(t, first, "two-sum", models.DifficultyEasy, day1)
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	var applied int
	if err := second.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Fatalf("applied migrations = %d, want 2", applied)
	}
	n, err := second.ProblemCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("problems = %d, want 1", n)
	}
}

func TestUpsertProblem_KeepsIdentityAndReviewState(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	id := mustUpsert(t, store, "two-sum", models.DifficultyEasy, day1)
	if err := store.SetExplanation(ctx, id, "Uses a hash map"); err != nil {
		t.Fatalf("set explanation: %v", err)
	}
	if err := store.SetLastReviewed(ctx, id, day2); err != nil {
		t.Fatalf("set last reviewed: %v", err)
	}

	again, err := store.UpsertProblem(ctx, models.Problem{
		Title:      "Two Sum",
		Slug:       "two-sum",
		Difficulty: models.DifficultyUnknown,
		Topics:     "Array, Hash Table",
		AcceptedAt: day2.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if again != id {
		t.Fatalf("id = %d, want %d", again, id)
	}

	p, err := store.GetProblem(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Title != "Two Sum" || p.Topics != "Array, Hash Table" {
		t.Fatalf("metadata not refreshed: %+v", p)
	}
	if p.Difficulty != models.DifficultyEasy {
		t.Fatalf("difficulty = %q, want Easy kept", p.Difficulty)
	}
	if !p.AcceptedAt.Equal(day1) {
		t.Fatalf("accepted at = %v, want %v", p.AcceptedAt, day1)
	}
	if p.LastReviewed == nil || !p.LastReviewed.Equal(day2) {
		t.Fatalf("last reviewed = %v, want %v", p.LastReviewed, day2)
	}
	if p.Explanation == nil || *p.Explanation != "Uses a hash map" {
		t.Fatalf("explanation = %v, want kept", p.Explanation)
	}
	if p.Code != "class Solution: pass" {
		t.Fatalf("code = %q, want kept when re-ingested without code", p.Code)
	}
}

func TestUpsertProblem_NewCodeClearsExplanation(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	id := mustUpsert(t, store, "two-sum", models.DifficultyEasy, day1)
	if err := store.SetExplanation(ctx, id, "old"); err != nil {
		t.Fatalf("set explanation: %v", err)
	}
	if _, err := store.UpsertProblem(ctx, models.Problem{
		Title: "Two Sum", Slug: "two-sum", Code: "func twoSum() {}", Language: "golang",
	}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	p, err := store.GetProblemBySlug(ctx, "two-sum")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Explanation != nil {
		t.Fatalf("explanation = %q, want nil", *p.Explanation)
	}
	if p.Language != "golang" {
		t.Fatalf("language = %q, want golang", p.Language)
	}
}

func TestUpsertProblem_Validation(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.UpsertProblem(context.Background(), models.Problem{Slug: "x"}); err == nil {
		t.Fatal("expected error for missing title")
	}
	if _, err := store.UpsertProblem(context.Background(), models.Problem{Title: "x"}); err == nil {
		t.Fatal("expected error for missing slug")
	}
}

func TestGetProblem_NotFound(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.GetProblem(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetProblemBySlug(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.SetLastReviewed(context.Background(), 42, today); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListUnreviewedToday_Ordering(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	mustUpsert(t, store, "weird", models.DifficultyUnknown, day1)
	mustUpsert(t, store, "hard", models.DifficultyHard, day1)
	stale := mustUpsert(t, store, "easy-stale", models.DifficultyEasy, day1)
	mustUpsert(t, store, "easy-new-late", models.DifficultyEasy, day2)
	mustUpsert(t, store, "easy-new-early", models.DifficultyEasy, day1)
	mustUpsert(t, store, "medium", models.DifficultyMedium, day1)

	if err := store.SetLastReviewed(ctx, stale, day2); err != nil {
		t.Fatalf("set last reviewed: %v", err)
	}

	got, err := store.ListUnreviewedToday(ctx, today, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"easy-new-early", "easy-new-late", "easy-stale", "medium", "hard", "weird"}
	if !equalStrings(slugs(got), want) {
		t.Fatalf("order = %v, want %v", slugs(got), want)
	}

	limited, err := store.ListUnreviewedToday(ctx, today, 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited len = %d, want 2", len(limited))
	}
}

func TestListCandidates_ExcludeOnlyTodaysEvents(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	a := mustUpsert(t, store, "a", models.DifficultyEasy, day1)
	b := mustUpsert(t, store, "b", models.DifficultyHard, day2)
	mustUpsert(t, store, "c", models.DifficultyMedium, day2.Add(time.Hour))

	if err := store.AppendReviewEvent(ctx, a, today.Add(2*time.Hour)); err != nil {
		t.Fatalf("append today: %v", err)
	}
	if err := store.AppendReviewEvent(ctx, b, today.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("append yesterday: %v", err)
	}

	priority, err := store.ListUnreviewedToday(ctx, today, 10)
	if err != nil {
		t.Fatalf("priority: %v", err)
	}
	if want := []string{"c", "b"}; !equalStrings(slugs(priority), want) {
		t.Fatalf("priority = %v, want %v", slugs(priority), want)
	}

	fifo, err := store.ListFifoCandidates(ctx, today, 10)
	if err != nil {
		t.Fatalf("fifo: %v", err)
	}
	if want := []string{"b", "c"}; !equalStrings(slugs(fifo), want) {
		t.Fatalf("fifo = %v, want %v", slugs(fifo), want)
	}
}

func TestDayBoundaryFollowsLocation(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	loc := time.FixedZone("UTC+5", 5*60*60)

	id := mustUpsert(t, store, "a", models.DifficultyEasy, day1)
	// 20:00 UTC on the 9th is 01:00 on the 10th at UTC+5.
	if err := store.AppendReviewEvent(ctx, id, time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("append: %v", err)
	}

	inZone, err := store.ListUnreviewedToday(ctx, time.Date(2026, 3, 10, 8, 0, 0, 0, loc), 10)
	if err != nil {
		t.Fatalf("list in zone: %v", err)
	}
	if len(inZone) != 0 {
		t.Fatalf("in UTC+5 the event falls on the 10th, got %v", slugs(inZone))
	}

	inUTC, err := store.ListUnreviewedToday(ctx, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), 10)
	if err != nil {
		t.Fatalf("list in utc: %v", err)
	}
	if len(inUTC) != 1 {
		t.Fatalf("in UTC the event falls on the 9th, got %v", slugs(inUTC))
	}
}

func TestSetLastReviewed_ClampsToAccepted(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	id := mustUpsert(t, store, "a", models.DifficultyEasy, day2)

	if err := store.SetLastReviewed(ctx, id, day1); err != nil {
		t.Fatalf("set: %v", err)
	}
	p, err := store.GetProblem(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !p.LastReviewed.Equal(day2) {
		t.Fatalf("last reviewed = %v, want accepted %v", p.LastReviewed, day2)
	}
}

func TestRecorderAgainstStore_Transactional(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	a := mustUpsert(t, store, "a", models.DifficultyEasy, day1)

	err := review.NewRecorder(store).RecordReviewed(ctx, []int64{a, 999}, today)
	if !errors.Is(err, review.ErrPartialWrite) {
		t.Fatalf("err = %v, want ErrPartialWrite", err)
	}
	events, err := store.ListReviewEvents(ctx, a)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d, want 0 after rollback", len(events))
	}
	p, err := store.GetProblem(ctx, a)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.LastReviewed != nil {
		t.Fatalf("last reviewed = %v, want nil after rollback", p.LastReviewed)
	}
}

func TestRecorderAgainstStore_EndToEnd(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	a := mustUpsert(t, store, "a", models.DifficultyEasy, day1)
	mustUpsert(t, store, "b", models.DifficultyMedium, day1)
	c := mustUpsert(t, store, "c", models.DifficultyEasy, day2)

	engine := review.NewEngine(store)
	got, err := engine.SelectForToday(ctx, 2, today)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if want := []string{"a", "c"}; !equalStrings(slugs(got), want) {
		t.Fatalf("selected = %v, want %v", slugs(got), want)
	}

	rec := review.NewRecorder(store)
	t1 := today
	t2 := today.Add(time.Minute)
	if err := rec.RecordReviewed(ctx, []int64{a, c}, t1); err != nil {
		t.Fatalf("record t1: %v", err)
	}
	if err := rec.RecordReviewed(ctx, []int64{a, c}, t2); err != nil {
		t.Fatalf("record t2: %v", err)
	}
	for _, id := range []int64{a, c} {
		p, err := store.GetProblem(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !p.LastReviewed.Equal(t2) {
			t.Fatalf("problem %d last reviewed = %v, want %v", id, p.LastReviewed, t2)
		}
		events, err := store.ListReviewEvents(ctx, id)
		if err != nil {
			t.Fatalf("events: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("problem %d events = %d, want 2", id, len(events))
		}
	}

	next, err := engine.SelectForToday(ctx, 2, today)
	if err != nil {
		t.Fatalf("select after record: %v", err)
	}
	if want := []string{"b"}; !equalStrings(slugs(next), want) {
		t.Fatalf("selected after record = %v, want %v", slugs(next), want)
	}

	stats, err := store.ReviewStats(ctx, today)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 4 || stats.ReviewedToday != 2 || stats.NeverReviewed != 1 || stats.ReviewsLast7Days != 4 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.CountByDifficulty[models.DifficultyEasy] != 2 || stats.CountByDifficulty[models.DifficultyMedium] != 1 {
		t.Fatalf("count by difficulty = %v", stats.CountByDifficulty)
	}
}
