package leetcode

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
)

var errMissing = errors.New("missing")

type fakeSource struct {
	subs      []models.Submission
	listErr   error
	questions map[string]*Question
	solutions map[string]*Solution
	solErr    error
}

func (f *fakeSource) RecentAccepted(context.Context, int) ([]models.Submission, error) {
	return f.subs, f.listErr
}

func (f *fakeSource) Question(_ context.Context, slug string) (*Question, error) {
	q, ok := f.questions[slug]
	if !ok {
		return nil, fmt.Errorf("no question %q", slug)
	}
	return q, nil
}

func (f *fakeSource) SolutionCode(_ context.Context, slug string) (*Solution, error) {
	if f.solErr != nil {
		return nil, f.solErr
	}
	if s, ok := f.solutions[slug]; ok {
		return s, nil
	}
	return nil, ErrNoAcceptedSubmission
}

type fakeStore struct {
	bySlug map[string]models.Problem
	nextID int64
}

func (f *fakeStore) UpsertProblem(_ context.Context, p models.Problem) (int64, error) {
	if f.bySlug == nil {
		f.bySlug = map[string]models.Problem{}
	}
	if old, ok := f.bySlug[p.Slug]; ok {
		p.ID = old.ID
		p.AcceptedAt = old.AcceptedAt
	} else {
		f.nextID++
		p.ID = f.nextID
	}
	f.bySlug[p.Slug] = p
	return p.ID, nil
}

func (f *fakeStore) GetProblemBySlug(_ context.Context, slug string) (*models.Problem, error) {
	p, ok := f.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("problem %q: %w", slug, errMissing)
	}
	return &p, nil
}

func TestSync(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	src := &fakeSource{
		subs: []models.Submission{
			{Title: "Two Sum", Slug: "two-sum", Language: "python3", Timestamp: t2},
			{Title: "Stored", Slug: "stored", Timestamp: t2},
			{Title: "Two Sum", Slug: "two-sum", Language: "python3", Timestamp: t1},
			{Title: "Broken", Slug: "broken", Timestamp: t1},
		},
		questions: map[string]*Question{
			"two-sum": {Title: "Two Sum", Difficulty: models.DifficultyEasy, Topics: []string{"Array", "Hash Table"}, Statement: "<p>x</p>"},
		},
		solutions: map[string]*Solution{
			"two-sum": {Code: "return []", Language: "Python3"},
		},
	}
	store := &fakeStore{bySlug: map[string]models.Problem{
		"stored": {ID: 100, Slug: "stored", Title: "Stored", Code: "x"},
	}}

	rep, err := NewSyncer(src, store, nil, 20, errMissing).Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	want := SyncReport{Fetched: 4, Added: 1, Skipped: 1, Failed: 1}
	if rep != want {
		t.Fatalf("report = %+v, want %+v", rep, want)
	}
	p := store.bySlug["two-sum"]
	if !p.AcceptedAt.Equal(t1) {
		t.Fatalf("accepted at = %v, want earliest %v", p.AcceptedAt, t1)
	}
	if p.Code != "return []" || p.Language != "Python3" || p.Topics != "Array, Hash Table" {
		t.Fatalf("problem = %+v", p)
	}
}

func TestSync_WithoutSessionKeepsProblem(t *testing.T) {
	src := &fakeSource{
		subs:      []models.Submission{{Title: "Two Sum", Slug: "two-sum", Language: "go", Timestamp: time.Now()}},
		questions: map[string]*Question{"two-sum": {Title: "Two Sum", Difficulty: models.DifficultyEasy}},
		solErr:    ErrNoSession,
	}
	store := &fakeStore{}

	rep, err := NewSyncer(src, store, nil, 20, errMissing).Sync(context.Background())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if rep.Added != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if p := store.bySlug["two-sum"]; p.Code != "" || p.Language != "go" {
		t.Fatalf("problem = %+v", p)
	}

	// a second pass refreshes the code-less problem rather than adding it again
	rep, err = NewSyncer(src, store, nil, 20, errMissing).Sync(context.Background())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if rep.Added != 0 || rep.Updated != 1 {
		t.Fatalf("second report = %+v", rep)
	}
}

func TestSync_ListFailure(t *testing.T) {
	boom := &RateLimitError{}
	src := &fakeSource{listErr: boom}
	_, err := NewSyncer(src, &fakeStore{}, nil, 20, errMissing).Sync(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want rate limit", err)
	}
}
