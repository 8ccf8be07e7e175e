package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
)

func newTestClient(t *testing.T, srv *httptest.Server, session bool) *Client {
	t.Helper()
	cfg := Config{
		Username:   "alice",
		APIBase:    srv.URL,
		GraphQLURL: srv.URL + "/graphql",
		Timeout:    time.Second,
		MaxTries:   3,
	}
	if session {
		cfg.Session = "sess"
		cfg.CSRFToken = "csrf"
	}
	c, err := New(nil, cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestNew_RequiresUsername(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("expected error without username")
	}
}

func TestRecentAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alice/acSubmission" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q", got)
		}
		_, _ = w.Write([]byte(`{"count":3,"submission":[
			{"title":"Two Sum","titleSlug":"two-sum","timestamp":"1700000000","statusDisplay":"Accepted","lang":"python3"},
			{"title":"Bad","titleSlug":"bad","timestamp":"1700000001","statusDisplay":"Wrong Answer","lang":"go"},
			{"title":"LRU Cache","titleSlug":"lru-cache","timestamp":"1690000000","statusDisplay":"Accepted","lang":"golang"}
		]}`))
	}))
	defer srv.Close()

	subs, err := newTestClient(t, srv, false).RecentAccepted(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subs = %d, want 2", len(subs))
	}
	if subs[0].Slug != "two-sum" || subs[0].Language != "python3" {
		t.Fatalf("first = %+v", subs[0])
	}
	if !subs[0].Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("timestamp = %v", subs[0].Timestamp)
	}
}

func TestRecentAccepted_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, false).RecentAccepted(context.Background(), 5)
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %v, want *RateLimitError", err)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestRecentAccepted_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"submission":[]}`))
	}))
	defer srv.Close()

	subs, err := newTestClient(t, srv, false).RecentAccepted(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(subs) != 0 || calls.Load() != 2 {
		t.Fatalf("subs = %v, calls = %d", subs, calls.Load())
	}
}

func TestQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/select" || r.URL.Query().Get("titleSlug") != "two-sum" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"questionTitle":"Two Sum","difficulty":"Easy","question":"<p>Find two numbers.</p>",
			"topicTags":[{"name":"Array","slug":"array"},{"name":"Hash Table","slug":"hash-table"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, false)
	q, err := c.Question(context.Background(), "two-sum")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if q.Title != "Two Sum" || q.Difficulty != models.DifficultyEasy || q.Statement != "<p>Find two numbers.</p>" {
		t.Fatalf("question = %+v", q)
	}
	if len(q.Topics) != 2 || q.Topics[1] != "Hash Table" {
		t.Fatalf("topics = %v", q.Topics)
	}

	_, err = c.Question(context.Background(), "missing")
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 HTTPError", err)
	}
}

func TestSolutionCode_NoSession(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := newTestClient(t, srv, false).SolutionCode(context.Background(), "two-sum"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestSolutionCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/graphql" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("X-CSRFToken") != "csrf" {
			t.Errorf("missing csrf header")
		}
		if ck, err := r.Cookie("LEETCODE_SESSION"); err != nil || ck.Value != "sess" {
			t.Errorf("missing session cookie")
		}
		var req struct {
			OperationName string         `json:"operationName"`
			Variables     map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.OperationName {
		case "submissionList":
			_, _ = w.Write([]byte(`{"data":{"submissionList":{"submissions":[
				{"id":"11","statusDisplay":"Wrong Answer"},
				{"id":"10","statusDisplay":"Accepted"}]}}}`))
		case "submissionDetails":
			if req.Variables["submissionId"] != float64(10) {
				t.Errorf("submissionId = %v", req.Variables["submissionId"])
			}
			_, _ = w.Write([]byte(`{"data":{"submissionDetails":{"code":"return nil","lang":{"name":"golang","verboseName":"Go"}}}}`))
		default:
			t.Errorf("unexpected operation %q", req.OperationName)
		}
	}))
	defer srv.Close()

	sol, err := newTestClient(t, srv, true).SolutionCode(context.Background(), "two-sum")
	if err != nil {
		t.Fatalf("solution: %v", err)
	}
	if sol.Code != "return nil" || sol.Language != "Go" {
		t.Fatalf("solution = %+v", sol)
	}
}

func TestSolutionCode_NoneAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"submissionList":{"submissions":[]}}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, true).SolutionCode(context.Background(), "two-sum")
	if !errors.Is(err, ErrNoAcceptedSubmission) {
		t.Fatalf("err = %v, want ErrNoAcceptedSubmission", err)
	}
}
