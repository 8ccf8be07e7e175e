// Package leetcode fetches accepted submissions and problem details from
// LeetCode (through the public alfa-leetcode-api mirror and, when a session
// is configured, LeetCode's own GraphQL endpoint).
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

var (
	// ErrNoSession is returned by calls that need LEETCODE_SESSION and CSRF_TOKEN.
	ErrNoSession = errors.New("leetcode: session cookie and csrf token required")
	// ErrNoAcceptedSubmission means the user has no accepted submission for a slug.
	ErrNoAcceptedSubmission = errors.New("leetcode: no accepted submission")
)

type Config struct {
	Username   string
	APIBase    string
	GraphQLURL string
	Session    string
	CSRFToken  string
	Timeout    time.Duration
	MaxTries   int
}

type Client struct {
	cfg        Config
	log        *logger.Logger
	httpClient *http.Client
	newBackOff func() backoff.BackOff
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return nil, errors.New("missing LEETCODE_USERNAME")
	}
	if strings.TrimSpace(cfg.APIBase) == "" {
		cfg.APIBase = "https://alfa-leetcode-api.onrender.com"
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if strings.TrimSpace(cfg.GraphQLURL) == "" {
		cfg.GraphQLURL = "https://leetcode.com/graphql"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = 3
	}
	return &Client{
		cfg:        cfg,
		log:        log.With("client", "LeetCodeClient"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

// HasSession reports whether GraphQL calls can be made.
func (c *Client) HasSession() bool {
	return strings.TrimSpace(c.cfg.Session) != "" && strings.TrimSpace(c.cfg.CSRFToken) != ""
}

// Question is the descriptive part of a LeetCode problem.
type Question struct {
	Title      string
	Slug       string
	Difficulty models.Difficulty
	Topics     []string
	Statement  string
}

// Solution is the code of an accepted submission.
type Solution struct {
	Code     string
	Language string
}

// RecentAccepted lists the user's most recent accepted submissions, newest first.
func (c *Client) RecentAccepted(ctx context.Context, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	endpoint := fmt.Sprintf("%s/%s/acSubmission?limit=%d", c.cfg.APIBase, url.PathEscape(c.cfg.Username), limit)
	body, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("leetcode: invalid submission list json")
	}

	var out []models.Submission
	for _, s := range gjson.GetBytes(body, "submission").Array() {
		status := s.Get("statusDisplay").String()
		if status != "" && status != "Accepted" {
			continue
		}
		slug := strings.TrimSpace(s.Get("titleSlug").String())
		if slug == "" {
			continue
		}
		out = append(out, models.Submission{
			Title:     s.Get("title").String(),
			Slug:      slug,
			Language:  s.Get("lang").String(),
			Status:    "Accepted",
			Timestamp: time.Unix(s.Get("timestamp").Int(), 0).UTC(),
		})
	}
	return out, nil
}

// Question fetches title, difficulty, topic tags and the statement HTML.
func (c *Client) Question(ctx context.Context, slug string) (*Question, error) {
	endpoint := c.cfg.APIBase + "/select?titleSlug=" + url.QueryEscape(slug)
	body, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	title := gjson.GetBytes(body, "questionTitle")
	if !title.Exists() {
		return nil, fmt.Errorf("leetcode: question %q not found", slug)
	}
	q := &Question{
		Title:      title.String(),
		Slug:       slug,
		Difficulty: models.ParseDifficulty(gjson.GetBytes(body, "difficulty").String()),
		Statement:  gjson.GetBytes(body, "question").String(),
	}
	for _, tag := range gjson.GetBytes(body, "topicTags.#.name").Array() {
		q.Topics = append(q.Topics, tag.String())
	}
	return q, nil
}

const submissionListQuery = `query submissionList($offset: Int!, $limit: Int!, $questionSlug: String!) {
  submissionList(offset: $offset, limit: $limit, questionSlug: $questionSlug) {
    submissions { id statusDisplay lang timestamp }
  }
}`

const submissionDetailsQuery = `query submissionDetails($submissionId: Int!) {
  submissionDetails(submissionId: $submissionId) {
    code
    lang { name verboseName }
  }
}`

// SolutionCode returns the code of the latest accepted submission for slug.
func (c *Client) SolutionCode(ctx context.Context, slug string) (*Solution, error) {
	if !c.HasSession() {
		return nil, ErrNoSession
	}
	list, err := c.graphql(ctx, "submissionList", submissionListQuery, map[string]any{
		"offset": 0, "limit": 20, "questionSlug": slug,
	})
	if err != nil {
		return nil, err
	}
	var id int64
	for _, s := range gjson.GetBytes(list, "data.submissionList.submissions").Array() {
		if s.Get("statusDisplay").String() == "Accepted" {
			id = s.Get("id").Int()
			break
		}
	}
	if id == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoAcceptedSubmission, slug)
	}

	details, err := c.graphql(ctx, "submissionDetails", submissionDetailsQuery, map[string]any{"submissionId": id})
	if err != nil {
		return nil, err
	}
	d := gjson.GetBytes(details, "data.submissionDetails")
	if !d.Exists() || d.Type == gjson.Null {
		return nil, fmt.Errorf("leetcode: submission %d details unavailable", id)
	}
	lang := d.Get("lang.verboseName").String()
	if lang == "" {
		lang = d.Get("lang.name").String()
	}
	return &Solution{Code: d.Get("code").String(), Language: lang}, nil
}

func (c *Client) graphql(ctx context.Context, op, query string, vars map[string]any) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"operationName": op,
		"query":         query,
		"variables":     vars,
	})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GraphQLURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Referer", "https://leetcode.com/")
		req.Header.Set("X-CSRFToken", c.cfg.CSRFToken)
		req.AddCookie(&http.Cookie{Name: "LEETCODE_SESSION", Value: c.cfg.Session})
		req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.cfg.CSRFToken})
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	if errs := gjson.GetBytes(body, "errors.0.message"); errs.Exists() {
		return nil, fmt.Errorf("leetcode graphql %s: %s", op, errs.String())
	}
	return body, nil
}

// HTTPError is a non-2xx response other than 429.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if len(msg) > 500 {
		msg = msg[:500] + "..."
	}
	if msg == "" {
		msg = "<empty body>"
	}
	return fmt.Sprintf("leetcode http %d: %s", e.StatusCode, msg)
}

// RateLimitError is a 429 from the API. The public mirror rate-limits
// aggressively; waiting an hour or two usually clears it.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("leetcode: rate limited, retry after %s", e.RetryAfter)
	}
	return "leetcode: rate limited"
}

// Unwrap exposes the wait hint to the retry loop.
func (e *RateLimitError) Unwrap() error {
	if e.RetryAfter <= 0 {
		return nil
	}
	return backoff.RetryAfter(int(e.RetryAfter / time.Second))
}

func (c *Client) do(ctx context.Context, newReq func() (*http.Request, error)) ([]byte, error) {
	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		req, err := newReq()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		raw, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			rl := &RateLimitError{}
			if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
				rl.RetryAfter = time.Duration(secs) * time.Second
			}
			return nil, rl
		case resp.StatusCode >= 500:
			return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, backoff.Permanent(&HTTPError{StatusCode: resp.StatusCode, Body: string(raw)})
		}
		return raw, nil
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.cfg.MaxTries)),
		backoff.WithMaxElapsedTime(c.cfg.Timeout*time.Duration(c.cfg.MaxTries+1)),
		backoff.WithNotify(func(err error, d time.Duration) {
			c.log.Warn("LeetCode request retrying", "attempt", attempt, "sleep", d.String(), "error", err.Error())
		}),
	)
}
