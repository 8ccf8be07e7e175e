package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

type SendGridConfig struct {
	APIKey     string
	BaseURL    string
	From       string
	To         string
	Timeout    time.Duration
	MaxRetries int
}

// SendGridSender delivers through the SendGrid v3 mail/send endpoint.
type SendGridSender struct {
	cfg        SendGridConfig
	log        *logger.Logger
	httpClient *http.Client
	newBackOff func() backoff.BackOff
}

func NewSendGridSender(log *logger.Logger, cfg SendGridConfig) (*SendGridSender, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.From) == "" || strings.TrimSpace(cfg.To) == "" {
		return nil, errors.New("sendgrid: from and to addresses required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &SendGridSender{
		cfg:        cfg,
		log:        log.With("client", "SendGridSender"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}, nil
}

type emailAddress struct {
	Email string `json:"email"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type errorItem struct {
	Message string `json:"message"`
	Field   any    `json:"field,omitempty"`
}

type errorResponse struct {
	Errors []errorItem `json:"errors"`
}

// HTTPError is a non-2xx response from SendGrid.
type HTTPError struct {
	StatusCode int
	Body       string
	Errors     []errorItem
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if len(e.Errors) > 0 && strings.TrimSpace(e.Errors[0].Message) != "" {
		return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Errors[0].Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, msg)
}

// throttledError keeps the HTTP error visible to callers while telling the
// retry loop how long to wait.
type throttledError struct {
	http  *HTTPError
	after error
}

func (e *throttledError) Error() string   { return e.http.Error() }
func (e *throttledError) Unwrap() []error { return []error{e.http, e.after} }

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Subject) == "" {
		return errors.New("sendgrid: subject required")
	}
	var contents []mailContent
	if t := strings.TrimSpace(msg.Text); t != "" {
		contents = append(contents, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(msg.HTML); h != "" {
		contents = append(contents, mailContent{Type: "text/html", Value: h})
	}
	if len(contents) == 0 {
		return errors.New("sendgrid: text or html content required")
	}
	wire := mailSendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: s.cfg.To}}}},
		From:             emailAddress{Email: s.cfg.From},
		Subject:          msg.Subject,
		Content:          contents,
	}
	_, err := s.do(ctx, http.MethodPost, "/v3/mail/send", wire)
	return err
}

// Check verifies the API key by listing its scopes.
func (s *SendGridSender) Check(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, "/v3/scopes", nil)
	return err
}

func (s *SendGridSender) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	attempt := 0
	return backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		raw, err := s.doOnce(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		var he *HTTPError
		if errors.As(err, &he) {
			switch {
			case he.StatusCode == http.StatusTooManyRequests && he.RetryAfter > 0:
				return nil, &throttledError{http: he, after: backoff.RetryAfter(int(he.RetryAfter / time.Second))}
			case he.StatusCode == http.StatusTooManyRequests, he.StatusCode >= 500:
				return nil, err
			default:
				return nil, backoff.Permanent(err)
			}
		}
		return nil, err
	},
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.cfg.MaxRetries+1)),
		backoff.WithMaxElapsedTime(2*time.Minute),
		backoff.WithNotify(func(err error, d time.Duration) {
			s.log.Warn("SendGrid request retrying",
				"path", path,
				"attempt", attempt,
				"max_retries", s.cfg.MaxRetries,
				"sleep", d.String(),
				"error", err.Error(),
			)
		}),
	)
}

func (s *SendGridSender) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, backoff.Permanent(err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 {
			he.Errors = er.Errors
		}
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			he.RetryAfter = time.Duration(secs) * time.Second
		}
		return nil, he
	}
	return raw, nil
}
