package duolingo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/rawdata"
)

const (
	DefaultBaseURL = "https://www.duolingo.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// ErrUserNotFound is returned when neither user endpoint knows the username.
var ErrUserNotFound = errors.New("duolingo user not found")

// StatusError is a non-200 upstream response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.Status, e.Body)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	jwt        string
	log        *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client. An empty jwt limits the client to public endpoints.
func New(baseURL, jwt string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		jwt:        jwt,
		log:        logger.Default().WithPrefix("duolingo"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether authenticated endpoints can be used.
func (c *Client) HasCredentials() bool { return c.jwt != "" }

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (any, error) {
	log := logger.FromContext(ctx).WithPrefix("duolingo").WithField("path", path)

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	log.Debug("requesting %s", u)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Warn("request failed: status=%d", resp.StatusCode)
		return nil, &StatusError{URL: path, Status: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read response: %v", err)
		return nil, err
	}
	return rawdata.Decode(data)
}

// FetchUser fetches the v1 and v2 user documents concurrently and merges
// them. The v2 document is the base; v1 contributes its legacy language
// data. Either endpoint may fail as long as the other succeeds. Only
// cancellation of ctx aborts the pair.
func (c *Client) FetchUser(ctx context.Context, username string) (rawdata.Record, error) {
	log := logger.FromContext(ctx).WithPrefix("duolingo").WithField("username", username)

	var (
		v1, v2       rawdata.Record
		v1Err, v2Err error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v1, v1Err = c.fetchRecord(gctx, "/users/"+url.PathEscape(username), nil)
		return ctx.Err()
	})
	g.Go(func() error {
		v2, v2Err = c.fetchRecord(gctx, "/2017-06-30/users", url.Values{"username": {username}})
		if v2Err == nil {
			if v2 = unwrapUsers(v2); v2 == nil {
				v2Err = &StatusError{URL: "/2017-06-30/users", Status: http.StatusNotFound, Body: "empty user list"}
			}
		}
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		log.Warn("user fetch cancelled: %v", err)
		return nil, fmt.Errorf("fetch user %s: %w", username, err)
	}

	if v1 == nil && v2 == nil {
		if isNotFound(v1Err) && isNotFound(v2Err) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
		}
		log.Error("both user endpoints failed: v1=%v v2=%v", v1Err, v2Err)
		return nil, fmt.Errorf("fetch user %s: %w", username, errors.Join(v1Err, v2Err))
	}
	if v1Err != nil {
		log.Warn("v1 user endpoint failed: %v", v1Err)
	}
	if v2Err != nil {
		log.Warn("v2 user endpoint failed: %v", v2Err)
	}
	return mergeUsers(v1, v2), nil
}

// FetchXPSummaries returns the per-day summary records of a user.
func (c *Client) FetchXPSummaries(ctx context.Context, userID string) ([]any, error) {
	path := fmt.Sprintf("/2017-06-30/users/%s/xp_summaries", url.PathEscape(userID))
	rec, err := c.fetchRecord(ctx, path, url.Values{"startDate": {"1970-01-01"}})
	if err != nil {
		return nil, err
	}
	return rec.List("summaries"), nil
}

// FetchLeaderboardHistory returns the league history of a user. A missing
// history is reported as an empty record.
func (c *Client) FetchLeaderboardHistory(ctx context.Context, userID string) (rawdata.Record, error) {
	path := fmt.Sprintf("/2017-06-30/users/%s/leaderboard_history", url.PathEscape(userID))
	rec, err := c.fetchRecord(ctx, path, nil)
	if isNotFound(err) {
		return rawdata.Record{}, nil
	}
	return rec, err
}

// FetchProfile fetches the merged user document and, with credentials,
// attaches XP summaries and leaderboard history. Failures of the two
// secondary endpoints only cost detail.
func (c *Client) FetchProfile(ctx context.Context, username string) (rawdata.Record, error) {
	log := logger.FromContext(ctx).WithPrefix("duolingo").WithField("username", username)

	user, err := c.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}

	userID := UserID(user)
	if userID == "" || !c.HasCredentials() {
		log.Debug("skipping summaries: user_id=%q credentials=%t", userID, c.HasCredentials())
		return user, nil
	}

	var (
		summaries []any
		history   rawdata.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.FetchXPSummaries(gctx, userID)
		if err != nil {
			log.Warn("xp summaries unavailable: %v", err)
			return ctx.Err()
		}
		summaries = s
		return nil
	})
	g.Go(func() error {
		h, err := c.FetchLeaderboardHistory(gctx, userID)
		if err != nil {
			log.Warn("leaderboard history unavailable: %v", err)
			return ctx.Err()
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", username, err)
	}

	if len(summaries) > 0 {
		user["_xpSummaries"] = summaries
	}
	if len(history) > 0 {
		user["_leaderboardHistory"] = map[string]any(history)
	}
	log.Info("fetched profile with %d xp summaries", len(summaries))
	return user, nil
}

func (c *Client) fetchRecord(ctx context.Context, path string, query url.Values) (rawdata.Record, error) {
	v, err := c.getJSON(ctx, path, query)
	if err != nil {
		return nil, err
	}
	rec, ok := rawdata.AsRecord(v)
	if !ok {
		return nil, fmt.Errorf("%s: expected JSON object", path)
	}
	return rec, nil
}

// UserID reads the numeric user id wherever the payload put it.
func UserID(rec rawdata.Record) string {
	for _, k := range []string{"id", "user_id"} {
		if s, ok := rec.String(k); ok && s != "" {
			return s
		}
	}
	if tp, ok := rec.Record("tracking_properties"); ok {
		return tp.Str("user_id")
	}
	return ""
}

func unwrapUsers(rec rawdata.Record) rawdata.Record {
	users := rec.Records("users")
	if len(users) > 0 {
		return users[0]
	}
	if _, wrapped := rec.Get("users"); wrapped {
		return nil
	}
	return rec
}

func mergeUsers(v1, v2 rawdata.Record) rawdata.Record {
	if v2 == nil {
		return v1.Clone()
	}
	merged := v2.Clone()
	if v1 == nil {
		return merged
	}
	for _, key := range []string{"languages", "language_data"} {
		if v, ok := v1.Get(key); ok {
			merged[key] = v
		}
	}
	return merged
}

func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
