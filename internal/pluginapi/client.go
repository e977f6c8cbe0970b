// Package pluginapi is the REST client for the GitLab plugin's server side,
// mounted by Mattermost under /plugins/{id}/api/v1.
package pluginapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kastheco/glrhs/model"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client talks to the plugin API. It holds no state beyond its transport and
// rate limiter, so one Client is shared by every action.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. The client is used as the base of the
// bearer-token client when a token is set.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables
// the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates a Client for baseURL (for example
// https://chat.example.com/plugins/com.github.manland.mattermost-plugin-gitlab/api/v1).
// A non-empty token is sent as a bearer token on every request.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
		c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}))
	}
	return c, nil
}

// GetConnected returns the connection status of the current user. reminder asks
// the server to send the daily reminder if one is due.
func (c *Client) GetConnected(ctx context.Context, reminder bool) (*model.ConnectedData, error) {
	var out model.ConnectedData
	path := "/connected?reminder=" + strconv.FormatBool(reminder)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get connected: %w", err)
	}
	return &out, nil
}

// GetLHSData returns the bulk sidebar lists.
func (c *Client) GetLHSData(ctx context.Context) (*model.LHSData, error) {
	var out model.LHSData
	if err := c.do(ctx, http.MethodGet, "/lhs-data", nil, &out); err != nil {
		return nil, fmt.Errorf("get lhs data: %w", err)
	}
	return &out, nil
}

// GetPrsDetails fetches detail records for the given merge requests.
func (c *Client) GetPrsDetails(ctx context.Context, prs []model.PRDetailsRequest) ([]model.PRDetails, error) {
	var out []model.PRDetails
	if err := c.do(ctx, http.MethodPost, "/prdetails", prs, &out); err != nil {
		return nil, fmt.Errorf("get pr details: %w", err)
	}
	return out, nil
}

// GetChannelSubscriptions lists the GitLab subscriptions of a channel.
func (c *Client) GetChannelSubscriptions(ctx context.Context, channelID string) ([]model.Subscription, error) {
	var out []model.Subscription
	path := "/channel/" + url.PathEscape(channelID) + "/subscriptions"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get channel subscriptions %s: %w", channelID, err)
	}
	return out, nil
}

// GetGitlabUser resolves a Mattermost user id to a GitLab username. A user
// without a linked account comes back as a 404 APIError.
func (c *Client) GetGitlabUser(ctx context.Context, userID string) (string, error) {
	var out struct {
		Username string `json:"username"`
	}
	body := map[string]string{"user_id": userID}
	if err := c.do(ctx, http.MethodPost, "/user", body, &out); err != nil {
		return "", fmt.Errorf("get gitlab user %s: %w", userID, err)
	}
	return out.Username, nil
}

// CreateIssue opens a GitLab issue, optionally linked to a post.
func (c *Client) CreateIssue(ctx context.Context, req model.IssueRequest) (*model.Issue, error) {
	var out model.Issue
	if err := c.do(ctx, http.MethodPost, "/issue", req, &out); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &out, nil
}

// AttachCommentToIssue adds a post as a comment on an existing issue.
func (c *Client) AttachCommentToIssue(ctx context.Context, req model.CommentRequest) (*model.Note, error) {
	var out model.Note
	if err := c.do(ctx, http.MethodPost, "/attach_comment_to_issue", req, &out); err != nil {
		return nil, fmt.Errorf("attach comment: %w", err)
	}
	return &out, nil
}

// SearchIssues searches issues visible to the user.
func (c *Client) SearchIssues(ctx context.Context, term string) ([]model.Issue, error) {
	var out []model.Issue
	path := "/search_issues?search=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http %s: %w", strings.ToLower(method), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}
	if apiErr := sentinel(resp.StatusCode, raw); apiErr != nil {
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(raw, apiErr); err != nil || (apiErr.ID == "" && apiErr.Message == "") {
		apiErr = &APIError{Message: strings.TrimSpace(string(raw))}
	}
	apiErr.StatusCode = status
	return apiErr
}

// sentinel detects a successful response whose body is an error object with an
// id, e.g. {"id":"not_connected"}.
func sentinel(status int, raw []byte) *APIError {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var probe struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil
	}
	if probe.ID != model.NotConnectedID {
		return nil
	}
	return &APIError{StatusCode: status, ID: probe.ID, Message: probe.Message}
}
