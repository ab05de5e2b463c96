// Package github dispatches the risk-parity analytics workflow through the
// GitHub Actions API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/interfaces"
	"github.com/bobmcallan/quantum/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultTimeout = 15 * time.Second
	DefaultRef     = "master"
)

// Client triggers workflow_dispatch events
type Client struct {
	baseURL    string
	token      string
	owner      string
	repo       string
	workflow   string
	ref        string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithRef sets the git ref the workflow runs on
func WithRef(ref string) ClientOption {
	return func(c *Client) {
		if ref != "" {
			c.ref = ref
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a workflow dispatch client for owner/repo's workflow file.
func NewClient(token, owner, repo, workflow string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		owner:      owner,
		repo:       repo,
		workflow:   workflow,
		ref:        DefaultRef,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the github config section.
func NewClientFromConfig(cfg common.GitHubConfig, logger *common.Logger) *Client {
	return NewClient(cfg.Token, cfg.Owner, cfg.Repo, cfg.Workflow,
		WithBaseURL(cfg.BaseURL),
		WithRef(cfg.Ref),
		WithLogger(logger),
	)
}

// APIError represents a non-2xx response from GitHub
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %s (status: %d)", e.Message, e.StatusCode)
}

// Trigger dispatches the workflow. GitHub answers 204 with no body; the
// run itself is not awaited.
func (c *Client) Trigger(ctx context.Context) (err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.AnalyticsTriggersTotal.WithLabelValues(status).Inc()
	}()

	body, err := json.Marshal(map[string]string{"ref": c.ref})
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch body: %w", err)
	}

	reqURL := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches", c.baseURL, c.owner, c.repo, c.workflow)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	c.logger.Info().Str("workflow", c.workflow).Str("ref", c.ref).Msg("Analytics workflow dispatched")
	return nil
}

var _ interfaces.AnalyticsTrigger = (*Client)(nil)
