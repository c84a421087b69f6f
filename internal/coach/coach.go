// Package coach asks an OpenAI-compatible chat completion API for a short,
// encouraging comment on a learner's progress.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/models"
)

type Provider string

const (
	ProviderGemini      Provider = "gemini"
	ProviderOpenRouter  Provider = "openrouter"
	ProviderDeepSeek    Provider = "deepseek"
	ProviderSiliconFlow Provider = "siliconflow"
	ProviderMoonshot    Provider = "moonshot"
	ProviderCustom      Provider = "custom"
)

const (
	DefaultModel = "gemini-2.5-flash"

	completionsPath = "/chat/completions"

	missingKeyMessage = "Hoot! No AI API key is configured. Set AI_API_KEY to hear from your coach."
	emptyReplyMessage = "The coach had nothing to say this time."
)

var defaultEndpoints = map[Provider]string{
	ProviderGemini:      "https://generativelanguage.googleapis.com/v1beta/openai",
	ProviderOpenRouter:  "https://openrouter.ai/api/v1",
	ProviderDeepSeek:    "https://api.deepseek.com",
	ProviderSiliconFlow: "https://api.siliconflow.cn/v1",
	ProviderMoonshot:    "https://api.moonshot.cn/v1",
}

// ErrNoEndpoint is returned for a custom provider without a base URL.
var ErrNoEndpoint = errors.New("no AI endpoint configured")

// ValidProvider reports whether p names a supported provider.
func ValidProvider(p string) bool {
	switch Provider(p) {
	case ProviderGemini, ProviderOpenRouter, ProviderDeepSeek, ProviderSiliconFlow, ProviderMoonshot, ProviderCustom:
		return true
	}
	return false
}

type Config struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// Result is what the coach endpoint returns to the browser.
type Result struct {
	Analysis string   `json:"analysis"`
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// Endpoint returns the chat completion URL for the configured provider.
func (c *Client) Endpoint() string {
	base := c.cfg.BaseURL
	if base == "" {
		base = defaultEndpoints[c.cfg.Provider]
	}
	if base == "" {
		return ""
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, completionsPath) {
		return base
	}
	return base + completionsPath
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze asks the model for a comment on summary. Without an API key it
// returns a canned message instead of failing.
func (c *Client) Analyze(ctx context.Context, summary models.CoachSummary) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("coach").WithFields(map[string]any{
		"provider": c.cfg.Provider,
		"model":    c.cfg.Model,
	})
	res := Result{Provider: c.cfg.Provider, Model: c.cfg.Model}

	if !c.Configured() {
		log.Warn("no API key configured, returning canned reply")
		res.Analysis = missingKeyMessage
		return res, nil
	}

	endpoint := c.Endpoint()
	if endpoint == "" {
		return res, ErrNoEndpoint
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(summary)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return res, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return res, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Provider == ProviderOpenRouter {
		req.Header.Set("X-Title", "DuoDash")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("completion request failed: %v", err)
		return res, err
	}
	defer resp.Body.Close()
	log.Debug("completion response in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return res, fmt.Errorf("completion status %d: %s", resp.StatusCode, string(text))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return res, fmt.Errorf("decode completion: %w", err)
	}

	res.Analysis = emptyReplyMessage
	if len(out.Choices) > 0 {
		if content := strings.TrimSpace(out.Choices[0].Message.Content); content != "" {
			res.Analysis = content
		}
	}
	return res, nil
}
