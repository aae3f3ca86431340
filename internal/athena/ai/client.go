// Package ai talks to an OpenAI-compatible chat-completions endpoint for
// content moderation and companion responses. The upstream is best effort:
// moderation fails open and companion generation falls back to canned text,
// so an outage never blocks posting.
package ai

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

	"github.com/athena-forum/athena/internal/athena/domain"
	"github.com/athena-forum/athena/pkg/slogx"
)

// ErrDisabled reports a client constructed without an API key.
var ErrDisabled = errors.New("ai: client disabled, no api key configured")

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second

	maxChatHistory = 40
)

type Config struct {
	BaseURL string
	APIKey  string // empty disables the client
	Model   string
	Timeout time.Duration
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an API key is configured. A disabled client still
// answers every method, via fallbacks.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// Message is a single turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Moderate classifies user content. Upstream failure or an unparseable
// verdict fails open: the content is published unblurred.
func (c *Client) Moderate(ctx context.Context, content string) domain.ModerationResult {
	pass := domain.ModerationResult{IsBlurred: false, Severity: domain.SeverityNone}
	if !c.Enabled() {
		return pass
	}

	raw, err := c.complete(ctx, moderationSystemPrompt, []Message{
		{Role: RoleUser, Content: content},
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("moderation call failed, failing open", "error", err)
		return pass
	}

	var verdict domain.ModerationResult
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &verdict); err != nil {
		slogx.FromContext(ctx).Warn("moderation verdict unparseable, failing open", "error", err)
		return pass
	}

	switch verdict.Severity {
	case domain.SeverityNone, domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh:
	default:
		verdict.Severity = domain.SeverityNone
	}
	if !verdict.IsBlurred {
		verdict.Reason = ""
	}
	return verdict
}

// CompanionResponse generates the supportive reply shown under a feed post.
// Vents get empathy, flexes get celebration. Returns a canned fallback when
// the upstream is unavailable.
func (c *Client) CompanionResponse(ctx context.Context, content string, tags []string, postType string) string {
	fallback := ventFallback
	system := ventSystemPrompt
	if postType == domain.PostTypeFlex {
		fallback = flexFallback
		system = flexSystemPrompt
	}
	if !c.Enabled() {
		return fallback
	}

	prompt := content
	if len(tags) > 0 {
		prompt = fmt.Sprintf("Topics: %s\n\n%s", strings.Join(tags, ", "), content)
	}

	reply, err := c.complete(ctx, system, []Message{{Role: RoleUser, Content: prompt}})
	if err != nil {
		slogx.FromContext(ctx).Warn("companion response failed, using fallback",
			"post_type", postType, "error", err)
		return fallback
	}
	return reply
}

// JournalResponse generates the reflective reply for a private journal entry.
func (c *Client) JournalResponse(ctx context.Context, content string) string {
	if !c.Enabled() {
		return journalFallback
	}

	reply, err := c.complete(ctx, journalSystemPrompt, []Message{
		{Role: RoleUser, Content: content},
	})
	if err != nil {
		slogx.FromContext(ctx).Warn("journal response failed, using fallback", "error", err)
		return journalFallback
	}
	return reply
}

// ChatReply continues a companion conversation. History holds prior user and
// assistant turns, oldest first; the new message is appended last. Only the
// most recent turns are sent upstream.
func (c *Client) ChatReply(ctx context.Context, history []Message, message string) string {
	if !c.Enabled() {
		return chatFallback
	}

	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	msgs := make([]Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, Message{Role: RoleUser, Content: message})

	reply, err := c.complete(ctx, chatSystemPrompt, msgs)
	if err != nil {
		slogx.FromContext(ctx).Warn("chat reply failed, using fallback", "error", err)
		return chatFallback
	}
	return reply
}

func (c *Client) complete(ctx context.Context, system string, msgs []Message) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body := chatRequest{
		Model:    c.cfg.Model,
		Messages: append([]Message{{Role: RoleSystem, Content: system}}, msgs...),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: upstream: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ai: read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ai: upstream status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("ai: no choices in response")
	}

	reply := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("ai: empty completion")
	}
	return reply, nil
}

// stripCodeFences removes a surrounding markdown fence that some models wrap
// JSON output in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
