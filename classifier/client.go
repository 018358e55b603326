package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Result is the structured verdict the classifier is asked to produce.
type Result struct {
	Violation bool   `json:"is_violation"`
	Reason    string `json:"reason"`
}

// Client calls an OpenAI-compatible chat-completion endpoint to judge
// whether a message violates the group rules. One request per call, no
// retries, no caching.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a classifier client. baseURL may be empty to use the
// provider default.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

const systemPrompt = `You are a content moderator for a group chat. Judge whether the message below violates the group rules.

Respond with a single JSON object and nothing else:
{"is_violation": true or false, "reason": "short explanation"}

Err on the side of is_violation=false when uncertain.`

// Classify judges one message against the rule text. Any transport or parse
// failure is returned as an error; the caller owns the fail-open policy.
func (c *Client) Classify(ctx context.Context, text, rules string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	userMsg := fmt.Sprintf("## Group rules\n%s\n\n## Message to judge\n%s", rules, text)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0.1, // Low temperature for deterministic verdicts
		MaxTokens:   150, // A JSON verdict is short
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("no response choices")
	}

	return ParseResult(resp.Choices[0].Message.Content)
}

// ParseResult locates the first {...} span in the response body and decodes
// it. Models wrap the JSON in prose or code fences often enough that a plain
// Unmarshal of the whole body is not reliable.
func ParseResult(body string) (Result, error) {
	span := firstJSONObject(body)
	if span == "" {
		return Result{}, fmt.Errorf("no JSON object in response: %q", truncate(body, 80))
	}

	var r Result
	if err := json.Unmarshal([]byte(span), &r); err != nil {
		return Result{}, fmt.Errorf("decode verdict: %w", err)
	}
	return r, nil
}

// firstJSONObject returns the first balanced {...} span in s, or "".
// Braces inside JSON strings are skipped.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
