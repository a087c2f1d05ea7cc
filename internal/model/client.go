// Package model talks to the generative model behind an OpenAI-compatible
// chat/completions endpoint. Callers only see artifact.ModelClient; the
// provider wiring stays here.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/casepipe/internal/common"
)

const systemPrompt = "You are a legal writing assistant for labor litigation defense teams. " +
	"Write the requested document in Brazilian Portuguese, in full, ready to be reviewed by a lawyer. " +
	"Use only the case context provided. Do not invent facts, parties or dates."

type Client struct {
	cfg    common.ModelConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg common.ModelConfig, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Name == "" {
		cfg.Name = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// GenerateDocument produces the full text of one titled document from the
// shared case context.
func (c *Client) GenerateDocument(ctx context.Context, title, contextSummary string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("model.generate.start",
		"req_id", rid,
		"model", c.cfg.Name,
		"title", title,
		"context_len", len(contextSummary),
	)

	user := "Document title: " + title
	if strings.TrimSpace(contextSummary) != "" {
		user += "\n\nCase context:\n" + contextSummary
	}

	body := map[string]any{
		"model":       c.cfg.Name,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("model.generate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("model.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return "", fmt.Errorf("decode model response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("model.generate.no_choices", "req_id", rid, "raw", string(raw))
		return "", fmt.Errorf("no choices in model response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("model.generate.ok",
		"req_id", rid,
		"title", title,
		"chars", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model http error: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("model response body close error", "error", cerr)
		}
	}()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("model status %d: %s", resp.StatusCode, out)
	}
	return out, nil
}
