// Package llm wraps the eino ChatModel with rate limiting and retry so
// agents can issue completions without coordinating quota between them.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	applogger "StockSage/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

// Config holds the model connection and quota settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	RPM         int
	QPS         int
	MaxRetries  int
}

// Client issues chat completions against an OpenAI-compatible endpoint.
// All agents share one client so the rate limiter covers the whole
// pipeline.
type Client struct {
	cm         model.ChatModel
	limiter    *rate.Limiter
	modelName  string
	timeout    time.Duration
	maxRetries int
	log        *applogger.Logger
}

// NewClient initializes the eino ChatModel and the shared limiter.
func NewClient(ctx context.Context, cfg *Config, log *applogger.Logger) (*Client, error) {
	temp := cfg.Temperature
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: &temp,
	})
	if err != nil {
		return nil, fmt.Errorf("chat model init: %w", err)
	}

	rpm := cfg.RPM
	if rpm <= 0 {
		rpm = 60
	}
	qps := cfg.QPS
	if qps <= 0 {
		qps = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), qps)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		cm:         cm,
		limiter:    limiter,
		modelName:  cfg.Model,
		timeout:    timeout,
		maxRetries: maxRetries,
		log:        log,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.modelName
}

// Generate runs one completion. Rate-limit (429) responses are retried
// with exponential backoff; other errors are returned immediately.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	baseDelay := 2 * time.Second
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.cm.Generate(callCtx, messages)
		cancel()

		if err != nil {
			if isRateLimited(err) && attempt < c.maxRetries {
				lastErr = err
				delay := baseDelay * time.Duration(1<<attempt)
				c.log.Warn("llm rate limited, backing off",
					applogger.Int("attempt", attempt+1),
					applogger.Duration("delay_ms", delay),
				)
				select {
				case <-time.After(delay):
					continue
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
			return "", fmt.Errorf("llm generate: %w", err)
		}

		return strings.TrimSpace(resp.Content), nil
	}

	return "", fmt.Errorf("llm generate after %d retries: %w", c.maxRetries, lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
