package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/repository"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Doer is the subset of *fasthttp.Client used by the Gemini client.
type Doer interface {
	DoDeadline(req *fasthttp.Request, resp *fasthttp.Response, deadline time.Time) error
}

type Config struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
}

// APIError is returned for non-200 responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (%d): %s", e.StatusCode, e.Body)
}

// Client talks to the generateContent endpoint. The API key is resolved from
// the credential store on every call so that set/clear take effect immediately.
type Client struct {
	cfg    Config
	creds  repository.CredentialStore
	http   Doer
	logger *zap.Logger
}

func New(cfg Config, creds repository.CredentialStore, doer Doer, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if doer == nil {
		doer = &fasthttp.Client{
			Name:         "taskwise",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		creds:  creds,
		http:   doer,
		logger: logger,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// SuggestPriority returns the model's raw label. The caller decides how to
// treat labels outside the importance set.
func (c *Client) SuggestPriority(ctx context.Context, q domain.PriorityQuery) (string, error) {
	out, err := c.generate(ctx, priorityPrompt(q), maxTokensPriority)
	if err != nil {
		return "", err
	}
	return strings.ToLower(out), nil
}

// Rewrite produces a new title or description according to q.Action.
func (c *Client) Rewrite(ctx context.Context, q domain.RewriteQuery) (string, error) {
	switch q.Action {
	case domain.SuggestOptimizeTitle:
		return c.generate(ctx, optimizeTitlePrompt(q), maxTokensTitle)
	case domain.SuggestOptimizeDescription:
		return c.generate(ctx, optimizeDescriptionPrompt(q), maxTokensDescription)
	case domain.SuggestGenerateDescription:
		return c.generate(ctx, generateDescriptionPrompt(q), maxTokensGenerate)
	default:
		return "", domain.ErrUnknownSuggestion
	}
}

func (c *Client) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.creds == nil {
		return "", domain.ErrCredentialMissing
	}
	apiKey, err := c.creds.APIKey(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-goog-api-key", apiKey)
	req.SetBody(body)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", domain.WrapError(domain.ErrCodeUpstream, "gemini request failed", err)
	}
	// fasthttp ignores ctx, so an answer that lands after cancellation is dropped.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	status := resp.StatusCode()
	respBody := resp.Body()
	if status != fasthttp.StatusOK {
		apiErr := &APIError{StatusCode: status, Body: string(respBody)}
		var parsed errorResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error.Message != "" {
			apiErr.Body = parsed.Error.Message
		}
		c.logger.Warn("gemini API error", zap.Int("status", status), zap.String("message", apiErr.Body))
		return "", domain.WrapError(domain.ErrCodeUpstream, "gemini request failed", apiErr)
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", domain.WrapError(domain.ErrCodeUpstream, "malformed gemini response", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", domain.WrapError(domain.ErrCodeUpstream, "malformed gemini response", errors.New("no candidates"))
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}
