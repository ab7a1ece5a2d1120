package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPVisionConfig configures an HTTPVisionProvider.
type HTTPVisionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// httpVisionRequest mirrors the minimal envelope a multimodal chat
// endpoint expects: a data-URL image plus a text prompt.
type httpVisionRequest struct {
	Model    string              `json:"model"`
	Messages []httpVisionMessage `json:"messages"`
}

type httpVisionMessage struct {
	Role    string              `json:"role"`
	Content []httpVisionContent `json:"content"`
}

type httpVisionContent struct {
	Type     string           `json:"type"`
	Text     string           `json:"text,omitempty"`
	ImageURL *httpVisionImage `json:"image_url,omitempty"`
}

type httpVisionImage struct {
	URL string `json:"url"`
}

type httpVisionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// HTTPVisionProvider is an HTTP-backed VisionProvider, modelled after the
// BaseURL + *http.Client shape a remote analysis service client takes
// (other_examples' compreface-plugin vision client): one base URL, one
// shared client, one request type per call.
type HTTPVisionProvider struct {
	cfg    HTTPVisionConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTPVisionProvider builds a vision client against cfg.
func NewHTTPVisionProvider(cfg HTTPVisionConfig, logger *zap.Logger) *HTTPVisionProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPVisionProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (p *HTTPVisionProvider) Extract(ctx context.Context, imagePath, prompt string) (VisionResult, error) {
	dataURL, err := encodeImageDataURL(imagePath)
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision: reading image: %w", err)
	}

	reqBody := httpVisionRequest{
		Model: p.cfg.Model,
		Messages: []httpVisionMessage{{
			Role: "user",
			Content: []httpVisionContent{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &httpVisionImage{URL: dataURL}},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision: encoding request: %w", err)
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return VisionResult{}, fmt.Errorf("vision: provider returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed httpVisionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return VisionResult{}, fmt.Errorf("vision: decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return VisionResult{}, fmt.Errorf("vision: provider returned no choices")
	}

	return VisionResult{ExtractedText: parsed.Choices[0].Message.Content, Model: p.cfg.Model}, nil
}

func (p *HTTPVisionProvider) Info() VisionInfo {
	return VisionInfo{
		Name:     p.cfg.Model,
		Provider: p.cfg.BaseURL,
		Parameters: map[string]interface{}{
			"timeout": p.cfg.Timeout.String(),
		},
	}
}

func (p *HTTPVisionProvider) HealthCheck(ctx context.Context) bool {
	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("vision: health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func encodeImageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := "image/jpeg"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mime = "image/png"
	case ".webp":
		mime = "image/webp"
	case ".gif":
		mime = "image/gif"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

// RateLimitedVisionProvider decorates a VisionProvider with a token-bucket
// limiter, distinct from the fixed inter-item pause processor.ProcessBatch
// applies between images: this bounds the rate of calls to the vision
// backend itself, regardless of batch size or phase count.
type RateLimitedVisionProvider struct {
	inner   VisionProvider
	limiter *rate.Limiter
}

// NewRateLimitedVisionProvider wraps inner with a limiter allowing up to
// ratePerSecond calls/second, bursting up to burst.
func NewRateLimitedVisionProvider(inner VisionProvider, ratePerSecond float64, burst int) *RateLimitedVisionProvider {
	return &RateLimitedVisionProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (p *RateLimitedVisionProvider) Extract(ctx context.Context, imagePath, prompt string) (VisionResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return VisionResult{}, fmt.Errorf("vision: rate limit wait: %w", err)
	}
	return p.inner.Extract(ctx, imagePath, prompt)
}

func (p *RateLimitedVisionProvider) Info() VisionInfo { return p.inner.Info() }

func (p *RateLimitedVisionProvider) HealthCheck(ctx context.Context) bool { return p.inner.HealthCheck(ctx) }
