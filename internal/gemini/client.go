package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gemcheck/internal/checker"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client talks to the Gemini API through the genai SDK. Generation requests
// carry only the prompt: no generation config and no safety settings, so the
// service applies its own defaults.
type Client struct {
	sdk *genai.Client
}

type settings struct {
	httpClient *http.Client
}

type Option func(*settings)

// WithHTTPClient sends every request through hc. hc must attach credentials
// itself if the API key is not enough (proxies, recording transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty API key")
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	copts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if s.httpClient != nil {
		copts = append(copts, option.WithHTTPClient(s.httpClient))
	}
	sdk, err := genai.NewClient(ctx, copts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Client{sdk: sdk}, nil
}

func (c *Client) ListModels(ctx context.Context) checker.ModelIterator {
	return &modelIterator{next: c.sdk.ListModels(ctx).Next}
}

func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.sdk.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classify(err)
	}
	return responseText(resp)
}

func (c *Client) Close() error {
	if c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from model")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

type modelIterator struct {
	next func() (*genai.ModelInfo, error)
}

func (it *modelIterator) Next() (*checker.Model, error) {
	info, err := it.next()
	if err != nil {
		return nil, classify(err)
	}
	return &checker.Model{Name: info.Name, DisplayName: info.DisplayName}, nil
}
