// Package genai is a minimal client for the Gemini generateContent endpoint.
package genai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core/chat"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var errEmptyResponse = errors.New("gemini returned no text")

type (
	part struct {
		Text string `json:"text"`
	}

	content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}

	generateRequest struct {
		Contents []content `json:"contents"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
		Error *apiStatus `json:"error,omitempty"`
	}

	apiStatus struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	}
)

// APIError is a non 2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error: %s (code: %d, status: %s)", e.Message, e.StatusCode, e.Status)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type ClientOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Client implements chat.Generator.
type Client struct {
	opts ClientOptions
}

var _ chat.Generator = (*Client)(nil)

func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &Client{opts: opts}
}

func (c *Client) endpoint() string {
	q := make(url.Values)
	q.Set("key", c.opts.APIKey)
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.opts.BaseURL, c.opts.Model, q.Encode())
}

// Generate sends prompt as a single user turn and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := sonic.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding gemini request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "building gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling gemini")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading gemini response")
	}

	var out generateResponse
	if err = sonic.Unmarshal(body, &out); err != nil && res.StatusCode < http.StatusBadRequest {
		return "", errors.Wrap(err, "decoding gemini response")
	}
	if res.StatusCode >= http.StatusBadRequest || out.Error != nil {
		apiErr := &APIError{StatusCode: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		if out.Error != nil {
			apiErr.Message, apiErr.Status = out.Error.Message, out.Error.Status
			if apiErr.StatusCode < http.StatusBadRequest {
				apiErr.StatusCode = out.Error.Code
			}
		}
		return "", apiErr
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}
