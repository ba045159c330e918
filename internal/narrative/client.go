// Package narrative asks the generative-text proxy for a plain-language
// summary of the current analysis and renders it as a report.
package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/hydro.report/internal/httputil"
)

// SummaryPath is the proxy endpoint relative to the service base URL.
const SummaryPath = "/api/gemini"

// NoSummaryText is shown in place of the narrative when the response did
// not carry any generated text.
const NoSummaryText = "Error: no summary returned."

var (
	// ErrNoCandidate means the response had no text at
	// candidates[0].content.parts[0].text.
	ErrNoCandidate = errors.New("no summary candidate in response")
	// ErrNoLocation means no location with a nonzero volume was analysed.
	ErrNoLocation = errors.New("select a water body with a nonzero volume first")
)

// Part is one text fragment of a message.
type Part struct {
	Text string `json:"text"`
}

// Content is one message.
type Content struct {
	Parts []Part `json:"parts"`
}

// Request is the body posted to the proxy.
type Request struct {
	Contents []Content `json:"contents"`
}

// NewRequest wraps a prompt in the request envelope.
func NewRequest(prompt string) Request {
	return Request{Contents: []Content{{Parts: []Part{{Text: prompt}}}}}
}

// Candidate is one generated answer.
type Candidate struct {
	Content Content `json:"content"`
}

// Response is the subset of the proxy's response the dashboard reads.
type Response struct {
	Candidates []Candidate `json:"candidates"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Text returns candidates[0].content.parts[0].text.
func (r *Response) Text() (string, bool) {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return "", false
	}
	text := r.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// Client calls the narrative proxy.
type Client struct {
	HTTPClient httputil.HTTPClient
	BaseURL    string
}

// NewClient creates a client for the proxy at baseURL.
func NewClient(httpClient httputil.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(nil)
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Generate posts prompt and returns the generated text. When the response
// carries no text it returns NoSummaryText together with ErrNoCandidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := httputil.PostJSON(ctx, c.HTTPClient, c.BaseURL+SummaryPath, NewRequest(prompt))
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	body, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("reading summary response: %w", err)
	}
	if !httputil.IsSuccess(resp.StatusCode) {
		return "", fmt.Errorf("summary service returned %d", resp.StatusCode)
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return NoSummaryText, fmt.Errorf("%w: %v", ErrNoCandidate, err)
	}
	text, ok := decoded.Text()
	if !ok {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return NoSummaryText, fmt.Errorf("%w: %s", ErrNoCandidate, decoded.Error.Message)
		}
		return NoSummaryText, ErrNoCandidate
	}
	return text, nil
}
