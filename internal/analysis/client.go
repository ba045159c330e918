// Package analysis is the client for the external water analysis service
// (POST /api/analyze) plus a fixture-backed stand-in for local development.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/banshee-data/hydro.report/internal/httputil"
	"github.com/banshee-data/hydro.report/internal/water"
)

// AnalyzePath is the analysis endpoint relative to the service base URL.
const AnalyzePath = "/api/analyze"

// maxErrorMessage bounds error text taken from a non-JSON response body, in
// bytes.
const maxErrorMessage = 200

// Analyzer runs one analysis for a point. The scan controller depends on
// this interface; Client is the production implementation.
type Analyzer interface {
	Analyze(ctx context.Context, p water.Point) (*water.AnalysisResult, error)
}

// Client calls the analysis service.
type Client struct {
	HTTPClient httputil.HTTPClient
	BaseURL    string
}

// NewClient creates a client for the service at baseURL.
func NewClient(httpClient httputil.HTTPClient, baseURL string) *Client {
	if httpClient == nil {
		httpClient = httputil.NewStandardClient(nil)
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Analyze posts the point and decodes the result. Errors are one of
// *TransportError, *ApplicationError, ErrCancelled or ErrTimeout.
func (c *Client) Analyze(ctx context.Context, p water.Point) (*water.AnalysisResult, error) {
	resp, err := httputil.PostJSON(ctx, c.HTTPClient, c.BaseURL+AnalyzePath, water.NewAnalysisRequest(p))
	if err != nil {
		return nil, classifyContextErr(ctx, err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, classifyContextErr(ctx, err)
	}

	if !httputil.IsSuccess(resp.StatusCode) {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var decoded water.AnalysisResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	if decoded.Error != "" {
		return nil, &ApplicationError{Message: decoded.Error}
	}
	result := decoded.AnalysisResult
	return &result, nil
}

// classifyContextErr maps an error to ErrCancelled/ErrTimeout when it was
// caused by the caller's context, otherwise wraps it as a transport error.
func classifyContextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrCancelled
	}
	return &TransportError{Err: err}
}

// errorMessage extracts the error field from a JSON error body, falling back
// to the trimmed body text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessage {
		n := maxErrorMessage
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
		msg = msg[:n]
	}
	return msg
}
