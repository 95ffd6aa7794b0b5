package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// Response paths read with gjson
const (
	PathCandidates    = "candidates"
	PathParts         = "candidates.0.content.parts"
	PathCandidateText = "candidates.0.content.parts.0.text"
	PathFinishReason  = "candidates.0.finishReason"
	PathError         = "error"
	PathErrorCode     = "error.code"
	PathErrorMessage  = "error.message"
	PathErrorStatus   = "error.status"
)

const (
	maxResponseBytes = 4 << 20
	maxErrorBody     = 4096
)

// Generate sends prompt and returns the first candidate's text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	output, err := c.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return output.Text, nil
}

// GenerateContent sends prompt as a single-turn request.
// No conversation history is included in the payload.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (*models.GenerateOutput, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	model := c.GetModel()
	endpoint := models.GenerateEndpoint(c.baseURL, model)

	payload, err := json.Marshal(models.NewGenerateRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+query.Encode(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Errors from the transport embed the request URL, which carries the key.
		return nil, apierrors.NewNetworkError("generate content", endpoint, transportCause(ctx, err))
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apierrors.NewNetworkError("read response", endpoint, transportCause(ctx, err))
	}

	output, err := parseResponse(resp.StatusCode, body, endpoint)
	if err != nil {
		return nil, err
	}
	output.Model = model.APIID
	return output, nil
}

// transportCause replaces err by the context error when the context ended,
// so callers can tell cancellation and timeouts apart from I/O failures
func transportCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return apierrors.NewTimeoutError("generate content")
		}
		return ctxErr
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// parseResponse checks the body against the generateContent response shape.
// An explicit error object wins over the status code, so the remote message is kept.
func parseResponse(statusCode int, body []byte, endpoint string) (*models.GenerateOutput, error) {
	valid := gjson.ValidBytes(body)

	if valid {
		if errObj := gjson.GetBytes(body, PathError); errObj.IsObject() {
			return nil, apierrors.NewRemoteError(
				statusCode,
				int(gjson.GetBytes(body, PathErrorCode).Int()),
				gjson.GetBytes(body, PathErrorMessage).String(),
				gjson.GetBytes(body, PathErrorStatus).String(),
			)
		}
	}

	if statusCode < 200 || statusCode >= 300 {
		return nil, apierrors.NewAPIErrorWithBody(statusCode, endpoint, "generate content failed", truncate(body, maxErrorBody))
	}

	if !valid {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	candidates := gjson.GetBytes(body, PathCandidates)
	if !candidates.IsArray() || len(candidates.Array()) == 0 {
		return nil, apierrors.NewParseError("no candidates found", PathCandidates)
	}

	parts := gjson.GetBytes(body, PathParts)
	if !parts.IsArray() || len(parts.Array()) == 0 {
		return nil, apierrors.NewParseError("no parts in first candidate", PathParts)
	}

	text := gjson.GetBytes(body, PathCandidateText)
	if text.Type != gjson.String || text.String() == "" {
		return nil, apierrors.NewParseError("empty candidate text", PathCandidateText)
	}

	return &models.GenerateOutput{
		Text:         text.String(),
		FinishReason: gjson.GetBytes(body, PathFinishReason).String(),
		Candidates:   len(candidates.Array()),
	}, nil
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit])
}
