package api

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

const successBody = `{"candidates":[{"content":{"parts":[{"text":"hello"}],"role":"model"},"finishReason":"STOP"}]}`

func newTestClient(t *testing.T, doer HTTPDoer, opts ...ClientOption) *GeminiClient {
	t.Helper()
	opts = append([]ClientOption{WithHTTPClient(doer)}, opts...)
	client, err := NewClient("test-key", opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestGenerateContent_Success(t *testing.T) {
	mock := NewMockHttpClient([]byte(successBody), 200)
	client := newTestClient(t, mock)

	output, err := client.GenerateContent(context.Background(), "hi")
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}

	if output.Text != "hello" {
		t.Errorf("Text = %q, want hello", output.Text)
	}
	if output.FinishReason != "STOP" {
		t.Errorf("FinishReason = %q, want STOP", output.FinishReason)
	}
	if output.Model != models.DefaultModel.APIID {
		t.Errorf("Model = %q", output.Model)
	}
	if !mock.Response.Body.(*MockResponseBody).closed {
		t.Error("response body was not closed")
	}
}

func TestGenerateContent_Request(t *testing.T) {
	mock := NewMockHttpClient([]byte(successBody), 200)
	client := newTestClient(t, mock, WithModel(models.ModelPro), WithBaseURL("http://127.0.0.1:9"))

	if _, err := client.Generate(context.Background(), "What is 2+2?"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	req := mock.LastRequest
	if req.Method != "POST" {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if got := req.URL.Path; got != "/v1beta/models/gemini-2.5-pro:generateContent" {
		t.Errorf("Path = %s", got)
	}
	query, _ := url.ParseQuery(req.URL.RawQuery)
	if query.Get("key") != "test-key" {
		t.Errorf("key query = %q, want test-key", query.Get("key"))
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := gjson.ParseBytes(mock.LastBody)
	if n := len(body.Get("contents").Array()); n != 1 {
		t.Errorf("contents has %d entries, want 1", n)
	}
	if n := len(body.Get("contents.0.parts").Array()); n != 1 {
		t.Errorf("parts has %d entries, want 1", n)
	}
	if got := body.Get("contents.0.parts.0.text").String(); got != "What is 2+2?" {
		t.Errorf("text = %q", got)
	}
}

func TestGenerateContent_EmptyPrompt(t *testing.T) {
	mock := NewMockHttpClient([]byte(successBody), 200)
	client := newTestClient(t, mock)

	if _, err := client.GenerateContent(context.Background(), ""); err == nil {
		t.Error("Expected error for empty prompt")
	}
	if mock.LastRequest != nil {
		t.Error("No request should be sent for an empty prompt")
	}
}

func TestGenerateContent_Closed(t *testing.T) {
	mock := NewMockHttpClient([]byte(successBody), 200)
	client := newTestClient(t, mock)
	client.Close()

	if !client.IsClosed() {
		t.Fatal("IsClosed() = false after Close()")
	}
	if _, err := client.GenerateContent(context.Background(), "hi"); err == nil {
		t.Error("Expected error from closed client")
	}
}

func TestGenerateContent_TransportError(t *testing.T) {
	cause := &url.Error{Op: "Post", URL: "https://x/?key=test-key", Err: errors.New("connection refused")}
	client := newTestClient(t, NewMockHttpClientWithError(cause))

	_, err := client.GenerateContent(context.Background(), "hi")
	if err == nil {
		t.Fatal("Expected error")
	}
	if apierrors.Classify(err) != apierrors.KindTransport {
		t.Errorf("Classify() = %q, want transport", apierrors.Classify(err))
	}
	if strings.Contains(err.Error(), "test-key") {
		t.Errorf("error leaks the API key: %v", err)
	}
}

func TestGenerateContent_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := newTestClient(t, NewMockHttpClientWithError(errors.New("request canceled")))

	_, err := client.GenerateContent(ctx, "hi")
	if apierrors.Classify(err) != apierrors.KindCanceled {
		t.Errorf("Classify() = %q, want canceled (err = %v)", apierrors.Classify(err), err)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantKind apierrors.Kind
	}{
		{
			name:     "success",
			status:   200,
			body:     `{"candidates":[{"content":{"parts":[{"text":"4"}]}}]}`,
			wantText: "4",
		},
		{
			name:     "extra parts are ignored",
			status:   200,
			body:     `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}},{"content":{"parts":[{"text":"c"}]}}]}`,
			wantText: "a",
		},
		{
			name:     "http failure without body",
			status:   500,
			body:     ``,
			wantKind: apierrors.KindHTTPStatus,
		},
		{
			name:     "http failure with html body",
			status:   502,
			body:     `<html>bad gateway</html>`,
			wantKind: apierrors.KindHTTPStatus,
		},
		{
			name:     "explicit error object",
			status:   400,
			body:     `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			wantKind: apierrors.KindRemoteError,
		},
		{
			name:     "error object with success status",
			status:   200,
			body:     `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`,
			wantKind: apierrors.KindRemoteError,
		},
		{
			name:     "candidates absent",
			status:   200,
			body:     `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantKind: apierrors.KindMalformedResponse,
		},
		{
			name:     "candidates empty",
			status:   200,
			body:     `{"candidates":[]}`,
			wantKind: apierrors.KindMalformedResponse,
		},
		{
			name:     "empty parts",
			status:   200,
			body:     `{"candidates":[{"content":{"parts":[]}}]}`,
			wantKind: apierrors.KindMalformedResponse,
		},
		{
			name:     "missing content",
			status:   200,
			body:     `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantKind: apierrors.KindMalformedResponse,
		},
		{
			name:     "empty text",
			status:   200,
			body:     `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			wantKind: apierrors.KindMalformedResponse,
		},
		{
			name:     "text is not a string",
			status:   200,
			body:     `{"candidates":[{"content":{"parts":[{"text":4}]}}]}`,
			wantKind: apierrors.KindMalformedResponse,
		},
		{
			name:     "invalid json",
			status:   200,
			body:     `{"candidates":`,
			wantKind: apierrors.KindMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := parseResponse(tt.status, []byte(tt.body), "https://example.test/gen")

			if tt.wantKind != apierrors.KindNone {
				if err == nil {
					t.Fatalf("Expected %s error, got output %+v", tt.wantKind, output)
				}
				if got := apierrors.Classify(err); got != tt.wantKind {
					t.Errorf("Classify() = %q, want %q (err = %v)", got, tt.wantKind, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseResponse() error = %v", err)
			}
			if output.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", output.Text, tt.wantText)
			}
		})
	}
}

func TestParseResponse_RemoteMessage(t *testing.T) {
	body := `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`
	_, err := parseResponse(429, []byte(body), "e")

	if msg := apierrors.GetRemoteMessage(err); msg != "Resource has been exhausted" {
		t.Errorf("GetRemoteMessage() = %q", msg)
	}
	if status := apierrors.GetHTTPStatus(err); status != 429 {
		t.Errorf("GetHTTPStatus() = %d, want 429", status)
	}
}

func TestParseResponse_TruncatesErrorBody(t *testing.T) {
	body := strings.Repeat("x", maxErrorBody*2)
	_, err := parseResponse(503, []byte(body), "e")

	if got := len(apierrors.GetResponseBody(err)); got != maxErrorBody {
		t.Errorf("body length = %d, want %d", got, maxErrorBody)
	}
}
