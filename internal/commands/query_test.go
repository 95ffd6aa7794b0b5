package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/geminichat/internal/errors"
)

func TestSpinnerLifecycle_StopWithSuccess(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Connecting")
	s.start()
	time.Sleep(200 * time.Millisecond)
	s.stopWithSuccess("done")

	out := buf.String()
	if !strings.Contains(out, "Connecting") {
		t.Errorf("expected spinner message, got %q", out)
	}
	if !strings.Contains(out, "✓") || !strings.Contains(out, "done") {
		t.Errorf("expected success line, got %q", out)
	}
	// cursor restored
	if !strings.Contains(out, "\033[?25h") {
		t.Error("expected cursor to be shown again")
	}
}

func TestSpinnerLifecycle_StopWithError(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Connecting")
	s.start()
	time.Sleep(30 * time.Millisecond)
	s.stopWithError()
	// second stop must not panic
	s.stopOnce()

	if strings.Contains(buf.String(), "✓") {
		t.Error("error stop should not print success")
	}
}

func TestFormatErrorMessage(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Errorf("formatErrorMessage(nil) = %q", got)
	}

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "http status",
			err:  apierrors.NewAPIError(503, "https://example.test/gen", "generate content failed"),
			want: []string{"Generation failed", "HTTP Status: 503", "Endpoint: https://example.test/gen"},
		},
		{
			name: "remote error with hint",
			err:  apierrors.NewRemoteError(400, 400, "API key not valid", "INVALID_ARGUMENT"),
			want: []string{"Message: API key not valid", "GEMINI_API_KEY"},
		},
		{
			name: "network",
			err:  apierrors.NewNetworkError("generate content", "", errors.New("dial tcp")),
			want: []string{"internet connection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatErrorMessage(tt.err, "Generation failed")
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("formatErrorMessage() = %q, missing %q", got, w)
				}
			}
		})
	}
}
