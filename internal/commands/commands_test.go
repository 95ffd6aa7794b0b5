package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/tui"
)

// noopDoer keeps api.NewClient from building a real TLS client
type noopDoer struct{}

func (noopDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("not used")
}

type testEnv struct {
	deps    *Dependencies
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	home    string
	apiKey  string
	options []api.ClientOption
}

func newTestEnv(t *testing.T, gen api.GeminiClientInterface) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("GEMINICHAT_HOME", home)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINICHAT_MODEL", "")
	t.Setenv("GEMINICHAT_VERBOSE", "")
	// plain glamour output so answers can be matched as substrings
	t.Setenv("GLAMOUR_STYLE", "notty")

	env := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		home:   home,
	}
	env.deps = &Dependencies{
		NewGenerator: func(apiKey string, opts ...api.ClientOption) (api.GeminiClientInterface, error) {
			env.apiKey = apiKey
			env.options = opts
			return gen, nil
		},
		RunChat: func(ctx context.Context, controller *chat.Controller, opts tui.Options) error {
			t.Fatal("RunChat not expected")
			return nil
		},
		Copy:        func(string) error { return nil },
		Stdin:       strings.NewReader(""),
		Stdout:      env.stdout,
		Stderr:      env.stderr,
		StdinIsPipe: func() bool { return false },
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// client builds a real client from the captured options
func (e *testEnv) client(t *testing.T) *api.GeminiClient {
	t.Helper()
	opts := append([]api.ClientOption{}, e.options...)
	opts = append(opts, api.WithHTTPClient(noopDoer{}))
	c, err := api.NewClient(e.apiKey, opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestRunQuery_RawOutput(t *testing.T) {
	mock := api.NewMockGeminiClient("4")
	env := newTestEnv(t, mock)

	if err := env.run("--raw", "What is 2+2?"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if env.stdout.String() != "4" {
		t.Errorf("stdout = %q, want %q", env.stdout.String(), "4")
	}
	if prompts := mock.Prompts(); len(prompts) != 1 || prompts[0] != "What is 2+2?" {
		t.Errorf("prompts = %v", prompts)
	}
	if !mock.IsClosed() {
		t.Error("client should be closed after the query")
	}
}

func TestRunQuery_Decorated(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("Hello there"))

	if err := env.run("hi"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.Contains(env.stdout.String(), "Gemini") {
		t.Errorf("expected assistant label in stdout, got %q", env.stdout.String())
	}
	if !strings.Contains(env.stdout.String(), "Hello there") {
		t.Errorf("expected answer in stdout, got %q", env.stdout.String())
	}
	if !strings.Contains(env.stderr.String(), "Answered in") {
		t.Errorf("expected spinner success on stderr, got %q", env.stderr.String())
	}
}

func TestRunQuery_FailureShowsFailureText(t *testing.T) {
	mock := api.NewFailingMockGeminiClient(apierrors.NewAPIError(500, "https://example.test", "generate content failed"))
	env := newTestEnv(t, mock)

	err := env.run("--raw", "hello")
	if !errors.Is(err, errTurnFailed) {
		t.Fatalf("run() error = %v, want errTurnFailed", err)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", env.stdout.String())
	}
	if !strings.Contains(env.stderr.String(), models.DefaultFailureText) {
		t.Errorf("stderr should contain failure text, got %q", env.stderr.String())
	}
}

func TestRunQuery_CustomFailureMessage(t *testing.T) {
	env := newTestEnv(t, api.NewFailingMockGeminiClient(errors.New("boom")))
	if err := env.run("config", "set", "failure_message", "Sorry, try again"); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	err := env.run("--raw", "hello")
	if !errors.Is(err, errTurnFailed) {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.stderr.String(), "Sorry, try again") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestRunQuery_SendsStdinAsRead(t *testing.T) {
	mock := api.NewMockGeminiClient("ok")
	env := newTestEnv(t, mock)
	env.deps.StdinIsPipe = func() bool { return true }
	env.deps.Stdin = strings.NewReader("  piped prompt \n")

	if err := env.run("--raw"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if prompts := mock.Prompts(); len(prompts) != 1 || prompts[0] != "  piped prompt \n" {
		t.Errorf("prompts = %q, want the input unchanged", prompts)
	}
}

func TestRunQuery_FileInAndOut(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "prompt.md")
	out := filepath.Join(dir, "answer.md")
	if err := os.WriteFile(in, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}

	mock := api.NewMockGeminiClient("saved answer")
	env := newTestEnv(t, mock)

	if err := env.run("-f", in, "-o", out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "saved answer" {
		t.Errorf("file = %q", string(data))
	}
	if mock.Prompts()[0] != "from file" {
		t.Errorf("prompt = %q", mock.Prompts()[0])
	}
	if !strings.Contains(env.stderr.String(), "Response saved to") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestRunQuery_EmptyPrompt(t *testing.T) {
	mock := api.NewMockGeminiClient("unused")
	env := newTestEnv(t, mock)

	err := env.run("   ")
	if err == nil || !strings.Contains(err.Error(), "prompt cannot be empty") {
		t.Fatalf("run() error = %v", err)
	}
	if mock.Calls() != 0 {
		t.Errorf("expected no calls, got %d", mock.Calls())
	}
}

func TestRunQuery_CopyToClipboard(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("copy me"))
	var copied string
	env.deps.Copy = func(s string) error {
		copied = s
		return nil
	}
	if err := env.run("config", "set", "copy_to_clipboard", "true"); err != nil {
		t.Fatal(err)
	}

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if copied != "copy me" {
		t.Errorf("copied = %q", copied)
	}
}

func TestSettings_KeyAndModelReachClient(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("ok"))
	t.Setenv("GEMINI_API_KEY", "test-key")

	if err := env.run("--raw", "-m", "pro", "hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if env.apiKey != "test-key" {
		t.Errorf("apiKey = %q", env.apiKey)
	}
	if got := env.client(t).GetModel(); got != models.ModelPro {
		t.Errorf("model = %+v, want %+v", got, models.ModelPro)
	}
}

func TestSettings_FallbackKeyAndEnvModel(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("ok"))
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("GEMINICHAT_MODEL", "gemini-exp-1206")

	if err := env.run("--raw", "hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if env.apiKey != "fallback-key" {
		t.Errorf("apiKey = %q", env.apiKey)
	}
	if got := env.client(t).GetModel().APIID; got != "gemini-exp-1206" {
		t.Errorf("model = %q", got)
	}
}

func TestRoot_NoPromptShowsHelp(t *testing.T) {
	mock := api.NewMockGeminiClient("unused")
	env := newTestEnv(t, mock)

	if err := env.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Usage:") {
		t.Errorf("expected usage, got %q", env.stdout.String())
	}
	if mock.Calls() != 0 {
		t.Errorf("expected no calls, got %d", mock.Calls())
	}
}

func TestRoot_Version(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("unused"))

	if err := env.run("--version"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "geminichat "+Version) {
		t.Errorf("stdout = %q", env.stdout.String())
	}
}

func TestConfig_SetAndShow(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("unused"))

	if err := env.run("config", "set", "model", "pro"); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Model != "pro" {
		t.Errorf("Model = %q, want pro", cfg.Model)
	}

	env.stdout.Reset()
	if err := env.run("config"); err != nil {
		t.Fatalf("config error = %v", err)
	}
	out := env.stdout.String()
	if !strings.Contains(out, filepath.Join(env.home, "config.json")) {
		t.Errorf("expected config path in %q", out)
	}
	if !strings.Contains(out, "not set") {
		t.Errorf("expected missing key notice in %q", out)
	}
	if !strings.Contains(out, models.ModelPro.APIID) {
		t.Errorf("expected model id in %q", out)
	}
}

func TestConfig_SetRejectsUnknownKey(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("unused"))

	err := env.run("config", "set", "nope", "1")
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("error = %v", err)
	}
}

func TestConfig_Keys(t *testing.T) {
	env := newTestEnv(t, api.NewMockGeminiClient("unused"))

	if err := env.run("config", "keys"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.stdout.String(), "failure_message") {
		t.Errorf("stdout = %q", env.stdout.String())
	}
}

func TestChat_PassesOptions(t *testing.T) {
	mock := api.NewMockGeminiClient("unused")
	mock.Model = models.ModelFlashLite
	env := newTestEnv(t, mock)

	var got tui.Options
	var controller *chat.Controller
	env.deps.RunChat = func(ctx context.Context, c *chat.Controller, opts tui.Options) error {
		got = opts
		controller = c
		return nil
	}

	if err := env.run("chat", "-m", "flash-lite"); err != nil {
		t.Fatalf("chat error = %v", err)
	}

	if got.ModelName != models.ModelFlashLite.APIID {
		t.Errorf("ModelName = %q", got.ModelName)
	}
	if got.ExportDir != filepath.Join(env.home, "exports") {
		t.Errorf("ExportDir = %q", got.ExportDir)
	}
	if got.CopyFunc == nil {
		t.Error("CopyFunc should be set")
	}
	if controller == nil {
		t.Fatal("RunChat was not called")
	}
	if !controller.Closed() {
		t.Error("controller should be closed after the chat returns")
	}
	if !mock.IsClosed() {
		t.Error("client should be closed after the chat returns")
	}
	if controller.FailureText() != models.DefaultFailureText {
		t.Errorf("FailureText() = %q", controller.FailureText())
	}

	logs, err := os.ReadDir(filepath.Join(env.home, "logs"))
	if err != nil || len(logs) != 1 {
		t.Errorf("expected one log file, got %v (err %v)", logs, err)
	}
	if !strings.Contains(env.stderr.String(), "no API key found") {
		t.Errorf("expected missing key warning, got %q", env.stderr.String())
	}
}

func TestServe_StopsWithContext(t *testing.T) {
	mock := api.NewMockGeminiClient("unused")
	env := newTestEnv(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCmd(env.deps)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0"})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve error = %v", err)
	}
	if !mock.IsClosed() {
		t.Error("client should be closed after the server stops")
	}
}
