package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewGenerator builds the generation client; the API key is injected here.
	// The caller closes the client.
	NewGenerator func(apiKey string, opts ...api.ClientOption) (api.GeminiClientInterface, error)

	// RunChat runs the terminal chat until the user quits
	RunChat func(ctx context.Context, controller *chat.Controller, opts tui.Options) error

	// Copy writes text to the clipboard
	Copy func(string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsPipe reports whether a prompt is being piped in
	StdinIsPipe func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewGenerator: func(apiKey string, opts ...api.ClientOption) (api.GeminiClientInterface, error) {
			return api.NewClient(apiKey, opts...)
		},
		RunChat:     tui.RunChat,
		Copy:        clipboard.WriteAll,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		StdinIsPipe: stdinIsPipe,
	}
}

func stdinIsPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
