package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/logging"
	"github.com/diogo/geminichat/internal/render"
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame: a spinner, the message and three dots
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	lit := (s.frame / 3) % 3
	for i := 0; i < 3; i++ {
		color := colorTextMute
		if i == lit {
			color = gradientColors[(s.frame+i)%len(gradientColors)]
		}
		dots.WriteString(lipgloss.NewStyle().Foreground(color).Render("●"))
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	fmt.Fprintf(s.out, "%s %s\n", checkmark, successStyle.Render(message))
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery sends a single turn through a controller and prints the answer.
// With --raw only the answer text is written.
func (a *app) runQuery(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	s, err := a.loadSettings()
	if err != nil {
		return err
	}

	logger := logging.New(a.deps.Stderr, s.cfg.Verbose)
	if s.apiKey == "" {
		logger.Warn(missingKeyMessage())
	}
	gen, err := a.newGenerator(s)
	if err != nil {
		return err
	}
	defer gen.Close()

	logger.Debug("sending prompt", "model", gen.GetModel().APIID, "chars", len(prompt))

	controller := chat.NewController(gen,
		chat.WithLogger(logger),
		chat.WithFailureText(s.cfg.FailureMessage),
	)
	defer controller.Close()

	var spin *spinner
	if !a.flags.raw {
		spin = newSpinner(a.deps.Stderr, "Asking "+gen.GetModel().APIID)
		spin.start()
	}

	result, err := controller.Submit(ctx, prompt)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}

	if result.Outcome != chat.Resolved {
		if spin != nil {
			spin.stopWithError()
		}
		fmt.Fprintln(a.deps.Stderr, failureStyle.Render(result.Text))
		if s.cfg.Verbose && result.Err != nil {
			fmt.Fprintln(a.deps.Stderr, formatErrorMessage(result.Err, "Generation failed"))
		}
		return errTurnFailed
	}

	if spin != nil {
		spin.stopWithSuccess(fmt.Sprintf("Answered in %s", result.Duration.Round(time.Millisecond)))
	}

	return a.writeAnswer(s, result.Text)
}

// writeAnswer prints text to stdout, a file or both, decorating it unless --raw
func (a *app) writeAnswer(s settings, text string) error {
	if a.flags.raw {
		if a.flags.output != "" {
			if err := os.WriteFile(a.flags.output, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		}
		fmt.Fprint(a.deps.Stdout, text)
		return nil
	}

	if s.cfg.CopyToClipboard {
		if err := a.deps.Copy(text); err != nil {
			fmt.Fprintln(a.deps.Stderr, warningStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(a.deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if a.flags.output != "" {
		if err := os.WriteFile(a.flags.output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintln(a.deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Response saved to %s", a.flags.output)))
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	renderer := render.NewRenderer(render.OptionsFromConfig(s.cfg.Markdown))
	rendered := renderer.Reply(text, bubbleWidth-4)

	fmt.Fprintln(a.deps.Stdout, assistantLabelStyle.Render("✦ Gemini"))
	fmt.Fprintln(a.deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
	return nil
}
