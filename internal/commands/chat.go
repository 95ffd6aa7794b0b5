package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/chat"
	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/logging"
	"github.com/diogo/geminichat/internal/render"
	"github.com/diogo/geminichat/internal/tui"
)

func (a *app) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat in the terminal.

Commands inside the chat:
  /copy            Copy the last reply to the clipboard
  /export [path]   Save the transcript as Markdown
  /help            Show the commands
  exit, quit       Leave the chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context())
		},
	}
}

// runChat runs the terminal chat. Logs go to a file so they do not corrupt the screen.
func (a *app) runChat(ctx context.Context) error {
	s, err := a.loadSettings()
	if err != nil {
		return err
	}

	dir, err := config.EnsureConfigDir()
	if err != nil {
		return err
	}

	logger, err := logging.NewFileLogger(filepath.Join(dir, "logs"), s.cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Close()

	if s.apiKey == "" {
		logger.Warn(missingKeyMessage())
		fmt.Fprintln(a.deps.Stderr, warningStyle.Render("⚠ "+missingKeyMessage()))
	}

	if s.cfg.TUITheme != "" {
		palette, ok := render.PaletteByName(s.cfg.TUITheme)
		if !ok {
			logger.Warn("unknown tui theme, using default", "theme", s.cfg.TUITheme)
		}
		tui.ApplyPalette(palette)
	}

	gen, err := a.newGenerator(s)
	if err != nil {
		return err
	}
	defer gen.Close()

	controller := chat.NewController(gen,
		chat.WithLogger(logger.Logger),
		chat.WithFailureText(s.cfg.FailureMessage),
	)
	defer controller.Close()

	model := gen.GetModel().APIID
	logger.Info("chat started", "model", model, "log", logger.Path)

	return a.deps.RunChat(ctx, controller, tui.Options{
		ModelName: model,
		Render:    render.OptionsFromConfig(s.cfg.Markdown),
		CopyFunc:  a.deps.Copy,
		ExportDir: filepath.Join(dir, "exports"),
	})
}
