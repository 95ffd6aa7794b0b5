// Package commands provides CLI commands for geminichat.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/api"
	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/models"
	"github.com/diogo/geminichat/internal/tui"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// errTurnFailed is returned after the failure text was already shown
var errTurnFailed = errors.New("turn failed")

// flags holds the values of the command-line flags
type flags struct {
	model   string
	verbose bool
	output  string
	file    string
	raw     bool
	addr    string
}

type app struct {
	deps  *Dependencies
	flags flags
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps}

	rootCmd := &cobra.Command{
		Use:   "geminichat [prompt]",
		Short: "Chat with Google Gemini from the terminal or the browser",
		Long: `geminichat sends your messages to the Gemini generateContent API and
shows the answers. Each request carries only the latest message.

The API key is read from GEMINI_API_KEY (or API_KEY), also from a .env file.

Examples:
  geminichat chat                       Start interactive chat
  geminichat serve --addr :8080         Serve the browser chat widget
  geminichat "What is Go?"              Send a single message
  geminichat -f prompt.md               Read the message from a file
  cat prompt.md | geminichat            Read the message from stdin
  geminichat "Hello" -o response.md     Save the answer to a file
  geminichat config set model pro       Change the default model`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(a.deps.Stdout, "geminichat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := a.readPrompt(args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return a.runQuery(cmd.Context(), prompt)
		},
	}

	rootCmd.SetIn(deps.Stdin)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().StringVarP(&a.flags.model, "model", "m", "", "Model to use (flash, flash-lite, pro or a model id)")
	rootCmd.PersistentFlags().BoolVar(&a.flags.verbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&a.flags.output, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&a.flags.file, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&a.flags.raw, "raw", false, "Print only the response text")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(a.newChatCmd())
	rootCmd.AddCommand(a.newServeCmd())
	rootCmd.AddCommand(a.newConfigCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := NewDependencies()
	if err := NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errTurnFailed) {
			fmt.Fprintln(deps.Stderr, tui.FormatError(err))
		}
		stop()
		os.Exit(1)
	}
}

// readPrompt takes the prompt from -f, stdin or the positional argument, in that order
func (a *app) readPrompt(args []string) (string, bool, error) {
	if a.flags.file != "" {
		data, err := os.ReadFile(a.flags.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if a.deps.StdinIsPipe != nil && a.deps.StdinIsPipe() {
		data, err := io.ReadAll(a.deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

// settings is the resolved configuration of one command run
type settings struct {
	cfg    config.Config
	apiKey string
	model  models.Model
}

// loadSettings merges .env, the config file, GEMINICHAT_* variables and flags, in increasing precedence
func (a *app) loadSettings() (settings, error) {
	if err := config.LoadEnv(); err != nil {
		return settings{}, err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg = config.ApplyEnv(cfg)

	if a.flags.model != "" {
		cfg.Model = a.flags.model
	}
	if a.flags.verbose {
		cfg.Verbose = true
	}

	return settings{
		cfg:    cfg,
		apiKey: config.APIKeyFromEnv(),
		model:  models.ModelFromName(cfg.Model),
	}, nil
}

// newGenerator builds the client for s; callers close it
func (a *app) newGenerator(s settings) (api.GeminiClientInterface, error) {
	gen, err := a.deps.NewGenerator(s.apiKey,
		api.WithModel(s.model),
		api.WithBaseURL(s.cfg.BaseURL),
		api.WithTimeout(time.Duration(s.cfg.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return gen, nil
}

func missingKeyMessage() string {
	return "no API key found in " + strings.Join(config.APIKeyEnvVars, " or ")
}
