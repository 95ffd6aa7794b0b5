package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/geminichat/internal/config"
	"github.com/diogo/geminichat/internal/render"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration",
		Long: `Show the configuration file and the effective settings.

The API key is never stored here; set GEMINI_API_KEY (or API_KEY) in the
environment or in a .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showConfig()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setConfig(args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List the keys accepted by config set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range config.Keys() {
				fmt.Fprintln(a.deps.Stdout, k)
			}
			return nil
		},
	})

	return cmd
}

func (a *app) showConfig() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	s, err := a.loadSettings()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	keyState := successStyle.Render("set")
	if s.apiKey == "" {
		keyState = warningStyle.Render("not set")
	}

	out := a.deps.Stdout
	fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Config file:"), path)
	fmt.Fprintf(out, "%s %s (%s)\n", keyStyle.Render("API key:"), keyState, strings.Join(config.APIKeyEnvVars, ", "))
	fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Model:"), s.model.APIID)
	fmt.Fprintf(out, "%s %s\n", keyStyle.Render("Themes:"), dimStyle.Render(strings.Join(render.PaletteNames(), ", ")))
	fmt.Fprintln(out, string(data))
	return nil
}

// setConfig edits the file only; environment and flag overrides are not written back
func (a *app) setConfig(key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.SetValue(&cfg, key, value); err != nil {
		return err
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintln(a.deps.Stdout, successStyle.Render(fmt.Sprintf("✓ %s = %s", key, value)))
	return nil
}
