package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/charcount/internal/app"
	"github.com/chriscorrea/charcount/internal/config"
	"github.com/chriscorrea/charcount/internal/counter"
)

// buildConfig merges the loaded settings, format shortcut flags and positional
// sources into an app.Config.
func buildConfig(cmd *cobra.Command, args []string, cfg config.Config) (app.Config, error) {
	method, err := counter.ParseCountingMethod(cfg.Count.Method)
	if err != nil {
		return app.Config{}, err
	}

	format := cfg.Output.Format
	textFlag, _ := cmd.Flags().GetBool("text")
	jsonFlag, _ := cmd.Flags().GetBool("json")
	mdFlag, _ := cmd.Flags().GetBool("md")
	switch {
	case textFlag:
		format = config.FormatText
	case jsonFlag:
		format = config.FormatJSON
	case mdFlag:
		format = config.FormatMarkdown
	}
	outputFormat, err := app.ParseOutputFormat(format)
	if err != nil {
		return app.Config{}, err
	}

	// no arguments: read stdin
	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	return app.Config{
		Sources:        sources,
		CountingMethod: method,
		OutputFormat:   outputFormat,
		HTML:           cfg.HTML.Enabled,
		Selector:       cfg.HTML.Selector,
		IncludeAll:     cfg.HTML.IncludeAll,
		Plain:          cfg.HTML.Plain,
		Stream:         cfg.Count.Stream,
		Concurrency:    cfg.Fetch.Concurrency,
		Quiet:          cfg.Output.Quiet,
		Debug:          cfg.Debug,
		Stderr:         cmd.ErrOrStderr(),
	}, nil
}

// setupLogger configures the default slog logger based on debug mode
func setupLogger(w io.Writer, debug bool) {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func newRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "charcount [sources...]",
		Short: "Count non-whitespace characters per line",
		Long: `Charcount splits text into lines and reports, for every line, how many
non-whitespace characters it holds, plus the total. Sources may be local files,
URLs, or standard input. Lines end at "\n" or "\r\n".

Examples:
  charcount great-gatsby.txt
  charcount --json a.txt b.txt
  cat notes.txt | charcount -m words
  charcount --html -s article https://example.com`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			appCfg, err := buildConfig(cmd, args, loaded)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			setupLogger(cmd.ErrOrStderr(), appCfg.Debug)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := app.Run(ctx, appCfg)
			if err != nil {
				return fmt.Errorf("charcount failed: %w", err)
			}

			return app.Render(cmd.OutOrStdout(), report, appCfg.OutputFormat)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.Flags(), defaults)

	// output format shortcuts override --format
	cmd.Flags().Bool("text", false, "Output in plain text format (default)")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("md", false, "Output in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("text", "json", "md")
	cmd.MarkFlagsMutuallyExclusive("stream", "html")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
