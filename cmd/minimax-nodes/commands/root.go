package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
)

const appName = "minimax-nodes"

var (
	cfgFile      string
	contextName  string
	outputFile   string
	inputFile    string
	outputFormat string
	outputJSON   bool
	jqQuery      string
	verbose      bool
	ephemeral    bool

	globalConfig *cli.Config
	globalPaths  *cli.Paths
)

var rootCmd = &cobra.Command{
	Use:   "minimax-nodes",
	Short: "Run the JM MiniMax workflow nodes from the command line",
	Long: `minimax-nodes runs the JM-MiniMax-API workflow nodes outside a graph editor.

Every node takes its parameters from a request file (-f), --set key=value
overrides and the active context, and prints its outputs:
  - Speech: text-to-speech, voice cloning, voice design, load audio
  - Video:  generation, status checks, waiting, download
  - Music:  song generation from prompt and lyrics

Configuration is stored in ~/.jm-minimax/minimax-nodes/ and supports multiple
contexts, similar to kubectl's context management. Without a context the
MINIMAX_API_KEY and MINIMAX_GROUP_ID environment variables are used.

Examples:
  # Set up a context
  minimax-nodes config add-context studio --api-key YOUR_API_KEY --use

  # Synthesize speech
  minimax-nodes speech synthesize --set text="Hello there" --set speed=1.2

  # Start a video and wait for it
  minimax-nodes video generate -f video.yaml --wait --download

  # Pipe a single output
  minimax-nodes video status 106916112212032 --jq .outputs.status
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx, which cancels in-flight requests
// and poll sleeps when it is done.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.jm-minimax/minimax-nodes/config.yaml)")
	pf.StringVarP(&contextName, "context", "c", "", "context name to use")
	pf.StringVarP(&outputFile, "output", "o", "", "write the result to a file (default: stdout)")
	pf.StringVarP(&inputFile, "file", "f", "", "request file with node parameters (YAML or JSON, - for stdin)")
	pf.StringVar(&outputFormat, "format", "yaml", "output format: yaml, json, table or raw")
	pf.BoolVar(&outputJSON, "json", false, "output as JSON (same as --format json)")
	pf.StringVar(&jqQuery, "jq", "", "jq expression applied to the result")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&ephemeral, "ephemeral", false, "keep the video task journal in memory")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(speechCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(musicCmd)
}

func initConfig() {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	globalPaths, err = cli.NewPaths(appName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing paths: %v\n", err)
		os.Exit(1)
	}
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context selected with -c, the current context, or
// a blank one backed by the environment.
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return cfg.ResolveContext(contextName)
}

// openRuntime opens the node environment for the selected context.
func openRuntime() (*cli.Runtime, error) {
	ctx, err := getContext()
	if err != nil {
		return nil, err
	}
	if ctx.Name != "" {
		printVerbose("Using context: %s", ctx.Name)
	}
	return cli.OpenRuntime(ctx, globalPaths, slog.Default(), ephemeral)
}

func getFormat() (cli.OutputFormat, error) {
	if outputJSON {
		return cli.FormatJSON, nil
	}
	return cli.ParseOutputFormat(outputFormat)
}

// outputResult prints result in the selected format.
func outputResult(result any) error {
	format, err := getFormat()
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
		Query:  jqQuery,
	})
}

func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
