package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

A context bundles credentials, transport settings, the output/input/journal
directories, wait-video defaults and an optional S3 mirror, similar to
kubectl's context management.

Configuration is stored in ~/.jm-minimax/minimax-nodes/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add a context with the specified name, replacing any existing one.

Example:
  minimax-nodes config add-context studio --api-key YOUR_API_KEY --use
  minimax-nodes config add-context cn --api-key KEY --base-url https://api.minimaxi.com \
      --output-dir ~/ComfyUI/output --input-dir ~/ComfyUI/input
  minimax-nodes config add-context mirror --api-key KEY --s3-bucket renders \
      --s3-endpoint http://127.0.0.1:9000 --s3-path-style \
      --s3-access-key-id minio --s3-secret-access-key minio123`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		str := func(name string) string {
			v, _ := f.GetString(name)
			return v
		}
		num := func(name string) int {
			v, _ := f.GetInt(name)
			return v
		}

		ctx := &cli.Context{
			APIKey:       str("api-key"),
			GroupID:      str("group-id"),
			BaseURL:      str("base-url"),
			Timeout:      num("timeout"),
			MaxRetries:   num("max-retries"),
			RetryDelay:   num("retry-delay"),
			DefaultVoice: str("default-voice"),
			OutputDir:    str("output-dir"),
			InputDir:     str("input-dir"),
			JournalDir:   str("journal-dir"),
			PollInterval: num("poll-interval"),
			MaxWait:      num("max-wait"),
		}
		if ctx.PollInterval != 0 && (ctx.PollInterval < 10 || ctx.PollInterval > 300) {
			return fmt.Errorf("--poll-interval must be between 10 and 300 seconds")
		}
		if ctx.MaxWait != 0 && (ctx.MaxWait < 300 || ctx.MaxWait > 7200) {
			return fmt.Errorf("--max-wait must be between 300 and 7200 seconds")
		}
		if bucket := str("s3-bucket"); bucket != "" {
			pathStyle, _ := f.GetBool("s3-path-style")
			ctx.S3 = &storage.S3Config{
				Bucket:          bucket,
				Prefix:          str("s3-prefix"),
				Region:          str("s3-region"),
				Endpoint:        str("s3-endpoint"),
				AccessKeyID:     str("s3-access-key-id"),
				SecretAccessKey: str("s3-secret-access-key"),
				PathStyle:       pathStyle,
			}
			if _, err := storage.NewS3FromConfig(*ctx.S3); err != nil {
				return err
			}
		}
		if ctx.APIKey == "" {
			cli.PrintWarning("No --api-key given; %s will be used at run time", cli.EnvAPIKey)
		}

		cfg := getConfig()
		name := args[0]
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q added", name)

		if use, _ := f.GetBool("use"); use {
			if err := cfg.UseContext(name); err != nil {
				return err
			}
			cli.PrintSuccess("Switched to context %q", name)
		}
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tBASE_URL\tOUTPUT_DIR\tS3")
		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", current, name,
				orDefault(ctx.BaseURL), orDefault(ctx.OutputDir), orNone(ctx.S3))
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			rows := []cli.Row{
				{Key: "api_key", Value: cli.MaskAPIKey(ctx.APIKey)},
				{Key: "group_id", Value: ctx.GroupID},
				{Key: "base_url", Value: orDefault(ctx.BaseURL)},
				{Key: "output_dir", Value: globalPaths.Resolve(ctx.OutputDir, globalPaths.OutputDir())},
				{Key: "input_dir", Value: globalPaths.Resolve(ctx.InputDir, globalPaths.InputDir())},
				{Key: "journal_dir", Value: globalPaths.Resolve(ctx.JournalDir, globalPaths.JournalDir())},
				{Key: "default_voice", Value: ctx.DefaultVoice},
				{Key: "s3", Value: orNone(ctx.S3)},
			}
			if ctx.Timeout > 0 {
				rows = append(rows, cli.Row{Key: "timeout", Value: fmt.Sprintf("%ds", ctx.Timeout)})
			}
			if ctx.PollInterval > 0 || ctx.MaxWait > 0 {
				rows = append(rows, cli.Row{Key: "wait", Value: fmt.Sprintf("poll %ds, max %ds", ctx.PollInterval, ctx.MaxWait)})
			}
			status := ""
			if name == cfg.CurrentContext {
				status = "current"
			}
			p := cli.Panel{Title: name, Status: status, Rows: rows, MaxWidth: 100}
			fmt.Println(p.Render(cli.NewStyles(cli.DefaultTheme)))
		}
		return nil
	},
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func orNone(s3 *storage.S3Config) string {
	if !s3.Enabled() {
		return "-"
	}
	return "s3://" + s3.Bucket + "/" + s3.Prefix
}

func init() {
	f := configAddContextCmd.Flags()
	f.String("api-key", "", "API key")
	f.String("group-id", "", "account group id")
	f.String("base-url", "", "API base URL")
	f.Int("timeout", 0, "request timeout in seconds")
	f.Int("max-retries", 0, "retries on transport failures")
	f.Int("retry-delay", 0, "seconds between retries")
	f.String("default-voice", "", "default text-to-speech voice id")
	f.String("output-dir", "", "directory for generated media")
	f.String("input-dir", "", "directory for audio samples and frame images")
	f.String("journal-dir", "", "directory for the video task journal")
	f.Int("poll-interval", 0, "wait-video poll interval in seconds (10-300)")
	f.Int("max-wait", 0, "wait-video maximum wait in seconds (300-7200)")
	f.String("s3-bucket", "", "mirror generated media to this S3 bucket")
	f.String("s3-prefix", "", "key prefix inside the bucket")
	f.String("s3-region", "", "bucket region")
	f.String("s3-endpoint", "", "S3-compatible endpoint URL")
	f.String("s3-access-key-id", "", "S3 access key id")
	f.String("s3-secret-access-key", "", "S3 secret access key")
	f.Bool("s3-path-style", false, "use path-style bucket addressing")
	f.Bool("use", false, "switch to the new context")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
