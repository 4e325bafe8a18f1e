// Package cli holds the command-line plumbing for minimax-nodes.
//
// It covers:
//   - Named contexts (credentials, transport, workspace directories, S3 mirror)
//   - Output formatting (YAML, JSON, table panels, jq queries)
//   - Request file loading (YAML/JSON, with repair of malformed JSON)
//   - Opening a node Env from a context
//
// Configuration lives in ~/.jm-minimax/<app>/, with multiple contexts
// managed the way kubectl manages them.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("minimax-nodes")
//	ctx, err := cfg.ResolveContext("")
//	rt, err := cli.OpenRuntime(ctx, paths, logger)
//	defer rt.Close()
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Query:  ".outputs.audio_path",
//	})
package cli
