// Package main provides the minimax-nodes CLI tool.
//
// Usage:
//
//	minimax-nodes [flags] <group> <command> [args]
//
// Groups:
//
//	speech   - Text to speech and input audio
//	voice    - Voice cloning and design
//	video    - Video generation, status, waiting, download and task journal
//	music    - Music generation
//	nodes    - List, describe and run any node
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.jm-minimax/minimax-nodes/
//	Use 'minimax-nodes config' commands to manage contexts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/cmd/minimax-nodes/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
