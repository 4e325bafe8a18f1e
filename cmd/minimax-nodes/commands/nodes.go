package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/nodes"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List, describe and run workflow nodes",
}

type nodeInfo struct {
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description" yaml:"description"`
	Outputs     []string `json:"outputs" yaml:"outputs"`
}

type nodeList []nodeInfo

func (l nodeList) Panel() cli.Panel {
	p := cli.Panel{Title: "nodes", MaxWidth: 120}
	for _, n := range l {
		p.Rows = append(p.Rows, cli.Row{Key: n.Name, Value: n.DisplayName})
	}
	return p
}

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var list nodeList
		for _, n := range nodes.Default().All() {
			list = append(list, nodeInfo{
				Name:        n.Name,
				DisplayName: n.DisplayName,
				Category:    strings.TrimPrefix(n.Category, nodes.Prefix),
				Description: n.Description,
				Outputs:     n.Outputs,
			})
		}
		return outputResult(list)
	},
}

var nodesSchemaCmd = &cobra.Command{
	Use:   "schema <node>",
	Short: "Print a node's parameter schema",
	Long: `Print the JSON schema of a node's parameters, including defaults,
ranges and allowed values.

Examples:
  minimax-nodes nodes schema text-to-speech
  minimax-nodes nodes schema wait-video --jq '.properties.max_wait'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := lookupNode(args[0])
		if err != nil {
			return err
		}
		return cli.Output(n.Input, cli.OutputOptions{
			Format: cli.FormatJSON,
			File:   outputFile,
			Query:  jqQuery,
		})
	},
}

var nodesRunCmd = &cobra.Command{
	Use:   "run <node>",
	Short: "Run any node",
	Long: `Run a node by name. Parameters come from the request file (-f) and
--set overrides; unset parameters take the node's defaults.

Examples:
  minimax-nodes nodes run text-to-speech -f tts.yaml
  minimax-nodes nodes run JM-MiniMax-API/check-video-status --set task_id=106916112212032
  echo '{"audio_path":"sample.mp3"}' | minimax-nodes nodes run load-audio -f -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		out, err := runNode(cmd, rt, args[0], nil)
		if err != nil {
			return err
		}
		return outputResult(out)
	},
}

func init() {
	addSetFlag(nodesRunCmd)

	nodesCmd.AddCommand(nodesListCmd)
	nodesCmd.AddCommand(nodesSchemaCmd)
	nodesCmd.AddCommand(nodesRunCmd)
}
