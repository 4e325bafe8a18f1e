package commands

import (
	"fmt"
	"maps"
	"os"

	"github.com/spf13/cobra"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/nodes"
)

// loadParams reads the -f request file, or stdin for "-".
func loadParams(cmd *cobra.Command) (map[string]any, error) {
	params := map[string]any{}
	switch inputFile {
	case "":
		return params, nil
	case "-":
		if err := cli.LoadRequestFromReader(cmd.InOrStdin(), &params); err != nil {
			return nil, err
		}
	default:
		if err := cli.LoadRequest(inputFile, &params); err != nil {
			return nil, err
		}
	}
	return params, nil
}

func lookupNode(name string) (*nodes.Node, error) {
	n, ok := nodes.Default().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown node %q, see 'minimax-nodes nodes list'", name)
	}
	return n, nil
}

// runNode runs one node with the request file, positional parameters and
// --set overrides, and prints its outputs.
func runNode(cmd *cobra.Command, rt *cli.Runtime, name string, positional map[string]any) (cli.NodeOutput, error) {
	n, err := lookupNode(name)
	if err != nil {
		return cli.NodeOutput{}, err
	}
	params, err := loadParams(cmd)
	if err != nil {
		return cli.NodeOutput{}, err
	}
	maps.Copy(params, positional)
	sets, _ := cmd.Flags().GetStringArray("set")

	args, err := rt.Args(n, params, sets)
	if err != nil {
		return cli.NodeOutput{}, err
	}
	printVerbose("Running %s", n.Name)

	out, err := rt.Run(cmd.Context(), n, args)
	if err != nil {
		if format, _ := getFormat(); format == cli.FormatTable {
			fmt.Fprintln(os.Stderr, cli.ErrorPanel(n.Name, err).Render(cli.NewStyles(cli.DefaultTheme)))
		}
		return cli.NodeOutput{}, fmt.Errorf("%s: %w", n.Slug(), err)
	}
	return out, nil
}

// nodeCommand builds a command that runs a single node. Positional
// arguments fill the named parameters in order.
func nodeCommand(name, use, short, long string, positional ...string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(len(positional)),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			pos := make(map[string]any, len(args))
			for i, a := range args {
				pos[positional[i]] = a
			}
			out, err := runNode(cmd, rt, name, pos)
			if err != nil {
				return err
			}
			return outputResult(out)
		},
	}
	addSetFlag(cmd)
	return cmd
}

func addSetFlag(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "set a node parameter, key=value (repeatable)")
}
