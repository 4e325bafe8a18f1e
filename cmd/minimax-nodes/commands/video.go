package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/taskstore"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Video generation",
	Long: `Asynchronous video generation: create a task, check or wait for it, then
download the result.

Example request file (video.yaml):
  model: MiniMax-Hailuo-02
  prompt: A cat playing with a ball in a sunny garden
  first_frame_image: cat.png
  duration: "6"
  resolution: 768P

Frame images may be URLs, data URIs or paths in the input directory. Local
images are checked (JPG/JPEG/PNG/WebP, at most 20MB, short side above 300px,
aspect ratio between 2:5 and 5:2) and sent as base64 data URIs.

Created tasks are recorded in the task journal; see 'minimax-nodes video tasks'.`,
}

var videoGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create a video generation task",
	Long: `Create a video generation task.

Use --wait to poll until the task finishes, and --download to save the video
in the output directory afterwards.

Examples:
  minimax-nodes video generate -f video.yaml
  minimax-nodes video generate -f video.yaml --wait --poll-interval 15
  minimax-nodes video generate --set model=T2V-01 --set prompt="city at night" --wait --download`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetBool("wait")
		download, _ := cmd.Flags().GetBool("download")
		if download && !wait {
			return fmt.Errorf("--download requires --wait")
		}

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		out, err := runNode(cmd, rt, "video-generation", nil)
		if err != nil {
			return err
		}
		if !wait {
			return outputResult(out)
		}
		taskID := out.Outputs["task_id"]
		cli.PrintInfo("Task %s created, waiting for it to finish", taskID)

		sets := []string{"task_id=" + taskID}
		if v, _ := cmd.Flags().GetInt("poll-interval"); v > 0 {
			sets = append(sets, "poll_interval="+strconv.Itoa(v))
		}
		if v, _ := cmd.Flags().GetInt("max-wait"); v > 0 {
			sets = append(sets, "max_wait="+strconv.Itoa(v))
		}

		start := time.Now()
		waited, err := runStep(cmd, rt, "wait-video", sets)
		if err != nil {
			return err
		}
		printVerbose("Task %s finished after %s", taskID, cli.FormatDuration(time.Since(start)))
		out = out.Merge(waited)

		if download {
			prefix, _ := cmd.Flags().GetString("prefix")
			saved, err := runStep(cmd, rt, "download-video", []string{
				"video_url=" + waited.Outputs["video_url"],
				"filename_prefix=" + prefix,
			})
			if err != nil {
				return err
			}
			out = out.Merge(saved)
		}
		return outputResult(out)
	},
}

// runStep runs a chained node with only the given parameters; the request
// file belongs to the first node of the chain.
func runStep(cmd *cobra.Command, rt *cli.Runtime, name string, sets []string) (cli.NodeOutput, error) {
	n, err := lookupNode(name)
	if err != nil {
		return cli.NodeOutput{}, err
	}
	args, err := rt.Args(n, nil, sets)
	if err != nil {
		return cli.NodeOutput{}, err
	}
	out, err := rt.Run(cmd.Context(), n, args)
	if err != nil {
		return cli.NodeOutput{}, fmt.Errorf("%s: %w", n.Slug(), err)
	}
	return out, nil
}

var videoStatusCmd = nodeCommand("check-video-status",
	"status [task_id]",
	"Query a video task once",
	`Query a video generation task once and print its status, file id and
cover image.

Examples:
  minimax-nodes video status 106916112212032
  minimax-nodes video status 106916112212032 --jq .outputs.status`,
	"task_id",
)

var videoWaitCmd = nodeCommand("wait-video",
	"wait [task_id]",
	"Wait for a video task to finish",
	`Poll a video generation task until it succeeds, fails or the maximum wait
runs out, then resolve the download URL of the video.

poll_interval (10-300 seconds) and max_wait (300-7200 seconds) default to
the context's settings, or 30 and 1800.

Examples:
  minimax-nodes video wait 106916112212032
  minimax-nodes video wait 106916112212032 --set poll_interval=10 --set max_wait=600`,
	"task_id",
)

var videoDownloadCmd = nodeCommand("download-video",
	"download [video_url]",
	"Download a generated video",
	`Download a video URL into the output directory as
<prefix>_<timestamp>.<ext>, keeping mp4, mov, avi, mkv and webm extensions.

Examples:
  minimax-nodes video download "https://cdn.example.com/output.mp4" --set filename_prefix=cat`,
	"video_url",
)

type taskList []taskstore.Record

func (l taskList) Panel() cli.Panel {
	p := cli.Panel{Title: "video tasks", MaxWidth: 120}
	for _, r := range l {
		updated := time.UnixMilli(r.UpdatedAt).Format(time.DateTime)
		p.Rows = append(p.Rows, cli.Row{Key: r.ID, Value: fmt.Sprintf("%-10s %-18s %s", r.Status, r.Model, updated)})
	}
	return p
}

var videoTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List journaled video tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		recs, err := rt.Env.Journal.List(cmd.Context(), taskstore.KindVideo)
		if err != nil {
			return err
		}
		return outputResult(taskList(recs))
	},
}

var videoTaskCmd = &cobra.Command{
	Use:   "task <task_id>",
	Short: "Show a journaled video task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		rec, err := rt.Env.Journal.Get(cmd.Context(), taskstore.KindVideo, args[0])
		if errors.Is(err, taskstore.ErrNotFound) {
			return fmt.Errorf("task %s is not in the journal", args[0])
		}
		if err != nil {
			return err
		}
		return outputResult(rec)
	},
}

var videoForgetCmd = &cobra.Command{
	Use:   "forget <task_id>...",
	Short: "Remove video tasks from the journal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		for _, id := range args {
			if err := rt.Env.Journal.Delete(cmd.Context(), taskstore.KindVideo, id); err != nil {
				return err
			}
			cli.PrintSuccess("Forgot task %s", id)
		}
		return nil
	},
}

func init() {
	addSetFlag(videoGenerateCmd)
	videoGenerateCmd.Flags().Bool("wait", false, "wait for the task to finish")
	videoGenerateCmd.Flags().Bool("download", false, "download the video after waiting")
	videoGenerateCmd.Flags().Int("poll-interval", 0, "seconds between status queries while waiting")
	videoGenerateCmd.Flags().Int("max-wait", 0, "seconds to wait before giving up")
	videoGenerateCmd.Flags().String("prefix", "minimax_video", "filename prefix for the downloaded video")

	videoCmd.AddCommand(videoGenerateCmd)
	videoCmd.AddCommand(videoStatusCmd)
	videoCmd.AddCommand(videoWaitCmd)
	videoCmd.AddCommand(videoDownloadCmd)
	videoCmd.AddCommand(videoTasksCmd)
	videoCmd.AddCommand(videoTaskCmd)
	videoCmd.AddCommand(videoForgetCmd)
}
