package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/nodes"
)

var speechCmd = &cobra.Command{
	Use:   "speech",
	Short: "Speech synthesis and input audio",
	Long: `Speech synthesis (TTS) and input audio handling.

Example request file (tts.yaml):
  text: Hello, this is a test message.
  model: speech-02-hd
  voice_id: male-qn-qingse
  speed: 1.0
  emotion: happy
  language_boost: auto
  subtitle_enable: true
  filename_prefix: greeting

The audio is saved in the output directory as <prefix>_<timestamp>.mp3,
with the subtitle file next to it when enabled.`,
}

var speechSynthesizeCmd = nodeCommand("text-to-speech",
	"synthesize [text]",
	"Synthesize speech from text",
	`Synthesize speech and save it as an audio file.

The voice defaults to the context's default_voice when the request leaves
voice_id unset.

Examples:
  minimax-nodes speech synthesize "你好，欢迎使用" --set voice_id=female-shaonv
  minimax-nodes speech synthesize -f tts.yaml --jq .outputs.audio_path`,
	"text",
)

var speechLoadAudioCmd = nodeCommand("load-audio",
	"load-audio <file>",
	"Resolve an audio file in the input directory",
	`Resolve an audio sample in the input directory to an absolute path,
for use as a voice cloning source.`,
	"audio_path",
)

type audioFile struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
	Size int64  `json:"size" yaml:"size"`
}

type audioList []audioFile

func (l audioList) Panel() cli.Panel {
	p := cli.Panel{Title: "input audio", MaxWidth: 120}
	for _, f := range l {
		p.Rows = append(p.Rows, cli.Row{Key: f.Name, Value: cli.FormatBytes(f.Size)})
	}
	return p
}

var speechListAudioCmd = &cobra.Command{
	Use:   "list-audio",
	Short: "List audio files in the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		names, err := nodes.ListAudio(cmd.Context(), rt.Env)
		if err != nil {
			return err
		}
		list := audioList{}
		for _, name := range names {
			f := audioFile{Name: name, Path: rt.Env.Input.Abs(name)}
			if info, err := os.Stat(f.Path); err == nil {
				f.Size = info.Size()
			}
			list = append(list, f)
		}
		printVerbose("Input directory: %s", rt.Env.Input.Root())
		return outputResult(list)
	},
}

func init() {
	speechCmd.AddCommand(speechSynthesizeCmd)
	speechCmd.AddCommand(speechLoadAudioCmd)
	speechCmd.AddCommand(speechListAudioCmd)
}
