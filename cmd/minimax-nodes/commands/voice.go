package commands

import (
	"github.com/spf13/cobra"
)

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Voice cloning and design",
	Long: `Create reusable voice ids, either by cloning an audio sample or by
describing the voice in text.

Example cloning request (clone.yaml):
  audio_file: sample.mp3
  voice_id: MyVoice001
  need_noise_reduction: true
  preview_text: A short preview sentence.

Example design request (design.yaml):
  prompt: A warm, calm middle-aged male narrator
  preview_text: Once upon a time, in a quiet village...`,
}

var voiceCloneCmd = nodeCommand("voice-cloning",
	"clone [audio_file] [voice_id]",
	"Clone a voice from an audio sample",
	`Upload an audio sample and clone it into a voice id.

Relative audio paths are resolved in the input directory. The voice id must
be at least 8 characters, start with a letter and contain a digit; it is
checked before anything is uploaded.

Examples:
  minimax-nodes voice clone sample.mp3 MyVoice001
  minimax-nodes voice clone -f clone.yaml --set accuracy=0.8`,
	"audio_file", "voice_id",
)

var voiceDesignCmd = nodeCommand("voice-design",
	"design [prompt]",
	"Design a voice from a description",
	`Create a voice from a text description. A trial recording of the preview
text is saved in the output directory when the API returns one.

Examples:
  minimax-nodes voice design "A bright young female voice, lively and friendly"
  minimax-nodes voice design -f design.yaml --set custom_voice_id=narrator01`,
	"prompt",
)

func init() {
	voiceCmd.AddCommand(voiceCloneCmd)
	voiceCmd.AddCommand(voiceDesignCmd)
}
