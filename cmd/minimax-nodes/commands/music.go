package commands

import (
	"github.com/spf13/cobra"
)

var musicCmd = &cobra.Command{
	Use:   "music",
	Short: "Music generation",
	Long: `Music generation from a style prompt and lyrics.

Example request file (music.yaml):
  prompt: Indie folk, melancholic, introspective
  lyrics: |
    [Verse]
    Streetlights flicker, the night breeze sighs
    [Chorus]
    Pushing the wooden door, the aroma spreads
  format: mp3
  output_format: url`,
}

var musicGenerateCmd = nodeCommand("music-generation",
	"generate",
	"Generate a song",
	`Generate a song and save it in the output directory.

Lyrics use \n between lines and may carry [Verse], [Chorus] and similar
section tags. With output_format url the download link is printed too.

Examples:
  minimax-nodes music generate -f music.yaml
  minimax-nodes music generate -f music.yaml --set format=wav --set sample_rate=44100`,
)

func init() {
	musicCmd.AddCommand(musicGenerateCmd)
}
