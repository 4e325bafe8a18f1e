package nodes

import (
	"context"
	"strings"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/media"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
)

// MusicGenerationInput are the parameters of the music-generation node.
type MusicGenerationInput struct {
	APIKey        string `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	Prompt        string `json:"prompt" jsonschema:"style and mood, 10 to 300 characters"`
	Lyrics        string `json:"lyrics" jsonschema:"lyrics, 10 to 600 characters; supports [Intro] [Verse] [Chorus] [Bridge] [Outro]"`
	Model         string `json:"model"`
	Prefix        string `json:"filename_prefix"`
	Stream        bool   `json:"stream" jsonschema:"stream the audio; hex output only"`
	OutputFormat  string `json:"output_format"`
	SampleRate    int    `json:"sample_rate"`
	Bitrate       int    `json:"bitrate"`
	Format        string `json:"format"`
	AIGCWatermark bool   `json:"aigc_watermark" jsonschema:"append an audible watermark"`
}

const musicPrefix = "music_output"

func musicGenerationNode() (*Node, error) {
	return define("music-generation", "MiniMax Music Generation", CategoryMusic,
		"Generate a song from a prompt and lyrics.",
		[]string{"audio_path", "audio_url"},
		MusicGenerationInput{
			Model:        minimax.ModelMusic15,
			Prefix:       musicPrefix,
			OutputFormat: string(minimax.OutputFormatHex),
			SampleRate:   44100,
			Bitrate:      256000,
			Format:       string(minimax.AudioFormatMP3),
		},
		generateMusic,
		required("prompt", "lyrics"),
		oneOf("model", minimax.ModelMusic15),
		oneOf("output_format", string(minimax.OutputFormatHex), string(minimax.OutputFormatURL)),
		oneOf("sample_rate", 16000.0, 24000.0, 32000.0, 44100.0),
		oneOf("bitrate", 32000.0, 64000.0, 128000.0, 256000.0),
		oneOf("format", "mp3", "wav", "pcm"),
	)
}

func generateMusic(ctx context.Context, env *Env, in *MusicGenerationInput) ([]string, error) {
	req := &minimax.MusicRequest{
		Model:        in.Model,
		Prompt:       strings.TrimSpace(in.Prompt),
		Lyrics:       strings.TrimSpace(in.Lyrics),
		Stream:       in.Stream,
		OutputFormat: minimax.OutputFormat(in.OutputFormat),
		AudioSetting: &minimax.AudioSetting{
			SampleRate: in.SampleRate,
			Bitrate:    in.Bitrate,
			Format:     minimax.AudioFormat(in.Format),
		},
		AIGCWatermark: in.AIGCWatermark,
	}
	if err := minimax.ValidateMusicRequest(req); err != nil {
		return nil, err
	}

	client, err := env.client(in.APIKey, "")
	if err != nil {
		return nil, err
	}
	resp, err := client.Music.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	out, err := env.materializer(client)
	if err != nil {
		return nil, err
	}
	opts := media.Options{
		Prefix:     in.Prefix,
		Fallback:   musicPrefix,
		DefaultExt: in.Format,
	}
	// Raw PCM has no header to sniff.
	if req.AudioSetting.Format == minimax.AudioFormatPCM {
		opts.Ext = "pcm"
	}
	payload := media.ForOutputFormat(req.OutputFormat, resp.Audio)
	f, err := out.Materialize(ctx, payload, opts)
	if err != nil {
		return nil, err
	}

	audioURL := ""
	if payload.Encoding == media.EncodingURL {
		audioURL = payload.Data
	}
	return []string{f.Path, audioURL}, nil
}
