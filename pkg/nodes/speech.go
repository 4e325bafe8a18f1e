package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/media"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
)

// TextToSpeechInput are the parameters of the text-to-speech node.
type TextToSpeechInput struct {
	APIKey        string  `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	GroupID       string  `json:"group_id,omitempty" jsonschema:"MiniMax group id"`
	Text          string  `json:"text" jsonschema:"text to synthesize"`
	Model         string  `json:"model"`
	VoiceID       string  `json:"voice_id" jsonschema:"voice id for text-to-speech"`
	Speed         float64 `json:"speed"`
	Volume        float64 `json:"volume"`
	Pitch         int     `json:"pitch"`
	Emotion       string  `json:"emotion"`
	Subtitle      bool    `json:"subtitle_enable" jsonschema:"also download the subtitle file"`
	Prefix        string  `json:"filename_prefix"`
	CustomVoiceID string  `json:"custom_voice_id,omitempty" jsonschema:"overrides voice_id when set"`
	LanguageBoost string  `json:"language_boost"`
}

const ttsPrefix = "tts_output"

func textToSpeechNode() (*Node, error) {
	return define("text-to-speech", "MiniMax Text to Speech", CategorySpeech,
		"Synthesize speech and save it as an audio file.",
		[]string{"audio_path", "subtitle_path"},
		TextToSpeechInput{
			Model:         minimax.ModelSpeech02HD,
			Speed:         1.0,
			Volume:        1.0,
			Emotion:       minimax.EmotionNeutral,
			Prefix:        ttsPrefix,
			LanguageBoost: minimax.LanguageAuto,
		},
		textToSpeech,
		required("text"),
		oneOf("model", minimax.SpeechModels...),
		between("speed", 0.5, 2.0),
		between("volume", 0.1, 10),
		between("pitch", -12, 12),
		oneOf("emotion", minimax.Emotions...),
		oneOf("language_boost", minimax.LanguageBoosts...),
	)
}

func textToSpeech(ctx context.Context, env *Env, in *TextToSpeechInput) ([]string, error) {
	voiceID := in.VoiceID
	if custom := strings.TrimSpace(in.CustomVoiceID); custom != "" {
		voiceID = custom
	}
	env.logger().Info("synthesizing speech", "voice_id", voiceID, "custom", in.CustomVoiceID != "", "model", in.Model)

	req := &minimax.SpeechRequest{
		Model: in.Model,
		Text:  in.Text,
		VoiceSetting: &minimax.VoiceSetting{
			VoiceID: voiceID,
			Speed:   in.Speed,
			Vol:     in.Volume,
			Pitch:   in.Pitch,
			Emotion: in.Emotion,
		},
		AudioSetting: &minimax.AudioSetting{
			SampleRate: 32000,
			Bitrate:    128000,
			Format:     minimax.AudioFormatMP3,
			Channel:    1,
		},
		LanguageBoost:  in.LanguageBoost,
		SubtitleEnable: in.Subtitle,
		OutputFormat:   minimax.OutputFormatHex,
	}
	if err := minimax.ValidateSpeechRequest(req); err != nil {
		return nil, err
	}

	client, err := env.client(in.APIKey, in.GroupID)
	if err != nil {
		return nil, err
	}
	resp, err := client.Speech.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	out, err := env.materializer(client)
	if err != nil {
		return nil, err
	}
	prefix := media.SanitizePrefix(in.Prefix, ttsPrefix)
	at := env.now()
	audio, err := out.Materialize(ctx, media.ForOutputFormat(req.OutputFormat, resp.Audio), media.Options{
		Prefix:     prefix,
		DefaultExt: string(minimax.AudioFormatMP3),
		At:         at,
	})
	if err != nil {
		return nil, err
	}

	subtitlePath := ""
	if in.Subtitle && resp.SubtitleFile != "" {
		sub, err := out.Materialize(ctx, media.URL(resp.SubtitleFile), media.Options{
			Prefix: prefix + "_subtitle",
			Ext:    "json",
			At:     at,
		})
		if err != nil {
			return nil, fmt.Errorf("save subtitle: %w", err)
		}
		subtitlePath = sub.Path
	}
	return []string{audio.Path, subtitlePath}, nil
}

// LoadAudioInput are the parameters of the load-audio node.
type LoadAudioInput struct {
	AudioPath string `json:"audio_path" jsonschema:"audio file in the input directory"`
}

// AudioExtensions are the file types offered by the load-audio node.
var AudioExtensions = []string{"mp3", "wav", "m4a"}

func loadAudioNode() (*Node, error) {
	return define("load-audio", "Load Audio", CategorySpeech,
		"Resolve an audio file in the input directory to an absolute path.",
		[]string{"audio_file"},
		LoadAudioInput{},
		loadAudio,
		required("audio_path"),
	)
}

func loadAudio(ctx context.Context, env *Env, in *LoadAudioInput) ([]string, error) {
	name := strings.TrimSpace(in.AudioPath)
	if name == "" {
		return nil, &minimax.ValidationError{Field: "audio_path", Reason: "is required"}
	}
	if env.Input == nil {
		return nil, &minimax.ValidationError{Field: "audio_path", Reason: "no input directory configured"}
	}
	ok, err := env.Input.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &minimax.ValidationError{Field: "audio_path", Reason: fmt.Sprintf("invalid audio file: %s", name)}
	}
	return []string{env.Input.Abs(name)}, nil
}

// ListAudio returns the audio files the load-audio node can select.
func ListAudio(ctx context.Context, env *Env) ([]string, error) {
	if env.Input == nil {
		return nil, nil
	}
	return env.Input.List(ctx, ".", AudioExtensions...)
}
