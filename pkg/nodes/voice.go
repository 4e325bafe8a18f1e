package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/media"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
)

// VoiceCloningInput are the parameters of the voice-cloning node.
type VoiceCloningInput struct {
	APIKey                  string  `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	GroupID                 string  `json:"group_id,omitempty" jsonschema:"MiniMax group id"`
	AudioFile               string  `json:"audio_file" jsonschema:"path of the source audio"`
	VoiceID                 string  `json:"voice_id" jsonschema:"at least 8 characters, starting with a letter and containing a digit"`
	NeedNoiseReduction      bool    `json:"need_noise_reduction"`
	NeedVolumeNormalization bool    `json:"need_volume_normalization"`
	PreviewText             string  `json:"preview_text,omitempty" jsonschema:"optional preview text, at most 300 characters"`
	Model                   string  `json:"model"`
	Accuracy                float64 `json:"accuracy"`
}

func voiceCloningNode() (*Node, error) {
	return define("voice-cloning", "MiniMax Voice Cloning", CategorySpeech,
		"Upload an audio sample and clone it into a reusable voice id.",
		[]string{"voice_id"},
		VoiceCloningInput{
			VoiceID:  "MiniMax001",
			Model:    minimax.ModelSpeech02HD,
			Accuracy: 0.7,
		},
		cloneVoice,
		required("audio_file"),
		oneOf("model", minimax.SpeechModels...),
		between("accuracy", 0, 1),
	)
}

func cloneVoice(ctx context.Context, env *Env, in *VoiceCloningInput) ([]string, error) {
	req := &minimax.VoiceCloneRequest{
		VoiceID:                 strings.TrimSpace(in.VoiceID),
		NeedNoiseReduction:      in.NeedNoiseReduction,
		NeedVolumeNormalization: in.NeedVolumeNormalization,
		Accuracy:                in.Accuracy,
		Model:                   in.Model,
		Text:                    in.PreviewText,
	}
	if err := minimax.ValidateVoiceCloneRequest(req, env.logger()); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.AudioFile) == "" {
		return nil, &minimax.ValidationError{Field: "audio_file", Reason: "is required"}
	}
	path, err := env.inputPath(in.AudioFile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &minimax.ValidationError{Field: "audio_file", Reason: err.Error()}
	}
	defer f.Close()

	client, err := env.client(in.APIKey, in.GroupID)
	if err != nil {
		return nil, err
	}
	upload, err := client.Voice.UploadCloneAudio(ctx, f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	env.logger().Info("clone audio uploaded", "file_id", upload.FileID.String())

	req.FileID = json.Number(upload.FileID.String())
	resp, err := client.Voice.Clone(ctx, req)
	if err != nil {
		return nil, err
	}
	env.logger().Info("voice cloned", "voice_id", resp.VoiceID)
	return []string{resp.VoiceID}, nil
}

// VoiceDesignInput are the parameters of the voice-design node.
type VoiceDesignInput struct {
	APIKey        string `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	Prompt        string `json:"prompt" jsonschema:"description of the voice"`
	PreviewText   string `json:"preview_text,omitempty" jsonschema:"text read in the trial audio"`
	CustomVoiceID string `json:"custom_voice_id,omitempty" jsonschema:"voice id to assign; generated when empty"`
}

const (
	defaultDesignPrompt  = "讲述悬疑故事的播音员，声音低沉富有磁性，语速时快时慢，营造紧张神秘的氛围。"
	defaultDesignPreview = "夜深了，古屋里只有他一人。窗外传来若有若无的脚步声，他屏住呼吸，慢慢地，慢慢地，走向那扇吱呀作响的门……"
)

func voiceDesignNode() (*Node, error) {
	return define("voice-design", "MiniMax Voice Design", CategorySpeech,
		"Create a voice from a text description.",
		[]string{"voice_id", "trial_audio"},
		VoiceDesignInput{
			Prompt:      defaultDesignPrompt,
			PreviewText: defaultDesignPreview,
		},
		designVoice,
	)
}

// newVoiceID returns voice_<unix>_<8 hex>.
func (e *Env) newVoiceID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("voice_%d_%s", e.now().Unix(), suffix)
}

func designVoice(ctx context.Context, env *Env, in *VoiceDesignInput) ([]string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, &minimax.ValidationError{Field: "prompt", Reason: "is required"}
	}
	client, err := env.client(in.APIKey, "")
	if err != nil {
		return nil, err
	}

	voiceID := strings.TrimSpace(in.CustomVoiceID)
	if voiceID == "" {
		voiceID = env.newVoiceID()
		env.logger().Info("generated voice id", "voice_id", voiceID)
	}

	resp, err := client.Voice.Design(ctx, &minimax.VoiceDesignRequest{
		Prompt:      prompt,
		PreviewText: strings.TrimSpace(in.PreviewText),
		VoiceID:     voiceID,
	})
	if err != nil {
		return nil, err
	}
	if resp.VoiceID != voiceID {
		env.logger().Info("api assigned a different voice id", "requested", voiceID, "voice_id", resp.VoiceID)
	}

	trialPath := ""
	if resp.TrialAudio != "" {
		trialPath = env.saveTrialAudio(ctx, client, resp.VoiceID, resp.TrialAudio)
	}
	return []string{resp.VoiceID, trialPath}, nil
}

// saveTrialAudio writes the preview audio of a designed voice. The voice
// exists regardless, so a failure here is logged and yields "".
func (e *Env) saveTrialAudio(ctx context.Context, client *minimax.Client, voiceID, data string) string {
	out, err := e.materializer(client)
	if err != nil {
		e.logger().Warn("trial audio not saved", "voice_id", voiceID, "err", err)
		return ""
	}
	f, err := out.Materialize(ctx, media.Detect(data), media.Options{
		Prefix:     "voice_design_trial_" + media.SanitizePrefix(voiceID, ""),
		Fallback:   "voice_design_trial",
		DefaultExt: string(minimax.AudioFormatWAV),
	})
	if err != nil {
		e.logger().Warn("trial audio not saved", "voice_id", voiceID, "err", err)
		return ""
	}
	return f.Path
}
