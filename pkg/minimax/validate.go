package minimax

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Provider-documented limits.
const (
	MaxSpeechTextLen   = 10000
	MaxClonePreviewLen = 300
	MaxVideoPromptLen  = 2000

	MinMusicPromptLen = 10
	MaxMusicPromptLen = 300
	MinMusicLyricsLen = 10
	MaxMusicLyricsLen = 600

	MinVoiceIDLen = 8
)

var (
	musicSampleRates = []int{16000, 24000, 32000, 44100}
	musicBitrates    = []int{32000, 64000, 128000, 256000}
	musicFormats     = []AudioFormat{AudioFormatMP3, AudioFormatWAV, AudioFormatPCM}

	i2vModels = []string{ModelI2V01Director, ModelI2V01, ModelI2V01Live}
	t2vModels = []string{ModelT2V01Director, ModelT2V01}
)

// textLen counts characters, not bytes.
func textLen(s string) int {
	return utf8.RuneCountInString(s)
}

// checkLen validates that s has between min and max characters. The lower
// bound is checked on the trimmed text, the upper bound on the raw text.
func checkLen(field, s string, min, max int) error {
	if min > 0 && textLen(strings.TrimSpace(s)) < min {
		return invalid(field, "must be at least %d characters long", min)
	}
	if max > 0 && textLen(s) > max {
		return invalid(field, "must not exceed %d characters", max)
	}
	return nil
}

// ValidateSpeechRequest checks a speech synthesis request.
func ValidateSpeechRequest(req *SpeechRequest) error {
	if req == nil {
		return invalid("", "request is required")
	}
	if req.Model == "" {
		return invalid("model", "is required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return invalid("text", "is required")
	}
	if err := checkLen("text", req.Text, 1, MaxSpeechTextLen); err != nil {
		return err
	}
	if vs := req.VoiceSetting; vs != nil {
		if vs.VoiceID == "" {
			return invalid("voice_id", "is required")
		}
		if vs.Speed < 0.5 || vs.Speed > 2.0 {
			return invalid("speed", "must be between 0.5 and 2.0, got %g", vs.Speed)
		}
		if vs.Vol <= 0 || vs.Vol > 10 {
			return invalid("vol", "must be in (0, 10], got %g", vs.Vol)
		}
		if vs.Pitch < -12 || vs.Pitch > 12 {
			return invalid("pitch", "must be between -12 and 12, got %d", vs.Pitch)
		}
		if vs.Emotion != "" && !slices.Contains(Emotions, vs.Emotion) {
			return invalid("emotion", "unsupported value %q", vs.Emotion)
		}
	} else {
		return invalid("voice_id", "is required")
	}
	if req.LanguageBoost != "" && !slices.Contains(LanguageBoosts, req.LanguageBoost) {
		return invalid("language_boost", "unsupported value %q", req.LanguageBoost)
	}
	return nil
}

// ValidateVoiceID checks the custom voice id rules: at least 8 characters,
// starting with a letter, containing at least one digit.
func ValidateVoiceID(id string) error {
	const rule = "must be at least 8 characters, start with a letter, and include numbers"
	if textLen(id) < MinVoiceIDLen {
		return invalid("voice_id", rule)
	}
	first, _ := utf8.DecodeRuneInString(id)
	if !unicode.IsLetter(first) {
		return invalid("voice_id", rule)
	}
	if !strings.ContainsFunc(id, unicode.IsDigit) {
		return invalid("voice_id", rule)
	}
	return nil
}

// ValidateVoiceCloneRequest checks a clone request. A preview text longer
// than MaxClonePreviewLen is truncated with a warning rather than rejected.
func ValidateVoiceCloneRequest(req *VoiceCloneRequest, logger *slog.Logger) error {
	if req == nil {
		return invalid("", "request is required")
	}
	if err := ValidateVoiceID(req.VoiceID); err != nil {
		return err
	}
	if req.Accuracy < 0 || req.Accuracy > 1 {
		return invalid("accuracy", "must be between 0 and 1, got %g", req.Accuracy)
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		req.Model = ""
		return nil
	}
	if textLen(req.Text) > MaxClonePreviewLen {
		if logger != nil {
			logger.Warn("preview text exceeds limit, truncating", "limit", MaxClonePreviewLen, "len", textLen(req.Text))
		}
		req.Text = string([]rune(req.Text)[:MaxClonePreviewLen])
	}
	if req.Model == "" {
		req.Model = ModelSpeech02HD
	}
	return nil
}

// ValidateVoiceDesignRequest checks a voice design request.
func ValidateVoiceDesignRequest(req *VoiceDesignRequest) error {
	if req == nil {
		return invalid("", "request is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return invalid("prompt", "is required")
	}
	return nil
}

// ValidateMusicRequest checks a music generation request.
func ValidateMusicRequest(req *MusicRequest) error {
	if req == nil {
		return invalid("", "request is required")
	}
	if err := checkLen("prompt", req.Prompt, MinMusicPromptLen, MaxMusicPromptLen); err != nil {
		return err
	}
	if err := checkLen("lyrics", req.Lyrics, MinMusicLyricsLen, MaxMusicLyricsLen); err != nil {
		return err
	}
	switch req.OutputFormat {
	case "", OutputFormatHex:
	case OutputFormatURL:
		if req.Stream {
			return invalid("output_format", "when stream is true, only hex format is supported")
		}
	default:
		return invalid("output_format", "unsupported value %q", req.OutputFormat)
	}
	if as := req.AudioSetting; as != nil {
		if as.SampleRate != 0 && !slices.Contains(musicSampleRates, as.SampleRate) {
			return invalid("sample_rate", "unsupported value %d", as.SampleRate)
		}
		if as.Bitrate != 0 && !slices.Contains(musicBitrates, as.Bitrate) {
			return invalid("bitrate", "unsupported value %d", as.Bitrate)
		}
		if as.Format != "" && !slices.Contains(musicFormats, as.Format) {
			return invalid("format", "unsupported value %q", as.Format)
		}
	}
	return nil
}

// ValidateVideoRequest checks model-specific requirements and clears the
// duration/resolution fields for models that do not take them.
func ValidateVideoRequest(req *VideoRequest, logger *slog.Logger) error {
	if req == nil {
		return invalid("", "request is required")
	}
	if !slices.Contains(VideoModels, req.Model) {
		return invalid("model", "unsupported value %q", req.Model)
	}
	if textLen(req.Prompt) > MaxVideoPromptLen {
		return invalid("prompt", "must not exceed %d characters", MaxVideoPromptLen)
	}
	hasFirst := req.FirstFrameImage != ""
	hasLast := req.LastFrameImage != ""

	if slices.Contains(i2vModels, req.Model) && !hasFirst {
		return invalid("first_frame_image", "model %s requires a first frame image", req.Model)
	}
	if slices.Contains(t2vModels, req.Model) && strings.TrimSpace(req.Prompt) == "" {
		return invalid("prompt", "model %s requires a text prompt", req.Model)
	}
	if req.Model == ModelS2V01 && strings.TrimSpace(req.Prompt) == "" && !hasFirst {
		return invalid("prompt", "model %s requires either a prompt or an image", req.Model)
	}

	if req.Model != ModelHailuo02 {
		if hasLast {
			return invalid("last_frame_image", "only supported by %s, but current model is %s", ModelHailuo02, req.Model)
		}
		if logger != nil && req.Duration != 0 && req.Duration != 6 {
			logger.Warn("duration is not applicable to model, using 6s", "model", req.Model, "duration", req.Duration)
		}
		if logger != nil && req.Resolution != "" && req.Resolution != Resolution768P {
			logger.Warn("resolution is not applicable to model, using fixed 720P", "model", req.Model, "resolution", req.Resolution)
		}
		req.Duration = 0
		req.Resolution = ""
		return nil
	}

	if strings.TrimSpace(req.Prompt) == "" && !hasFirst {
		return invalid("prompt", "model %s requires either a prompt or an image", req.Model)
	}
	if req.Duration == 0 {
		req.Duration = 6
	}
	if req.Resolution == "" {
		req.Resolution = Resolution768P
	}
	if req.Duration != 6 && req.Duration != 10 {
		return invalid("duration", "must be 6 or 10, got %d", req.Duration)
	}
	switch req.Resolution {
	case Resolution512P, Resolution768P, Resolution1080P:
	default:
		return invalid("resolution", "unsupported value %q", req.Resolution)
	}
	if req.Duration == 10 && req.Resolution == Resolution1080P {
		return invalid("duration", "%s does not support 10s duration with 1080P resolution", ModelHailuo02)
	}
	if req.Resolution == Resolution512P && !hasFirst {
		return invalid("first_frame_image", "%s with 512P resolution requires a first frame image", ModelHailuo02)
	}
	if req.Resolution == Resolution512P && hasLast {
		return invalid("last_frame_image", "%s does not support last_frame_image with 512P resolution", ModelHailuo02)
	}
	return nil
}
