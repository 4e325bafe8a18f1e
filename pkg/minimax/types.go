package minimax

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleID is a custom type that can unmarshal both string and number JSON values.
// This is needed because some MiniMax APIs return file_id as int64 while others as string.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler interface.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleID(strconv.FormatInt(n, 10))
		return nil
	}

	return fmt.Errorf("FlexibleID: cannot unmarshal %s", string(data))
}

// MarshalJSON implements json.Marshaler interface.
func (f FlexibleID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// String returns the string representation of the ID.
func (f FlexibleID) String() string {
	return string(f)
}

// ================== Common Types ==================

// OutputFormat specifies how generated audio is delivered.
type OutputFormat string

const (
	OutputFormatHex OutputFormat = "hex"
	OutputFormatURL OutputFormat = "url"
)

// AudioFormat specifies the audio encoding format.
type AudioFormat string

const (
	AudioFormatMP3  AudioFormat = "mp3"
	AudioFormatPCM  AudioFormat = "pcm"
	AudioFormatFLAC AudioFormat = "flac"
	AudioFormatWAV  AudioFormat = "wav"
)

// FilePurpose specifies the intended use of an uploaded file.
type FilePurpose string

const (
	// FilePurposeVoiceClone is for voice cloning source audio.
	FilePurposeVoiceClone FilePurpose = "voice_clone"

	// FilePurposePromptAudio is for voice cloning example/prompt audio.
	FilePurposePromptAudio FilePurpose = "prompt_audio"
)

// TaskStatus is the status string reported by the task query endpoints.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusQueueing   TaskStatus = "Queueing"
	TaskStatusPreparing  TaskStatus = "Preparing"
	TaskStatusProcessing TaskStatus = "Processing"
	TaskStatusSuccess    TaskStatus = "Success"
	TaskStatusFail       TaskStatus = "Fail"
	TaskStatusFailed     TaskStatus = "Failed"
	TaskStatusUnknown    TaskStatus = "unknown"
)

// Phase is the provider-independent lifecycle of a Task.
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseProcessing Phase = "processing"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
	PhaseUnknown    Phase = "unknown"
)

// Phase maps a raw status onto the task lifecycle.
func (s TaskStatus) Phase() Phase {
	switch strings.ToLower(string(s)) {
	case "pending", "queueing", "preparing":
		return PhasePending
	case "processing":
		return PhaseProcessing
	case "success":
		return PhaseSuccess
	case "fail", "failed":
		return PhaseFailed
	default:
		return PhaseUnknown
	}
}

// Terminal reports whether the phase can no longer change.
func (p Phase) Terminal() bool {
	return p == PhaseSuccess || p == PhaseFailed
}

// ================== Audio Types ==================

// AudioInfo contains metadata about generated audio.
type AudioInfo struct {
	// AudioLength is the duration in milliseconds.
	AudioLength int `json:"audio_length"`

	// AudioSampleRate is the sample rate.
	AudioSampleRate int `json:"audio_sample_rate"`

	// AudioSize is the size in bytes.
	AudioSize int `json:"audio_size"`

	// Bitrate is the bitrate.
	Bitrate int `json:"bitrate"`

	// WordCount is the number of words/characters.
	WordCount int `json:"word_count"`

	// UsageCharacters is the billable character count.
	UsageCharacters int `json:"usage_characters"`

	// AudioFormat is the audio format.
	AudioFormat string `json:"audio_format"`

	// AudioChannel is the number of channels.
	AudioChannel int `json:"audio_channel"`
}

// MusicInfo is the extra_info block of a music generation response.
type MusicInfo struct {
	MusicDuration   int `json:"music_duration"`
	MusicSampleRate int `json:"music_sample_rate"`
	MusicChannel    int `json:"music_channel"`
	Bitrate         int `json:"bitrate"`
	MusicSize       int `json:"music_size"`
}

// ================== Speech Types ==================

// SpeechRequest is the request for speech synthesis.
type SpeechRequest struct {
	// Model is the model version.
	Model string `json:"model" yaml:"model"`

	// Text is the text to synthesize (max 10,000 characters).
	Text string `json:"text" yaml:"text"`

	// VoiceSetting contains voice configuration.
	VoiceSetting *VoiceSetting `json:"voice_setting,omitempty" yaml:"voice_setting,omitempty"`

	// AudioSetting contains audio configuration.
	AudioSetting *AudioSetting `json:"audio_setting,omitempty" yaml:"audio_setting,omitempty"`

	// LanguageBoost enhances specific language pronunciation.
	LanguageBoost string `json:"language_boost,omitempty" yaml:"language_boost,omitempty"`

	// SubtitleEnable enables subtitle generation.
	SubtitleEnable bool `json:"subtitle_enable" yaml:"subtitle_enable,omitempty"`

	// OutputFormat specifies output format: hex or url.
	OutputFormat OutputFormat `json:"output_format,omitempty" yaml:"output_format,omitempty"`
}

// VoiceSetting contains voice configuration.
type VoiceSetting struct {
	// VoiceID is the voice identifier.
	VoiceID string `json:"voice_id" yaml:"voice_id"`

	// Speed is the speech speed (0.5-2.0, default 1.0).
	Speed float64 `json:"speed" yaml:"speed,omitempty"`

	// Vol is the volume (0-10, default 1.0).
	Vol float64 `json:"vol" yaml:"vol,omitempty"`

	// Pitch is the pitch adjustment (-12 to 12, default 0).
	Pitch int `json:"pitch" yaml:"pitch,omitempty"`

	// Emotion is the emotion: happy, sad, angry, fearful, disgusted, surprised, neutral.
	Emotion string `json:"emotion,omitempty" yaml:"emotion,omitempty"`
}

// AudioSetting contains audio configuration.
type AudioSetting struct {
	// SampleRate is the sample rate: 8000, 16000, 22050, 24000, 32000, 44100.
	SampleRate int `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`

	// Bitrate is the bitrate: 32000, 64000, 128000, 256000.
	Bitrate int `json:"bitrate,omitempty" yaml:"bitrate,omitempty"`

	// Format is the audio format: mp3, pcm, flac, wav.
	Format AudioFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// Channel is the number of channels: 1 or 2.
	Channel int `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// SpeechResponse is the response from speech synthesis.
type SpeechResponse struct {
	// Audio is the raw audio payload: hex text, or a URL when
	// OutputFormat was "url".
	Audio string `json:"-"`

	// SubtitleFile is the subtitle download URL when subtitles were enabled.
	SubtitleFile string `json:"subtitle_file,omitempty"`

	// ExtraInfo contains audio metadata.
	ExtraInfo *AudioInfo `json:"extra_info"`

	// TraceID is the request trace ID.
	TraceID string `json:"trace_id"`
}

// ================== Voice Types ==================

// UploadResponse is the response from file upload.
type UploadResponse struct {
	FileID FlexibleID `json:"file_id"`
}

// VoiceCloneRequest is the request for voice cloning.
type VoiceCloneRequest struct {
	// FileID is the file_id of the uploaded clone audio.
	FileID json.Number `json:"file_id" yaml:"file_id"`

	// VoiceID is the custom voice ID.
	VoiceID string `json:"voice_id" yaml:"voice_id"`

	// NeedNoiseReduction enables noise reduction on the source audio.
	NeedNoiseReduction bool `json:"need_noise_reduction" yaml:"need_noise_reduction"`

	// NeedVolumeNormalization enables loudness normalization.
	NeedVolumeNormalization bool `json:"need_volume_normalization" yaml:"need_volume_normalization"`

	// Accuracy is the text validation accuracy threshold (0-1).
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`

	// Model is the model used for the preview (only sent with Text).
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Text is the preview text (max 300 characters).
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// VoiceCloneResponse is the response from voice cloning.
type VoiceCloneResponse struct {
	// VoiceID is the cloned voice ID.
	VoiceID string `json:"voice_id"`

	// InputSensitive is set when the source audio tripped the content check.
	InputSensitive bool `json:"input_sensitive"`

	// InputSensitiveType names the content check that fired.
	InputSensitiveType json.RawMessage `json:"input_sensitive_type,omitempty"`

	// DemoAudio is the preview audio URL or hex payload, if any.
	DemoAudio string `json:"demo_audio,omitempty"`
}

// VoiceDesignRequest is the request for voice design.
type VoiceDesignRequest struct {
	// Prompt is the voice description.
	Prompt string `json:"prompt" yaml:"prompt"`

	// PreviewText is the preview text.
	PreviewText string `json:"preview_text,omitempty" yaml:"preview_text,omitempty"`

	// VoiceID is the custom voice ID.
	VoiceID string `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
}

// VoiceDesignResponse is the response from voice design.
type VoiceDesignResponse struct {
	// VoiceID is the designed voice ID, as confirmed by the API.
	VoiceID string `json:"voice_id"`

	// TrialAudio is the preview audio: a URL, or base64/hex data.
	TrialAudio string `json:"trial_audio,omitempty"`
}

// ================== Video Types ==================

// VideoRequest is the request for video generation. The fields that apply
// depend on the model; see ValidateVideoRequest.
type VideoRequest struct {
	// Model is the model name.
	Model string `json:"model" yaml:"model"`

	// Prompt is the video description (max 2000 characters).
	Prompt string `json:"prompt" yaml:"prompt"`

	// PromptOptimizer lets the API rewrite the prompt.
	PromptOptimizer bool `json:"prompt_optimizer" yaml:"prompt_optimizer"`

	// FirstFrameImage is the first frame as a URL or data URI.
	FirstFrameImage string `json:"first_frame_image,omitempty" yaml:"first_frame_image,omitempty"`

	// LastFrameImage is the last frame (MiniMax-Hailuo-02 only).
	LastFrameImage string `json:"last_frame_image,omitempty" yaml:"last_frame_image,omitempty"`

	// Duration is the video duration in seconds (MiniMax-Hailuo-02 only).
	Duration int `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Resolution is 512P, 768P or 1080P (MiniMax-Hailuo-02 only).
	Resolution string `json:"resolution,omitempty" yaml:"resolution,omitempty"`

	// CallbackURL receives status updates from the API.
	CallbackURL string `json:"callback_url,omitempty" yaml:"callback_url,omitempty"`
}

// VideoStatus is a single observation of a video generation task.
type VideoStatus struct {
	TaskID        string     `json:"task_id"`
	Status        TaskStatus `json:"status"`
	FileID        FlexibleID `json:"file_id,omitempty"`
	VideoURL      string     `json:"video_url,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	VideoWidth    int        `json:"video_width,omitempty"`
	VideoHeight   int        `json:"video_height,omitempty"`
	VideoLength   float64    `json:"video_length,omitempty"`
}

// VideoResult is the result of a finished video generation task.
type VideoResult struct {
	// FileID is the generated video file ID.
	FileID string `json:"file_id"`

	// VideoURL is the direct URL when the status query returned one.
	VideoURL string `json:"video_url,omitempty"`

	// DownloadURL is resolved from the file retrieve endpoint.
	DownloadURL string `json:"download_url,omitempty"`

	// CoverImageURL is the cover image URL, if any.
	CoverImageURL string `json:"cover_image_url,omitempty"`

	// VideoWidth is the width of the generated video.
	VideoWidth int `json:"video_width,omitempty"`

	// VideoHeight is the height of the generated video.
	VideoHeight int `json:"video_height,omitempty"`
}

// URL returns the best URL to fetch the video from.
func (r *VideoResult) URL() string {
	if r.VideoURL != "" {
		return r.VideoURL
	}
	return r.DownloadURL
}

// ================== Music Types ==================

// MusicRequest is the request for music generation.
type MusicRequest struct {
	// Model is the model name.
	Model string `json:"model" yaml:"model"`

	// Prompt is the music description (10-300 characters).
	Prompt string `json:"prompt" yaml:"prompt"`

	// Lyrics is the song lyrics (10-600 characters).
	// Use \n to separate lines, supports tags: [Intro], [Verse], [Chorus], [Bridge], [Outro].
	Lyrics string `json:"lyrics" yaml:"lyrics"`

	// Stream requests SSE delivery; only valid with hex output.
	Stream bool `json:"stream" yaml:"stream"`

	// OutputFormat is hex (inline audio) or url (24h download link).
	OutputFormat OutputFormat `json:"output_format" yaml:"output_format"`

	// AudioSetting holds sample rate, bitrate and format.
	AudioSetting *AudioSetting `json:"audio_setting,omitempty" yaml:"audio_setting,omitempty"`

	// AIGCWatermark appends an audible watermark.
	AIGCWatermark bool `json:"aigc_watermark" yaml:"aigc_watermark"`
}

// MusicResponse is the response from music generation.
type MusicResponse struct {
	// Audio is the raw payload: hex text, or a URL for url output.
	Audio string `json:"-"`

	// Status is 1 while generating and 2 when complete.
	Status int `json:"status"`

	// ExtraInfo contains audio metadata.
	ExtraInfo *MusicInfo `json:"extra_info"`
}

// ================== File Types ==================

// FileInfo contains information about a file.
type FileInfo struct {
	// FileID is the file identifier (can be string or number from API).
	FileID FlexibleID `json:"file_id"`

	// Filename is the file name.
	Filename string `json:"filename"`

	// Bytes is the file size in bytes.
	Bytes int64 `json:"bytes"`

	// CreatedAt is the creation timestamp.
	CreatedAt int64 `json:"created_at"`

	// Purpose is the file purpose.
	Purpose string `json:"purpose"`

	// DownloadURL is the temporary download link.
	DownloadURL string `json:"download_url,omitempty"`
}
