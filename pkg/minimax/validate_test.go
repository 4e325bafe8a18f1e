package minimax

import (
	"errors"
	"image"
	"strings"
	"testing"
)

func TestValidateVideoRequest(t *testing.T) {
	const frame = "data:image/jpeg;base64,AAAA"
	tests := []struct {
		name    string
		req     VideoRequest
		wantErr string
	}{
		{"t2v ok", VideoRequest{Model: ModelT2V01, Prompt: "a cat"}, ""},
		{"t2v needs prompt", VideoRequest{Model: ModelT2V01Director}, "requires a text prompt"},
		{"i2v needs frame", VideoRequest{Model: ModelI2V01, Prompt: "x"}, "requires a first frame image"},
		{"i2v ok", VideoRequest{Model: ModelI2V01Live, FirstFrameImage: frame}, ""},
		{"s2v needs something", VideoRequest{Model: ModelS2V01}, "either a prompt or an image"},
		{"last frame only hailuo", VideoRequest{Model: ModelI2V01, FirstFrameImage: frame, LastFrameImage: frame}, "only supported by"},
		{"hailuo ok", VideoRequest{Model: ModelHailuo02, Prompt: "x", Duration: 10, Resolution: Resolution768P}, ""},
		{"hailuo 10s 1080p", VideoRequest{Model: ModelHailuo02, Prompt: "x", Duration: 10, Resolution: Resolution1080P}, "10s duration with 1080P"},
		{"hailuo bad duration", VideoRequest{Model: ModelHailuo02, Prompt: "x", Duration: 7}, "must be 6 or 10"},
		{"hailuo 512p needs frame", VideoRequest{Model: ModelHailuo02, Prompt: "x", Resolution: Resolution512P}, "requires a first frame image"},
		{"hailuo 512p no last frame", VideoRequest{Model: ModelHailuo02, FirstFrameImage: frame, LastFrameImage: frame, Resolution: Resolution512P}, "does not support last_frame_image"},
		{"unknown model", VideoRequest{Model: "V-99", Prompt: "x"}, "unsupported value"},
		{"prompt too long", VideoRequest{Model: ModelT2V01, Prompt: strings.Repeat("a", MaxVideoPromptLen+1)}, "must not exceed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := ValidateVideoRequest(&req, discardLogger)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateVideoRequestDefaults(t *testing.T) {
	req := VideoRequest{Model: ModelHailuo02, Prompt: "x"}
	if err := ValidateVideoRequest(&req, discardLogger); err != nil {
		t.Fatal(err)
	}
	if req.Duration != 6 || req.Resolution != Resolution768P {
		t.Fatalf("defaults not applied: %+v", req)
	}

	req = VideoRequest{Model: ModelT2V01, Prompt: "x", Duration: 10, Resolution: Resolution1080P}
	if err := ValidateVideoRequest(&req, discardLogger); err != nil {
		t.Fatal(err)
	}
	if req.Duration != 0 || req.Resolution != "" {
		t.Fatalf("non-hailuo fields not cleared: %+v", req)
	}
}

func TestValidateSpeechRequest(t *testing.T) {
	valid := func() *SpeechRequest {
		return &SpeechRequest{
			Model:        ModelSpeech02HD,
			Text:         "hello",
			VoiceSetting: &VoiceSetting{VoiceID: "male-qn-qingse", Speed: 1, Vol: 1},
		}
	}
	if err := ValidateSpeechRequest(valid()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(*SpeechRequest)
	}{
		{"empty text", func(r *SpeechRequest) { r.Text = "  " }},
		{"text too long", func(r *SpeechRequest) { r.Text = strings.Repeat("字", MaxSpeechTextLen+1) }},
		{"no voice", func(r *SpeechRequest) { r.VoiceSetting = nil }},
		{"speed", func(r *SpeechRequest) { r.VoiceSetting.Speed = 2.5 }},
		{"vol", func(r *SpeechRequest) { r.VoiceSetting.Vol = 0 }},
		{"pitch", func(r *SpeechRequest) { r.VoiceSetting.Pitch = 13 }},
		{"emotion", func(r *SpeechRequest) { r.VoiceSetting.Emotion = "bored" }},
		{"language", func(r *SpeechRequest) { r.LanguageBoost = "Klingon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			if KindOf(ValidateSpeechRequest(req)) != KindValidation {
				t.Fatal("expected validation error")
			}
		})
	}

	req := valid()
	req.Text = strings.Repeat("字", MaxSpeechTextLen)
	if err := ValidateSpeechRequest(req); err != nil {
		t.Fatalf("text at limit counted in characters should pass: %v", err)
	}
}

func TestValidateVoiceID(t *testing.T) {
	tests := map[string]bool{
		"myvoice1":   true,
		"Voice2024x": true,
		"short1":     false,
		"1voiceabc":  false,
		"novoicenum": false,
	}
	for id, ok := range tests {
		if err := ValidateVoiceID(id); (err == nil) != ok {
			t.Errorf("ValidateVoiceID(%q) = %v, want ok=%v", id, err, ok)
		}
	}
}

func TestValidateVoiceCloneTruncatesPreview(t *testing.T) {
	req := &VoiceCloneRequest{VoiceID: "myvoice01", Accuracy: 0.7, Text: strings.Repeat("a", 350)}
	if err := ValidateVoiceCloneRequest(req, discardLogger); err != nil {
		t.Fatal(err)
	}
	if len(req.Text) != MaxClonePreviewLen {
		t.Fatalf("text len = %d, want %d", len(req.Text), MaxClonePreviewLen)
	}
	if req.Model != ModelSpeech02HD {
		t.Fatalf("model = %q", req.Model)
	}

	req = &VoiceCloneRequest{VoiceID: "myvoice01", Model: ModelSpeech02Turbo}
	if err := ValidateVoiceCloneRequest(req, discardLogger); err != nil {
		t.Fatal(err)
	}
	if req.Model != "" {
		t.Fatalf("model should be dropped without preview text, got %q", req.Model)
	}

	req = &VoiceCloneRequest{VoiceID: "myvoice01", Accuracy: 1.5}
	if KindOf(ValidateVoiceCloneRequest(req, discardLogger)) != KindValidation {
		t.Fatal("accuracy out of range should fail")
	}
}

func TestValidateMusicRequest(t *testing.T) {
	valid := func() *MusicRequest {
		return &MusicRequest{
			Model:        ModelMusic15,
			Prompt:       "upbeat pop, sunny morning",
			Lyrics:       "[Verse]\nHello world, hello sun",
			OutputFormat: OutputFormatHex,
		}
	}
	if err := ValidateMusicRequest(valid()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mutate  func(*MusicRequest)
		wantErr string
	}{
		{"short prompt", func(r *MusicRequest) { r.Prompt = "pop" }, "at least 10"},
		{"long prompt", func(r *MusicRequest) { r.Prompt = strings.Repeat("p", 301) }, "must not exceed 300"},
		{"short lyrics", func(r *MusicRequest) { r.Lyrics = "la la" }, "at least 10"},
		{"long lyrics", func(r *MusicRequest) { r.Lyrics = strings.Repeat("l", 601) }, "must not exceed 600"},
		{"stream url", func(r *MusicRequest) { r.Stream = true; r.OutputFormat = OutputFormatURL }, "only hex format"},
		{"sample rate", func(r *MusicRequest) { r.AudioSetting = &AudioSetting{SampleRate: 8000} }, "sample_rate"},
		{"bitrate", func(r *MusicRequest) { r.AudioSetting = &AudioSetting{Bitrate: 96000} }, "bitrate"},
		{"format", func(r *MusicRequest) { r.AudioSetting = &AudioSetting{Format: AudioFormatFLAC} }, "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := ValidateMusicRequest(req)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFrameSize(t *testing.T) {
	tests := []struct {
		w, h int
		ok   bool
	}{
		{300, 300, true},
		{299, 299, false},
		{900, 300, false},
		{400, 1000, false},
		{1000, 400, false},
		{401, 1000, true},
		{1920, 1080, true},
		{0, 100, false},
	}
	for _, tt := range tests {
		err := ValidateFrameSize("first_frame_image", tt.w, tt.h)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateFrameSize(%d, %d) = %v, want ok=%v", tt.w, tt.h, err, tt.ok)
		}
	}
}

func TestEncodeFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	uri, err := EncodeFrame("first_frame_image", img)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected uri prefix: %.40s", uri)
	}

	wide := image.NewRGBA(image.Rect(0, 0, 900, 300))
	if _, err := EncodeFrame("first_frame_image", wide); KindOf(err) != KindValidation {
		t.Fatalf("3:1 frame should be rejected, got %v", err)
	}
}
