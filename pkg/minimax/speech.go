package minimax

import (
	"context"
	"errors"
	"net/http"
)

var (
	errNoData   = errors.New("no data returned from API")
	errNoAudio  = errors.New("no audio data returned")
	errNoFileID = errors.New("response has no file_id")
)

// SpeechService provides speech synthesis operations.
type SpeechService struct {
	client *Client
}

// newSpeechService creates a new speech service.
func newSpeechService(client *Client) *SpeechService {
	return &SpeechService{client: client}
}

// speechResponse is the API response for speech synthesis.
type speechResponse struct {
	Data *struct {
		Audio        string `json:"audio"`
		SubtitleFile string `json:"subtitle_file"`
	} `json:"data"`
	ExtraInfo *AudioInfo `json:"extra_info"`
	TraceID   string     `json:"trace_id"`
}

// Synthesize performs synchronous speech synthesis.
//
// The audio is returned undecoded: hex text by default, or a URL when the
// request asked for url output. Maximum text length is 10,000 characters.
func (s *SpeechService) Synthesize(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error) {
	if err := ValidateSpeechRequest(req); err != nil {
		return nil, err
	}

	var apiResp speechResponse
	if err := s.client.http.request(ctx, http.MethodPost, "/v1/t2a_v2", nil, req, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Data == nil {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/t2a_v2", Err: errNoData}
	}
	if apiResp.Data.Audio == "" {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/t2a_v2", Err: errNoAudio}
	}

	if info := apiResp.ExtraInfo; info != nil {
		s.client.config.logger.Debug("speech synthesized",
			"audio_length_ms", info.AudioLength,
			"audio_size", info.AudioSize,
			"usage_characters", info.UsageCharacters)
	}

	return &SpeechResponse{
		Audio:        apiResp.Data.Audio,
		SubtitleFile: apiResp.Data.SubtitleFile,
		ExtraInfo:    apiResp.ExtraInfo,
		TraceID:      apiResp.TraceID,
	}, nil
}
