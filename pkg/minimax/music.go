package minimax

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MusicService provides music generation operations.
type MusicService struct {
	client *Client
}

// newMusicService creates a new music service.
func newMusicService(client *Client) *MusicService {
	return &MusicService{client: client}
}

// musicResponse is the API response for music generation. The same shape
// is used for every SSE chunk of a streamed generation.
type musicResponse struct {
	Data *struct {
		Audio  string `json:"audio"`
		Status int    `json:"status"`
	} `json:"data"`
	ExtraInfo *MusicInfo `json:"extra_info"`
}

// Music generation status values.
const (
	MusicStatusGenerating = 1
	MusicStatusComplete   = 2
)

// Generate generates music from prompt and lyrics.
//
// With Stream set the response is read as server-sent events and the hex
// chunks are joined; otherwise a single JSON response is expected.
//
// Example:
//
//	resp, err := client.Music.Generate(ctx, &minimax.MusicRequest{
//	    Model:  minimax.ModelMusic15,
//	    Prompt: "Pop music, happy mood, suitable for morning",
//	    Lyrics: "[Verse]\nHello world\nIt's a beautiful day\n[Chorus]\nLet's celebrate",
//	})
func (s *MusicService) Generate(ctx context.Context, req *MusicRequest) (*MusicResponse, error) {
	if err := ValidateMusicRequest(req); err != nil {
		return nil, err
	}
	if req.Model == "" {
		req.Model = ModelMusic15
	}
	if req.OutputFormat == "" {
		req.OutputFormat = OutputFormatHex
	}

	var resp *MusicResponse
	var err error
	if req.Stream {
		resp, err = s.generateStream(ctx, req)
	} else {
		resp, err = s.generate(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	logger := s.client.config.logger
	if resp.Status == MusicStatusGenerating {
		logger.Warn("music is still being generated, API returned partial data")
	}
	if info := resp.ExtraInfo; info != nil {
		logger.Info("music generated",
			"duration_ms", info.MusicDuration,
			"sample_rate", info.MusicSampleRate,
			"channels", info.MusicChannel,
			"bitrate", info.Bitrate,
			"size", info.MusicSize)
	}
	return resp, nil
}

func (s *MusicService) generate(ctx context.Context, req *MusicRequest) (*MusicResponse, error) {
	var apiResp musicResponse
	if err := s.client.http.request(ctx, http.MethodPost, "/v1/music_generation", nil, req, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Data == nil {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: errNoData}
	}
	if apiResp.Data.Audio == "" {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: errNoAudio}
	}
	return &MusicResponse{
		Audio:     apiResp.Data.Audio,
		Status:    apiResp.Data.Status,
		ExtraInfo: apiResp.ExtraInfo,
	}, nil
}

// generateStream reads SSE chunks. Intermediate chunks carry pieces of the
// hex audio; a chunk with status 2 carries the complete audio and replaces
// whatever was accumulated.
func (s *MusicService) generateStream(ctx context.Context, req *MusicRequest) (*MusicResponse, error) {
	resp, err := s.client.http.requestStream(ctx, http.MethodPost, "/v1/music_generation", req)
	if err != nil {
		s.client.config.logger.Error("music stream request failed", "kind", KindOf(err).String(), "err", err)
		return nil, err
	}

	// Some deployments answer a stream request with a plain JSON body.
	if !strings.Contains(resp.Header.Get("Content-Type"), "event-stream") {
		defer resp.Body.Close()
		return s.handlePlain(resp)
	}

	reader := newSSEReader(resp)
	defer reader.close()

	var (
		audio strings.Builder
		out   MusicResponse
	)
	for {
		data, done, err := reader.readEvent()
		if err != nil {
			return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: fmt.Errorf("read stream: %w", err)}
		}
		if done {
			break
		}

		env, err := ParseEnvelope(data)
		if err != nil {
			return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Body: truncateStr(string(data), 200), Err: err}
		}
		if apiErr := env.Err(); apiErr != nil {
			return nil, apiErr
		}

		var chunk musicResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: fmt.Errorf("unmarshal chunk: %w", err)}
		}
		if chunk.ExtraInfo != nil {
			out.ExtraInfo = chunk.ExtraInfo
		}
		if chunk.Data == nil {
			continue
		}
		out.Status = chunk.Data.Status
		if chunk.Data.Status == MusicStatusComplete && chunk.Data.Audio != "" {
			audio.Reset()
		}
		audio.WriteString(chunk.Data.Audio)
	}

	if audio.Len() == 0 {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: errNoAudio}
	}
	out.Audio = audio.String()
	return &out, nil
}

func (s *MusicService) handlePlain(resp *http.Response) (*MusicResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: fmt.Errorf("read response body: %w", err)}
	}
	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Body: truncateStr(string(body), 200), Err: err}
	}
	if apiErr := env.Err(); apiErr != nil {
		return nil, apiErr
	}
	var apiResp musicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if apiResp.Data == nil || apiResp.Data.Audio == "" {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/music_generation", Err: errNoAudio}
	}
	return &MusicResponse{Audio: apiResp.Data.Audio, Status: apiResp.Data.Status, ExtraInfo: apiResp.ExtraInfo}, nil
}
