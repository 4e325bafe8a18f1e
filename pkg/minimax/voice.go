package minimax

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// VoiceService provides voice cloning and design operations.
type VoiceService struct {
	client *Client
}

// newVoiceService creates a new voice service.
func newVoiceService(client *Client) *VoiceService {
	return &VoiceService{client: client}
}

// UploadCloneAudio uploads an audio file for voice cloning.
//
// The returned file_id can be used in the Clone method.
func (s *VoiceService) UploadCloneAudio(ctx context.Context, file io.Reader, filename string) (*UploadResponse, error) {
	info, err := s.client.File.Upload(ctx, file, filename, FilePurposeVoiceClone)
	if err != nil {
		return nil, err
	}
	return &UploadResponse{FileID: info.FileID}, nil
}

// Clone creates a custom voice from previously uploaded audio.
//
// Example:
//
//	upload, err := client.Voice.UploadCloneAudio(ctx, audioFile, "sample.mp3")
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Voice.Clone(ctx, &minimax.VoiceCloneRequest{
//	    FileID:  json.Number(upload.FileID),
//	    VoiceID: "myvoice001",
//	})
func (s *VoiceService) Clone(ctx context.Context, req *VoiceCloneRequest) (*VoiceCloneResponse, error) {
	logger := s.client.config.logger
	if err := ValidateVoiceCloneRequest(req, logger); err != nil {
		return nil, err
	}
	if req.FileID == "" {
		return nil, invalid("file_id", "is required")
	}

	var resp VoiceCloneResponse
	if err := s.client.http.request(ctx, http.MethodPost, "/v1/voice_clone", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.VoiceID == "" {
		resp.VoiceID = req.VoiceID
	}
	if resp.InputSensitive {
		logger.Warn("voice clone input triggered sensitivity check",
			"voice_id", resp.VoiceID,
			"type", sensitiveType(resp.InputSensitiveType))
	}
	return &resp, nil
}

// Design creates a voice from a text description.
//
// When req.VoiceID is empty the API assigns one; the returned VoiceID is
// always the id the API confirmed.
func (s *VoiceService) Design(ctx context.Context, req *VoiceDesignRequest) (*VoiceDesignResponse, error) {
	if err := ValidateVoiceDesignRequest(req); err != nil {
		return nil, err
	}

	var resp VoiceDesignResponse
	if err := s.client.http.request(ctx, http.MethodPost, "/v1/voice_design", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.VoiceID == "" {
		resp.VoiceID = req.VoiceID
	}
	return &resp, nil
}

func sensitiveType(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
