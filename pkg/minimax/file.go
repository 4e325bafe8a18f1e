package minimax

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// FileService provides file management operations.
type FileService struct {
	client *Client
}

// newFileService creates a new file service.
func newFileService(client *Client) *FileService {
	return &FileService{client: client}
}

// Upload uploads a file for the given purpose.
func (s *FileService) Upload(ctx context.Context, file io.Reader, filename string, purpose FilePurpose) (*FileInfo, error) {
	if filename == "" {
		return nil, invalid("filename", "is required")
	}

	var resp struct {
		File FileInfo `json:"file"`
	}
	fields := map[string]string{
		"purpose": string(purpose),
	}
	if err := s.client.http.uploadFile(ctx, "/v1/files/upload", file, filename, fields, &resp); err != nil {
		return nil, err
	}
	if resp.File.FileID == "" {
		return nil, &TransportError{Method: http.MethodPost, Endpoint: "/v1/files/upload", Err: errNoFileID}
	}
	return &resp.File, nil
}

// Retrieve returns information about a file, including its temporary
// download URL.
func (s *FileService) Retrieve(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, invalid("file_id", "is required")
	}

	var resp struct {
		File FileInfo `json:"file"`
	}
	query := url.Values{"file_id": {fileID}}
	if err := s.client.http.request(ctx, http.MethodGet, "/v1/files/retrieve", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.File, nil
}

// Download fetches an absolute URL, such as a generated asset link, without
// sending API credentials. The caller must close the returned body.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	if rawURL == "" {
		return nil, 0, invalid("url", "is required")
	}
	return c.http.download(ctx, rawURL)
}
