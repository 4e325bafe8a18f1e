package minimax

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// VideoService provides video generation operations.
type VideoService struct {
	client *Client
}

// newVideoService creates a new video service.
func newVideoService(client *Client) *VideoService {
	return &VideoService{client: client}
}

// Create validates req and submits a video generation task.
//
// The returned Task is in the pending state; poll it with Task.Wait or
// query it once with Query.
//
// Example:
//
//	task, err := client.Video.Create(ctx, &minimax.VideoRequest{
//	    Model:  minimax.ModelHailuo02,
//	    Prompt: "A cat walking in a garden",
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := task.Wait(ctx, minimax.Poller{})
func (s *VideoService) Create(ctx context.Context, req *VideoRequest) (*Task[VideoResult], error) {
	if err := ValidateVideoRequest(req, s.client.config.logger); err != nil {
		return nil, err
	}

	var resp struct {
		TaskID string `json:"task_id"`
	}
	if err := s.client.http.request(ctx, http.MethodPost, "/v1/video_generation", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.TaskID == "" {
		return nil, &TransportError{
			Method:   http.MethodPost,
			Endpoint: "/v1/video_generation",
			Err:      errors.New("response has no task_id"),
		}
	}

	s.client.config.logger.Info("video task created", "task_id", resp.TaskID, "model", req.Model)
	return s.client.NewVideoTask(resp.TaskID), nil
}

// Query performs a single status query for a video generation task.
func (s *VideoService) Query(ctx context.Context, taskID string) (*VideoStatus, error) {
	if taskID == "" {
		return nil, invalid("task_id", "is required")
	}

	var resp VideoStatus
	query := url.Values{"task_id": {taskID}}
	if err := s.client.http.request(ctx, http.MethodGet, "/v1/query/video_generation", query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.TaskID == "" {
		resp.TaskID = taskID
	}
	if resp.Status == "" {
		resp.Status = TaskStatusUnknown
	}
	return &resp, nil
}

// queryResult adapts Query for Task polling.
func (s *VideoService) queryResult(ctx context.Context, taskID string) (TaskStatus, *VideoResult, error) {
	st, err := s.Query(ctx, taskID)
	if err != nil {
		return "", nil, err
	}
	if st.Status.Phase() != PhaseSuccess {
		return st.Status, nil, nil
	}
	return st.Status, &VideoResult{
		FileID:        st.FileID.String(),
		VideoURL:      st.VideoURL,
		CoverImageURL: st.CoverImageURL,
		VideoWidth:    st.VideoWidth,
		VideoHeight:   st.VideoHeight,
	}, nil
}

// Wait polls taskID until it finishes and resolves the download URL of the
// generated video through the file retrieve endpoint.
func (s *VideoService) Wait(ctx context.Context, taskID string, p Poller) (*VideoResult, error) {
	if p.Logger == nil {
		p.Logger = s.client.config.logger
	}
	result, err := s.client.NewVideoTask(taskID).Wait(ctx, p)
	if err != nil {
		return nil, err
	}
	if result.VideoURL != "" || result.FileID == "" {
		if result.URL() == "" {
			return nil, fmt.Errorf("video task %s succeeded without file_id or video_url", taskID)
		}
		return result, nil
	}

	info, err := s.client.File.Retrieve(ctx, result.FileID)
	if err != nil {
		return nil, err
	}
	if info.DownloadURL == "" {
		return nil, fmt.Errorf("file %s has no download_url", result.FileID)
	}
	result.DownloadURL = info.DownloadURL
	return result, nil
}
