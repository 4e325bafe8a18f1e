package nodes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/media"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/taskstore"
)

// VideoGenerationInput are the parameters of the video-generation node.
// Frame images are file paths, http(s) URLs or data URIs.
type VideoGenerationInput struct {
	APIKey          string `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	Model           string `json:"model"`
	Prompt          string `json:"prompt" jsonschema:"video description, at most 2000 characters"`
	PromptOptimizer bool   `json:"prompt_optimizer"`
	FirstFrameImage string `json:"first_frame_image,omitempty" jsonschema:"first frame: image path, URL or data URI"`
	LastFrameImage  string `json:"last_frame_image,omitempty" jsonschema:"last frame, MiniMax-Hailuo-02 only"`
	Duration        string `json:"duration" jsonschema:"seconds, MiniMax-Hailuo-02 only"`
	Resolution      string `json:"resolution" jsonschema:"MiniMax-Hailuo-02 only"`
	CallbackURL     string `json:"callback_url,omitempty"`
}

func videoGenerationNode() (*Node, error) {
	return define("video-generation", "MiniMax Video Generation", CategoryVideo,
		"Start an asynchronous video generation task.",
		[]string{"task_id"},
		VideoGenerationInput{
			Model:           minimax.ModelI2V01Director,
			PromptOptimizer: true,
			Duration:        "6",
			Resolution:      minimax.Resolution768P,
		},
		generateVideo,
		oneOf("model", minimax.VideoModels...),
		oneOf("duration", "6", "10"),
		oneOf("resolution", minimax.Resolution512P, minimax.Resolution768P, minimax.Resolution1080P),
	)
}

func generateVideo(ctx context.Context, env *Env, in *VideoGenerationInput) ([]string, error) {
	duration, err := strconv.Atoi(in.Duration)
	if err != nil {
		return nil, &minimax.ValidationError{Field: "duration", Reason: fmt.Sprintf("must be 6 or 10, got %q", in.Duration)}
	}
	req := &minimax.VideoRequest{
		Model:           in.Model,
		Prompt:          strings.TrimSpace(in.Prompt),
		PromptOptimizer: in.PromptOptimizer,
		Duration:        duration,
		Resolution:      in.Resolution,
		CallbackURL:     strings.TrimSpace(in.CallbackURL),
	}
	if req.FirstFrameImage, err = env.frame("first_frame_image", in.FirstFrameImage); err != nil {
		return nil, err
	}
	if req.LastFrameImage, err = env.frame("last_frame_image", in.LastFrameImage); err != nil {
		return nil, err
	}

	client, err := env.client(in.APIKey, "")
	if err != nil {
		return nil, err
	}
	task, err := client.Video.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	env.record(ctx, taskstore.Record{
		ID:     task.ID,
		Kind:   taskstore.KindVideo,
		Model:  req.Model,
		Status: string(task.Status()),
	})
	return []string{task.ID}, nil
}

// frame turns a frame parameter into the value sent to the API. Paths and
// data URIs are decoded, validated and re-encoded as JPEG data URIs; URLs
// are passed through.
func (e *Env) frame(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "", nil
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		return value, nil
	case strings.HasPrefix(value, "data:"):
		if !strings.Contains(value, ";base64,") {
			return "", &minimax.ValidationError{Field: name, Reason: "data URI must be base64 encoded"}
		}
		b, err := media.Base64(value).Decode()
		if err != nil {
			return "", &minimax.ValidationError{Field: name, Reason: err.Error()}
		}
		return minimax.LoadFrame(name, bytes.NewReader(b))
	}
	path, err := e.inputPath(value)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", &minimax.ValidationError{Field: name, Reason: err.Error()}
	}
	defer f.Close()
	return minimax.LoadFrame(name, f)
}

// TaskInput are the parameters of the check-video-status node.
type TaskInput struct {
	APIKey string `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	TaskID string `json:"task_id" jsonschema:"task id from video generation"`
}

func checkVideoStatusNode() (*Node, error) {
	return define("check-video-status", "MiniMax Check Video Status", CategoryVideo,
		"Query a video generation task once.",
		[]string{"status", "file_id", "video_url", "cover_image_url"},
		TaskInput{},
		checkVideoStatus,
		required("task_id"),
	)
}

func checkVideoStatus(ctx context.Context, env *Env, in *TaskInput) ([]string, error) {
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return nil, &minimax.ValidationError{Field: "task_id", Reason: "is required"}
	}
	client, err := env.client(in.APIKey, "")
	if err != nil {
		return nil, err
	}
	st, err := client.Video.Query(ctx, taskID)
	if err != nil {
		return nil, err
	}

	attrs := []any{"task_id", taskID, "status", st.Status}
	if st.VideoWidth > 0 && st.VideoHeight > 0 {
		attrs = append(attrs, "dimensions", fmt.Sprintf("%dx%d", st.VideoWidth, st.VideoHeight))
	}
	if st.VideoLength > 0 {
		attrs = append(attrs, "length_s", st.VideoLength)
	}
	env.logger().Info("video task status", attrs...)

	env.record(ctx, taskstore.Record{
		ID:       taskID,
		Kind:     taskstore.KindVideo,
		Status:   string(st.Status),
		FileID:   st.FileID.String(),
		VideoURL: st.VideoURL,
	})
	return []string{string(st.Status), st.FileID.String(), st.VideoURL, st.CoverImageURL}, nil
}

// WaitVideoInput are the parameters of the wait-video node. Durations are
// in seconds.
type WaitVideoInput struct {
	APIKey       string `json:"api_key,omitempty" jsonschema:"MiniMax API key"`
	TaskID       string `json:"task_id" jsonschema:"task id from video generation"`
	PollInterval int    `json:"poll_interval" jsonschema:"seconds between status queries"`
	MaxWait      int    `json:"max_wait" jsonschema:"seconds to wait before giving up"`
}

// Poll bounds of the wait-video node, in seconds.
const (
	MinPollInterval = 10
	MaxPollInterval = 300
	MinMaxWait      = 300
	MaxMaxWait      = 7200
)

func waitVideoNode() (*Node, error) {
	return define("wait-video", "MiniMax Wait for Video", CategoryVideo,
		"Poll a video generation task until it finishes and resolve its download URL.",
		[]string{"status", "file_id", "video_url"},
		WaitVideoInput{
			PollInterval: int(minimax.DefaultPollInterval / time.Second),
			MaxWait:      int(minimax.DefaultMaxWait / time.Second),
		},
		waitVideo,
		required("task_id"),
		between("poll_interval", MinPollInterval, MaxPollInterval),
		between("max_wait", MinMaxWait, MaxMaxWait),
	)
}

func waitVideo(ctx context.Context, env *Env, in *WaitVideoInput) ([]string, error) {
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return nil, &minimax.ValidationError{Field: "task_id", Reason: "is required"}
	}
	if in.PollInterval < MinPollInterval || in.PollInterval > MaxPollInterval {
		return nil, &minimax.ValidationError{Field: "poll_interval",
			Reason: fmt.Sprintf("must be between %d and %d seconds, got %d", MinPollInterval, MaxPollInterval, in.PollInterval)}
	}
	if in.MaxWait < MinMaxWait || in.MaxWait > MaxMaxWait {
		return nil, &minimax.ValidationError{Field: "max_wait",
			Reason: fmt.Sprintf("must be between %d and %d seconds, got %d", MinMaxWait, MaxMaxWait, in.MaxWait)}
	}
	client, err := env.client(in.APIKey, "")
	if err != nil {
		return nil, err
	}

	result, err := client.Video.Wait(ctx, taskID, minimax.Poller{
		Interval: time.Duration(in.PollInterval) * time.Second,
		MaxWait:  time.Duration(in.MaxWait) * time.Second,
		Clock:    env.clock(),
		Logger:   env.logger(),
	})
	var failed *minimax.TaskFailedError
	if errors.As(err, &failed) {
		env.record(ctx, taskstore.Record{ID: taskID, Kind: taskstore.KindVideo, Status: string(failed.Status)})
	}
	if err != nil {
		return nil, err
	}

	status := string(minimax.TaskStatusSuccess)
	env.record(ctx, taskstore.Record{
		ID:       taskID,
		Kind:     taskstore.KindVideo,
		Status:   status,
		FileID:   result.FileID,
		VideoURL: result.URL(),
	})
	return []string{status, result.FileID, result.URL()}, nil
}

// DownloadVideoInput are the parameters of the download-video node.
type DownloadVideoInput struct {
	VideoURL string `json:"video_url" jsonschema:"video URL from the status check"`
	Prefix   string `json:"filename_prefix"`
}

const videoPrefix = "minimax_video"

// VideoExtensions are the extensions kept from a video URL.
var VideoExtensions = []string{"mp4", "avi", "mov", "mkv", "webm"}

func downloadVideoNode() (*Node, error) {
	return define("download-video", "MiniMax Download Video", CategoryVideo,
		"Download a generated video into the output directory.",
		[]string{"video_path"},
		DownloadVideoInput{Prefix: videoPrefix},
		downloadVideo,
		required("video_url"),
	)
}

func downloadVideo(ctx context.Context, env *Env, in *DownloadVideoInput) ([]string, error) {
	rawURL := strings.TrimSpace(in.VideoURL)
	if rawURL == "" {
		return nil, &minimax.ValidationError{Field: "video_url", Reason: "is required"}
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &minimax.ValidationError{Field: "video_url", Reason: "invalid video URL provided"}
	}

	out, err := env.materializer(env.downloader())
	if err != nil {
		return nil, err
	}
	f, err := out.Materialize(ctx, media.URL(rawURL), media.Options{
		Prefix:   in.Prefix,
		Fallback: videoPrefix,
		Ext:      media.ExtFromURL(rawURL, VideoExtensions, "mp4"),
	})
	if err != nil {
		return nil, err
	}
	env.logger().Info("video downloaded", "path", f.Path, "size_mb", fmt.Sprintf("%.1f", float64(f.Size)/(1<<20)))
	return []string{f.Path}, nil
}
