package nodes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/taskstore"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestVideoGenerationJournalsTask(t *testing.T) {
	env := newTestEnv(t)
	env.api.handle("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "T2V-01" || body["prompt"] != "a cat on a piano" {
			t.Errorf("body = %v", body)
		}
		if _, sent := body["duration"]; sent {
			t.Errorf("duration sent for T2V-01")
		}
		if _, sent := body["resolution"]; sent {
			t.Errorf("resolution sent for T2V-01")
		}
		writeJSON(w, map[string]any{"task_id": "106916112212032", "base_resp": ok()})
	})

	res := env.mustRun(t, "video-generation", `{"model":"T2V-01","prompt":"a cat on a piano"}`)
	if res.Get("task_id") != "106916112212032" {
		t.Fatalf("task_id = %s", res.Get("task_id"))
	}

	rec, err := env.Journal.Get(context.Background(), taskstore.KindVideo, "106916112212032")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Model != "T2V-01" || rec.Status != string(minimax.TaskStatusPending) {
		t.Fatalf("journal record = %+v", rec)
	}
}

func TestVideoGenerationFrames(t *testing.T) {
	env := newTestEnv(t)
	writePNG(t, env.in.Abs("first.png"), 400, 400)
	writePNG(t, env.in.Abs("tiny.png"), 200, 200)
	writePNG(t, env.in.Abs("wide.png"), 900, 300)

	var created atomic.Int32
	env.api.handle("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		created.Add(1)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		first, _ := body["first_frame_image"].(string)
		if !strings.HasPrefix(first, "data:image/jpeg;base64,") {
			t.Errorf("first_frame_image = %.40s", first)
		}
		writeJSON(w, map[string]any{"task_id": "t-frames", "base_resp": ok()})
	})

	env.mustRun(t, "video-generation", `{"model":"I2V-01","first_frame_image":"first.png"}`)

	for _, args := range []string{
		`{"model":"I2V-01","first_frame_image":"tiny.png"}`,
		`{"model":"I2V-01","first_frame_image":"wide.png"}`,
		`{"model":"I2V-01","first_frame_image":"missing.png"}`,
		`{"model":"I2V-01"}`,
		`{"model":"T2V-01","prompt":"x","last_frame_image":"first.png"}`,
		`{"model":"MiniMax-Hailuo-02","prompt":"x","duration":"10","resolution":"1080P"}`,
	} {
		_, err := env.run(t, "video-generation", args)
		wantValidation(t, err)
	}
	if n := created.Load(); n != 1 {
		t.Fatalf("%d create requests, want 1", n)
	}
}

func TestVideoGenerationDataURIFrames(t *testing.T) {
	env := newTestEnv(t)
	var created atomic.Int32
	env.api.handle("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		created.Add(1)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		first, _ := body["first_frame_image"].(string)
		if !strings.HasPrefix(first, "data:image/jpeg;base64,") {
			t.Errorf("first_frame_image = %.40s", first)
		}
		writeJSON(w, map[string]any{"task_id": "t-data", "base_resp": ok()})
	})

	env.mustRun(t, "video-generation", `{"model":"I2V-01","first_frame_image":"`+pngDataURI(t, 400, 400)+`"}`)

	for _, frame := range []string{
		pngDataURI(t, 200, 200),
		pngDataURI(t, 900, 300),
		"data:image/png;base64,!!!",
		"data:image/png,plain",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not an image")),
	} {
		_, err := env.run(t, "video-generation", `{"model":"I2V-01","first_frame_image":"`+frame+`"}`)
		wantValidation(t, err)
	}
	if n := created.Load(); n != 1 {
		t.Fatalf("%d create requests, want 1", n)
	}
}

func TestVideoGenerationPassesFrameURLs(t *testing.T) {
	env := newTestEnv(t)
	env.api.handle("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["first_frame_image"] != "https://img.example.com/a.jpg" {
			t.Errorf("first_frame_image = %v", body["first_frame_image"])
		}
		if body["duration"] != float64(10) || body["resolution"] != "768P" {
			t.Errorf("hailuo settings = %v %v", body["duration"], body["resolution"])
		}
		writeJSON(w, map[string]any{"task_id": "t-url", "base_resp": ok()})
	})

	env.mustRun(t, "video-generation",
		`{"model":"MiniMax-Hailuo-02","first_frame_image":"https://img.example.com/a.jpg","duration":"10"}`)
}

func TestCheckVideoStatus(t *testing.T) {
	env := newTestEnv(t)
	env.api.handle("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Query().Get("task_id") != "t1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL)
		}
		writeJSON(w, map[string]any{
			"task_id":         "t1",
			"status":          "Success",
			"file_id":         205258526306433,
			"cover_image_url": "https://cdn.example.com/cover.jpg",
			"video_width":     1366,
			"video_height":    768,
			"base_resp":       ok(),
		})
	})

	res := env.mustRun(t, "check-video-status", `{"task_id":"t1"}`)
	want := map[string]string{
		"status":          "Success",
		"file_id":         "205258526306433",
		"video_url":       "",
		"cover_image_url": "https://cdn.example.com/cover.jpg",
	}
	for k, v := range want {
		if res.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, res.Get(k), v)
		}
	}

	rec, err := env.Journal.Get(context.Background(), taskstore.KindVideo, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != "Success" || rec.FileID != "205258526306433" {
		t.Fatalf("journal record = %+v", rec)
	}
}

func TestWaitVideo(t *testing.T) {
	env := newTestEnv(t)
	var queries atomic.Int32
	env.api.handle("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		status := "Processing"
		if queries.Add(1) == 2 {
			status = "Success"
		}
		writeJSON(w, map[string]any{"task_id": "t1", "status": status, "file_id": "205", "base_resp": ok()})
	})
	env.api.handle("/v1/files/retrieve", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("file_id") != "205" {
			t.Errorf("file_id = %q", r.URL.Query().Get("file_id"))
		}
		writeJSON(w, map[string]any{
			"file":      map[string]any{"file_id": 205, "download_url": "https://cdn.example.com/v/205.mp4"},
			"base_resp": ok(),
		})
	})

	res := env.mustRun(t, "wait-video", `{"task_id":"t1","poll_interval":10,"max_wait":300}`)
	if res.Get("status") != "Success" || res.Get("file_id") != "205" || res.Get("video_url") != "https://cdn.example.com/v/205.mp4" {
		t.Fatalf("outputs = %v", res.Map())
	}
	if n := queries.Load(); n != 2 {
		t.Errorf("%d status queries, want 2", n)
	}
	if len(env.clock.slept) != 1 || env.clock.slept[0] != 10*time.Second {
		t.Errorf("slept %v", env.clock.slept)
	}

	rec, _ := env.Journal.Get(context.Background(), taskstore.KindVideo, "t1")
	if rec.Status != "Success" || rec.VideoURL != "https://cdn.example.com/v/205.mp4" {
		t.Errorf("journal record = %+v", rec)
	}
}

func TestWaitVideoFailed(t *testing.T) {
	env := newTestEnv(t)
	env.api.handle("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"task_id": "t1", "status": "Fail", "base_resp": ok()})
	})

	_, err := env.run(t, "wait-video", `{"task_id":"t1"}`)
	var failed *minimax.TaskFailedError
	if !errors.As(err, &failed) || failed.Status != "Fail" {
		t.Fatalf("err = %v, want TaskFailedError", err)
	}
	rec, _ := env.Journal.Get(context.Background(), taskstore.KindVideo, "t1")
	if rec.Status != "Fail" {
		t.Errorf("journal status = %q", rec.Status)
	}
}

func TestWaitVideoTimeout(t *testing.T) {
	env := newTestEnv(t)
	var queries atomic.Int32
	env.api.handle("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		queries.Add(1)
		writeJSON(w, map[string]any{"task_id": "t1", "status": "Processing", "base_resp": ok()})
	})

	_, err := env.run(t, "wait-video", `{"task_id":"t1","poll_interval":100,"max_wait":300}`)
	var timeout *minimax.TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if n := queries.Load(); n != 4 {
		t.Errorf("%d status queries, want 4", n)
	}
}

func TestDownloadVideo(t *testing.T) {
	env := newTestEnv(t)
	payload := append([]byte("\x00\x00\x00\x18ftypwebm"), make([]byte, 128)...)
	env.api.handle("/clips/out.webm", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})

	res := env.mustRun(t, "download-video", `{"video_url":"`+env.api.URL+`/clips/out.webm?sig=abc","filename_prefix":"my clip!"}`)
	path := res.Get("video_path")
	if filepath.Base(path) != "myclip_"+stamp+".webm" {
		t.Fatalf("video_path = %s", path)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() != int64(len(payload)) {
		t.Fatalf("stat = %v, %v", info, err)
	}

	res = env.mustRun(t, "download-video", `{"video_url":"`+env.api.URL+`/clips/out.webm","filename_prefix":""}`)
	if filepath.Base(res.Get("video_path")) != "minimax_video_"+stamp+".webm" {
		t.Errorf("default prefix path = %s", res.Get("video_path"))
	}
}

func TestDownloadVideoErrors(t *testing.T) {
	env := newTestEnv(t)
	env.api.handle("/clips/gone.mp4", http.NotFound)

	_, err := env.run(t, "download-video", `{"video_url":"not a url"}`)
	wantValidation(t, err)

	_, err = env.run(t, "download-video", `{"video_url":"`+env.api.URL+`/clips/gone.mp4"}`)
	if minimax.KindOf(err) != minimax.KindTransport {
		t.Fatalf("err = %v, want transport error", err)
	}
	entries, _ := os.ReadDir(env.out.Root())
	if len(entries) != 0 {
		t.Errorf("output left behind: %d entries", len(entries))
	}
}
