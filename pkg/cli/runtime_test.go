package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/nodes"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/taskstore"
)

func openTestRuntime(t *testing.T, c *Context, ephemeral bool) (*Runtime, *Paths) {
	t.Helper()
	paths := &Paths{AppName: "minimax-nodes", HomeDir: t.TempDir()}
	rt, err := OpenRuntime(c, paths, nil, ephemeral)
	if err != nil {
		t.Fatalf("OpenRuntime error: %v", err)
	}
	t.Cleanup(func() { rt.Close() })
	return rt, paths
}

func lookup(t *testing.T, name string) *nodes.Node {
	t.Helper()
	n, ok := nodes.Default().Lookup(name)
	if !ok {
		t.Fatalf("node %s not registered", name)
	}
	return n
}

func TestOpenRuntimeDirectories(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvGroupID, "")
	rt, paths := openTestRuntime(t, &Context{APIKey: "sk-1", GroupID: "g-1"}, false)

	for _, dir := range []string{paths.OutputDir(), paths.InputDir(), paths.JournalDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
	if rt.Env.APIKey != "sk-1" || rt.Env.GroupID != "g-1" {
		t.Errorf("credentials = %q, %q", rt.Env.APIKey, rt.Env.GroupID)
	}
	if rt.Env.Output.Store.Root() != paths.OutputDir() || rt.Env.Output.Mirror != nil {
		t.Errorf("output = %s, mirror = %v", rt.Env.Output.Store.Root(), rt.Env.Output.Mirror)
	}
}

func TestOpenRuntimeConfiguredDirs(t *testing.T) {
	base := t.TempDir()
	c := &Context{
		OutputDir: filepath.Join(base, "out"),
		InputDir:  filepath.Join(base, "in"),
	}
	rt, _ := openTestRuntime(t, c, true)
	if rt.Env.Output.Store.Root() != c.OutputDir || rt.Env.Input.Root() != c.InputDir {
		t.Errorf("dirs = %s, %s", rt.Env.Output.Store.Root(), rt.Env.Input.Root())
	}
}

func s3Bucket(name string) *storage.S3Config {
	return &storage.S3Config{Bucket: name}
}

func TestOpenRuntimeS3RequiresCredentials(t *testing.T) {
	paths := &Paths{AppName: "minimax-nodes", HomeDir: t.TempDir()}
	rt, err := OpenRuntime(&Context{S3: s3Bucket("renders")}, paths, nil, true)
	if err == nil {
		rt.Close()
		t.Fatal("expected error for a bucket without credentials")
	}
}

func TestOpenRuntimeS3Mirror(t *testing.T) {
	s3 := s3Bucket("renders")
	s3.AccessKeyID, s3.SecretAccessKey = "AKIA", "secret"
	rt, _ := openTestRuntime(t, &Context{S3: s3}, true)
	if rt.Env.Output.Mirror == nil {
		t.Fatal("mirror not configured")
	}
}

func TestJournalSurvivesReopen(t *testing.T) {
	paths := &Paths{AppName: "minimax-nodes", HomeDir: t.TempDir()}
	ctx := context.Background()

	rt, err := OpenRuntime(&Context{}, paths, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Env.Journal.Put(ctx, taskstore.Record{Kind: taskstore.KindVideo, ID: "t1", Model: "T2V-01", Status: "Processing"}); err != nil {
		t.Fatal(err)
	}
	rt.Close()

	rt, err = OpenRuntime(&Context{}, paths, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()
	rec, err := rt.Env.Journal.Get(ctx, taskstore.KindVideo, "t1")
	if err != nil || rec.Model != "T2V-01" {
		t.Fatalf("record = %+v, %v", rec, err)
	}
}

func TestRuntimeArgs(t *testing.T) {
	rt, _ := openTestRuntime(t, &Context{DefaultVoice: "male-qn-qingse", PollInterval: 15, MaxWait: 900}, true)

	tests := []struct {
		node string
		file map[string]any
		sets []string
		want map[string]any
	}{
		{
			"text-to-speech", map[string]any{"text": "hi"}, nil,
			map[string]any{"text": "hi", "voice_id": "male-qn-qingse"},
		},
		{
			"text-to-speech", map[string]any{"text": "hi", "voice_id": "female-shaonv"}, []string{"speed=1.5"},
			map[string]any{"text": "hi", "voice_id": "female-shaonv", "speed": 1.5},
		},
		{
			"wait-video", nil, []string{"task_id=t1", "max_wait=300"},
			map[string]any{"task_id": "t1", "poll_interval": float64(15), "max_wait": float64(300)},
		},
		{
			"wait-video", nil, []string{"task_id=106916112212032"},
			map[string]any{"task_id": "106916112212032", "poll_interval": float64(15), "max_wait": float64(900)},
		},
		{
			"video-generation", nil, []string{"duration=6", "prompt_optimizer=false"},
			map[string]any{"duration": "6", "prompt_optimizer": false},
		},
		{
			"music-generation", map[string]any{"prompt": "p"}, nil,
			map[string]any{"prompt": "p"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			raw, err := rt.Args(lookup(t, tt.node), tt.file, tt.sets)
			if err != nil {
				t.Fatal(err)
			}
			var got map[string]any
			json.Unmarshal(raw, &got)
			if len(got) != len(tt.want) {
				t.Fatalf("args = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}

	if _, err := rt.Args(lookup(t, "wait-video"), nil, []string{"bad"}); err == nil {
		t.Error("expected error for malformed override")
	}
}

func TestRuntimeRunLoadAudio(t *testing.T) {
	rt, _ := openTestRuntime(t, &Context{}, true)
	sample := rt.Env.Input.Abs("sample.mp3")
	if err := os.WriteFile(sample, []byte("ID3\x03\x00"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := rt.Run(context.Background(), lookup(t, "load-audio"), json.RawMessage(`{"audio_path":"sample.mp3"}`))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.Outputs["audio_file"] != sample {
		t.Errorf("audio_file = %q, want %q", out.Outputs["audio_file"], sample)
	}

	var buf bytes.Buffer
	if err := Output(out, OutputOptions{Format: FormatYAML, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "audio_file: "+sample) {
		t.Errorf("yaml = %s", buf.String())
	}

	_, err = rt.Run(context.Background(), lookup(t, "load-audio"), json.RawMessage(`{"audio_path":"missing.mp3"}`))
	if minimax.KindOf(err) != minimax.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if p := ErrorPanel("load-audio", err); p.Status != "validation" {
		t.Errorf("panel status = %q", p.Status)
	}
}

func TestNodeOutputPanel(t *testing.T) {
	out := NodeOutput{
		Node:    "JM-MiniMax-API/check-video-status",
		Outputs: map[string]string{"status": "Processing", "file_id": "", "video_url": "", "cover_image_url": ""},
		order:   []string{"status", "file_id", "video_url", "cover_image_url"},
	}
	p := out.Panel()
	if p.Status != "Processing" || len(p.Rows) != 4 || p.Rows[0].Key != "status" || p.Rows[3].Key != "cover_image_url" {
		t.Errorf("panel = %+v", p)
	}
}

func TestNodeOutputMerge(t *testing.T) {
	created := NodeOutput{
		Node:    "JM-MiniMax-API/video-generation",
		Outputs: map[string]string{"task_id": "t1"},
		order:   []string{"task_id"},
	}
	waited := NodeOutput{
		Node:    "JM-MiniMax-API/wait-video",
		Outputs: map[string]string{"task_id": "t1", "status": "Success", "video_url": "https://cdn.example.com/v.mp4"},
		order:   []string{"task_id", "status", "video_url"},
	}
	got := created.Merge(waited)
	if got.Node != waited.Node || len(got.Outputs) != 3 || got.Outputs["status"] != "Success" {
		t.Fatalf("merged = %+v", got)
	}
	if want := []string{"task_id", "status", "video_url"}; !slices.Equal(got.order, want) {
		t.Errorf("order = %v, want %v", got.order, want)
	}
	if len(created.Outputs) != 1 {
		t.Errorf("receiver modified: %v", created.Outputs)
	}
}
