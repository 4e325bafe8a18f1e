package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/minimax"
	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/storage"
)

func newTestConfig(t *testing.T) (*Config, string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "minimax-nodes", "config.yaml")
	cfg, err := LoadConfigWithPath("minimax-nodes", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	return cfg, configPath
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"sk-1234567890abcdef", "sk-1***********cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadConfigWithPath_NewConfig(t *testing.T) {
	cfg, configPath := newTestConfig(t)

	if cfg.AppName != "minimax-nodes" {
		t.Errorf("AppName = %q", cfg.AppName)
	}
	if cfg.Contexts == nil {
		t.Error("Contexts should be initialized")
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Errorf("config file not created: %v", err)
	}
	if cfg.Path() != configPath || cfg.Dir() != filepath.Dir(configPath) {
		t.Errorf("Path() = %q, Dir() = %q", cfg.Path(), cfg.Dir())
	}
}

func TestLoadConfigWithPath_ParsesContexts(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	data := `current_context: studio
contexts:
  studio:
    api_key: sk-studio-0001
    group_id: "1782658868262748467"
    base_url: https://api.minimaxi.com
    timeout: 60
    max_retries: 2
    output_dir: "~/ComfyUI/output"
    poll_interval: 15
    max_wait: 900
    s3:
      bucket: renders
      prefix: minimax
      endpoint: http://127.0.0.1:9000
      path_style: true
`
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithPath("minimax-nodes", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	ctx, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext error: %v", err)
	}
	if ctx.Name != "studio" || ctx.GroupID != "1782658868262748467" || ctx.Timeout != 60 {
		t.Errorf("context = %+v", ctx)
	}
	if ctx.PollInterval != 15 || ctx.MaxWait != 900 || ctx.OutputDir != "~/ComfyUI/output" {
		t.Errorf("workspace settings = %+v", ctx)
	}
	if !ctx.S3.Enabled() || ctx.S3.Bucket != "renders" || !ctx.S3.PathStyle {
		t.Errorf("s3 = %+v", ctx.S3)
	}
}

func TestLoadConfigWithPath_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(configPath, []byte("contexts: [unclosed"), 0600)

	if _, err := LoadConfigWithPath("minimax-nodes", configPath); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_ContextLifecycle(t *testing.T) {
	cfg, _ := newTestConfig(t)

	if err := cfg.AddContext("", &Context{}); err == nil {
		t.Error("AddContext with empty name should fail")
	}
	cfg.AddContext("prod", &Context{APIKey: "key1"})
	cfg.AddContext("dev", &Context{APIKey: "key2"})
	cfg.AddContext("alt", &Context{})

	if got := cfg.ListContexts(); !slices.Equal(got, []string{"alt", "dev", "prod"}) {
		t.Errorf("ListContexts = %v", got)
	}
	if cfg.Contexts["prod"].Name != "prod" {
		t.Errorf("Name = %q", cfg.Contexts["prod"].Name)
	}

	if _, err := cfg.GetCurrentContext(); err == nil {
		t.Error("GetCurrentContext should fail when no current context")
	}
	if err := cfg.UseContext("missing"); err == nil {
		t.Error("UseContext should fail for a missing context")
	}
	if err := cfg.UseContext("prod"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	ctx, err := cfg.ResolveContext("dev")
	if err != nil || ctx.APIKey != "key2" {
		t.Errorf("ResolveContext(dev) = %+v, %v", ctx, err)
	}
	ctx, err = cfg.ResolveContext("")
	if err != nil || ctx.APIKey != "key1" {
		t.Errorf("ResolveContext('') = %+v, %v", ctx, err)
	}
	if _, err := cfg.ResolveContext("missing"); err == nil {
		t.Error("ResolveContext should fail for a missing context")
	}

	if err := cfg.DeleteContext("prod"); err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Errorf("CurrentContext should be cleared, got %q", cfg.CurrentContext)
	}
	if err := cfg.DeleteContext("prod"); err == nil {
		t.Error("DeleteContext should fail for a missing context")
	}
}

func TestConfig_ResolveWithoutContexts(t *testing.T) {
	cfg, _ := newTestConfig(t)
	ctx, err := cfg.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext error: %v", err)
	}
	if ctx.APIKey != "" || ctx.Name != "" {
		t.Errorf("expected blank context, got %+v", ctx)
	}
}

func TestConfig_Persistence(t *testing.T) {
	cfg1, configPath := newTestConfig(t)
	cfg1.AddContext("test", &Context{
		APIKey:       "secret-key",
		DefaultVoice: "male-qn-qingse",
		MaxWait:      600,
		S3:           &storage.S3Config{Bucket: "clips", Region: "ap-southeast-1"},
	})
	cfg1.UseContext("test")

	cfg2, err := LoadConfigWithPath("minimax-nodes", configPath)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if cfg2.CurrentContext != "test" {
		t.Errorf("CurrentContext = %q", cfg2.CurrentContext)
	}
	ctx, err := cfg2.GetContext("test")
	if err != nil {
		t.Fatalf("GetContext error: %v", err)
	}
	if ctx.APIKey != "secret-key" || ctx.DefaultVoice != "male-qn-qingse" || ctx.MaxWait != 600 {
		t.Errorf("context = %+v", ctx)
	}
	if ctx.S3 == nil || ctx.S3.Bucket != "clips" || ctx.S3.Region != "ap-southeast-1" {
		t.Errorf("s3 = %+v", ctx.S3)
	}

	data, _ := os.ReadFile(configPath)
	if strings.Contains(string(data), "group_id") {
		t.Errorf("empty fields written:\n%s", data)
	}
}

func TestContext_Credentials(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvGroupID, "env-group")

	key, group := (&Context{}).Credentials()
	if key != "env-key" || group != "env-group" {
		t.Errorf("Credentials() = %q, %q", key, group)
	}
	key, group = (&Context{APIKey: "ctx-key", GroupID: "ctx-group"}).Credentials()
	if key != "ctx-key" || group != "ctx-group" {
		t.Errorf("Credentials() = %q, %q", key, group)
	}
}

func TestContext_ClientOptions(t *testing.T) {
	if opts := (&Context{}).ClientOptions(); len(opts) != 0 {
		t.Errorf("blank context produced %d options", len(opts))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/query/video_generation" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task_id":"t1","status":"Processing","base_resp":{"status_code":0,"status_msg":"success"}}`))
	}))
	defer srv.Close()

	ctx := &Context{BaseURL: srv.URL + "/", Timeout: 5, MaxRetries: 1}
	if n := len(ctx.ClientOptions()); n != 3 {
		t.Errorf("%d options, want 3", n)
	}
	client := minimax.NewClient("k", ctx.ClientOptions()...)
	status, err := client.Video.Query(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if status.Status != minimax.TaskStatusProcessing {
		t.Errorf("status = %s", status.Status)
	}
}
