package commands

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/synthetai/ComfyUI-JM-MiniMax-API/pkg/cli"
)

type testEnv struct {
	dir    string
	outDir string
	inDir  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("MINIMAX_API_KEY", "")
	t.Setenv("MINIMAX_GROUP_ID", "")
	env := &testEnv{
		dir:    dir,
		outDir: filepath.Join(dir, "out"),
		inDir:  filepath.Join(dir, "in"),
	}
	return env
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout, os.Stderr = wOut, wErr

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout, os.Stderr = oldStdout, oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)
	stdout, stderr = outBuf.String(), errBuf.String()
	if err != nil {
		exitCode = 1
		stderr += err.Error()
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Changed = false
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		f.Value.Set(f.DefValue)
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestNodesList(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "nodes", "list", "--json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var list []map[string]any
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(list) != 9 || list[0]["name"] != "JM-MiniMax-API/text-to-speech" || list[0]["category"] != "Speech" {
		t.Errorf("list = %v", list)
	}
}

func TestNodesSchemaQuery(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "nodes", "schema", "wait-video", "--jq", ".properties.max_wait.maximum")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "7200" {
		t.Errorf("stdout = %q", stdout)
	}

	_, stderr, code = runCmd(t, "nodes", "schema", "no-such-node")
	if code == 0 || !strings.Contains(stderr, "unknown node") {
		t.Errorf("exit %d: %s", code, stderr)
	}
}

func TestConfigContexts(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "config", "add-context", "studio", "--api-key", "sk-abcdefgh12345678", "--use")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	stdout, _, _ := runCmd(t, "config", "get-context")
	if strings.TrimSpace(stdout) != "studio" {
		t.Errorf("current context = %q", stdout)
	}
	stdout, _, _ = runCmd(t, "config", "view")
	if !strings.Contains(stdout, cli.MaskAPIKey("sk-abcdefgh12345678")) || strings.Contains(stdout, "sk-abcdefgh12345678") {
		t.Errorf("view leaks or misses the key:\n%s", stdout)
	}

	_, stderr, code = runCmd(t, "config", "add-context", "bad", "--poll-interval", "5")
	if code == 0 || !strings.Contains(stderr, "poll-interval") {
		t.Errorf("exit %d: %s", code, stderr)
	}
	_, _, code = runCmd(t, "config", "use-context", "missing")
	if code == 0 {
		t.Error("use-context of a missing context should fail")
	}
}

func TestSpeechSynthesize(t *testing.T) {
	env := setupTestEnv(t)
	audio := append([]byte("ID3\x04\x00\x00"), make([]byte, 32)...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/t2a_v2" || r.Header.Get("Authorization") != "Bearer sk-test-0001" {
			t.Errorf("unexpected %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		var body struct {
			Text         string `json:"text"`
			VoiceSetting struct {
				VoiceID string  `json:"voice_id"`
				Speed   float64 `json:"speed"`
			} `json:"voice_setting"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Text != "hello there" || body.VoiceSetting.VoiceID != "male-qn-qingse" || body.VoiceSetting.Speed != 1.2 {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data":      map[string]any{"audio": hex.EncodeToString(audio)},
			"base_resp": map[string]any{"status_code": 0, "status_msg": "success"},
		})
	}))
	defer srv.Close()

	_, stderr, code := runCmd(t, "config", "add-context", "test",
		"--api-key", "sk-test-0001", "--base-url", srv.URL,
		"--output-dir", env.outDir, "--input-dir", env.inDir,
		"--default-voice", "male-qn-qingse", "--use")
	if code != 0 {
		t.Fatalf("add-context exit %d: %s", code, stderr)
	}

	stdout, stderr, code := runCmd(t, "--ephemeral", "speech", "synthesize", "hello there",
		"--set", "speed=1.2", "--jq", ".outputs.audio_path")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	path := strings.TrimSpace(stdout)
	if filepath.Dir(path) != env.outDir || !strings.HasPrefix(filepath.Base(path), "tts_output_") {
		t.Fatalf("audio_path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, audio) {
		t.Errorf("audio file = %d bytes, %v", len(data), err)
	}
}

func TestSpeechLoadAudio(t *testing.T) {
	env := setupTestEnv(t)
	runCmd(t, "config", "add-context", "test", "--input-dir", env.inDir, "--output-dir", env.outDir, "--use")
	os.MkdirAll(env.inDir, 0o755)
	os.WriteFile(filepath.Join(env.inDir, "sample.mp3"), []byte("ID3\x04"), 0o644)
	os.WriteFile(filepath.Join(env.inDir, "notes.txt"), []byte("x"), 0o644)

	stdout, stderr, code := runCmd(t, "--ephemeral", "speech", "list-audio", "--json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var list []map[string]any
	json.Unmarshal([]byte(stdout), &list)
	if len(list) != 1 || list[0]["name"] != "sample.mp3" || list[0]["size"] != float64(4) {
		t.Errorf("list = %s", stdout)
	}

	stdout, stderr, code = runCmd(t, "--ephemeral", "speech", "load-audio", "sample.mp3", "--format", "raw", "--jq", ".outputs.audio_file")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != filepath.Join(env.inDir, "sample.mp3") {
		t.Errorf("audio_file = %q", stdout)
	}

	_, stderr, code = runCmd(t, "--ephemeral", "speech", "load-audio", "missing.mp3")
	if code == 0 || !strings.Contains(stderr, "load-audio") {
		t.Errorf("exit %d: %s", code, stderr)
	}
}

func TestVideoJournal(t *testing.T) {
	env := setupTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/video_generation":
			w.Write([]byte(`{"task_id":"106916112212032","base_resp":{"status_code":0,"status_msg":"success"}}`))
		case "/v1/query/video_generation":
			w.Write([]byte(`{"task_id":"106916112212032","status":"Processing","base_resp":{"status_code":0,"status_msg":"success"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	runCmd(t, "config", "add-context", "test", "--api-key", "sk-test-0001", "--base-url", srv.URL,
		"--output-dir", env.outDir, "--journal-dir", filepath.Join(env.dir, "journal"), "--use")

	stdout, stderr, code := runCmd(t, "video", "generate", "--set", "model=T2V-01", "--set", "prompt=city at night", "--jq", ".outputs.task_id")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "106916112212032" {
		t.Fatalf("task_id = %q", stdout)
	}

	stdout, stderr, code = runCmd(t, "video", "status", "106916112212032", "--jq", ".outputs.status")
	if code != 0 || strings.TrimSpace(stdout) != "Processing" {
		t.Fatalf("status exit %d: %q %s", code, stdout, stderr)
	}

	stdout, _, code = runCmd(t, "video", "tasks", "--json")
	var recs []map[string]any
	json.Unmarshal([]byte(stdout), &recs)
	if code != 0 || len(recs) != 1 || recs[0]["id"] != "106916112212032" || recs[0]["status"] != "Processing" {
		t.Fatalf("tasks = %s", stdout)
	}

	if _, stderr, code = runCmd(t, "video", "forget", "106916112212032"); code != 0 {
		t.Fatalf("forget exit %d: %s", code, stderr)
	}
	_, stderr, code = runCmd(t, "video", "task", "106916112212032")
	if code == 0 || !strings.Contains(stderr, "not in the journal") {
		t.Errorf("exit %d: %s", code, stderr)
	}

	_, stderr, code = runCmd(t, "video", "generate", "--download")
	if code == 0 || !strings.Contains(stderr, "--download requires --wait") {
		t.Errorf("exit %d: %s", code, stderr)
	}
}
