package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/jsonstash/internal/core/endpoint"
	"github.com/sadopc/jsonstash/internal/har"
	"github.com/sadopc/jsonstash/internal/logger"
	"github.com/sadopc/jsonstash/internal/mock"
	"github.com/sadopc/jsonstash/internal/store"
)

// runCLI runs the command line with captured output.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() { stdout, stderr = oldOut, oldErr }()

	code := run(args)
	return code, out.String(), errOut.String()
}

// setupEnv isolates the config lookup and returns a fresh data directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return t.TempDir()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"help", []string{"help"}, 0},
		{"add missing alias", []string{"add", "https://example.com"}, 2},
		{"show missing alias", []string{"show"}, 2},
		{"remove missing alias", []string{"remove"}, 2},
		{"flush without yes", []string{"flush"}, 2},
		{"list bad output", []string{"list", "--output", "yaml"}, 2},
		{"serve bad error rate", []string{"serve", "--error-rate", "1.5"}, 2},
		{"serve bad port", []string{"serve", "--port", "70000"}, 2},
		{"import missing file", []string{"import"}, 2},
		{"unknown flag", []string{"list", "--nope"}, 2},
		{"flag help", []string{"list", "--help"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			code, _, _ := runCLI(t, tt.args...)
			if code != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, code, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("version exit = %d", code)
	}
	if !strings.HasPrefix(out, "jsonstash ") {
		t.Errorf("version output = %q", out)
	}
}

func TestAddFileShowListRemove(t *testing.T) {
	data := setupEnv(t)
	src := writeFile(t, t.TempDir(), "greeting.txt", "hello world")
	common := []string{"--data-path", data, "--log-level", "error"}

	code, out, errOut := runCLI(t, append([]string{"add", src, "/static/greeting", "--file"}, common...)...)
	if code != 0 {
		t.Fatalf("add exit = %d, stderr: %s", code, errOut)
	}
	if out != "Stored /static/greeting (11 bytes, 0 headers)\n" {
		t.Errorf("add output = %q", out)
	}

	code, out, _ = runCLI(t, append([]string{"show", "/static/greeting", "--raw"}, common...)...)
	if code != 0 {
		t.Fatalf("show --raw exit = %d", code)
	}
	if out != `{"body":"hello world","headers":{}}`+"\n" {
		t.Errorf("show --raw output = %q", out)
	}

	code, out, _ = runCLI(t, append([]string{"show", "/static/greeting"}, common...)...)
	if code != 0 {
		t.Fatalf("show exit = %d", code)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("show output = %q, want body", out)
	}

	code, out, _ = runCLI(t, append([]string{"list"}, common...)...)
	if code != 0 {
		t.Fatalf("list exit = %d", code)
	}
	if !strings.Contains(out, "PATH") || !strings.Contains(out, "/static/greeting") {
		t.Errorf("list output = %q", out)
	}

	code, out, _ = runCLI(t, append([]string{"list", "--output", "json"}, common...)...)
	if code != 0 {
		t.Fatalf("list --output json exit = %d", code)
	}
	var entries []struct {
		Path string `json:"path"`
		Key  string `json:"key"`
		Size int    `json:"size"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("list json: %v\n%s", err, out)
	}
	if len(entries) != 1 || entries[0].Path != "/static/greeting" || entries[0].Size != 11 {
		t.Errorf("list entries = %+v", entries)
	}

	code, out, _ = runCLI(t, append([]string{"remove", "/static/greeting"}, common...)...)
	if code != 0 || out != "Removed /static/greeting\n" {
		t.Errorf("remove = %d %q", code, out)
	}

	code, _, _ = runCLI(t, append([]string{"remove", "/static/greeting"}, common...)...)
	if code != 1 {
		t.Errorf("remove of missing alias exit = %d, want 1", code)
	}

	code, _, errOut = runCLI(t, append([]string{"show", "/static/greeting"}, common...)...)
	if code != 1 || !strings.Contains(errOut, "no record for /static/greeting") {
		t.Errorf("show after remove = %d %q", code, errOut)
	}
}

func TestAddURLThenReplay(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "yes")
		io.WriteString(w, `{"name": "ditto", "id": 132}`)
	}))
	defer upstream.Close()

	data := setupEnv(t)
	code, _, errOut := runCLI(t, "add", upstream.URL+"/api/v2/pokemon/ditto", "/api/ditto",
		"--data-path", data, "--log-level", "error")
	if code != 0 {
		t.Fatalf("add exit = %d, stderr: %s", code, errOut)
	}

	s, err := store.OpenDir(data, store.DefaultBucket)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, found, _ := s.Get(ctx, endpoint.Encode("/api/ditto")); !found {
		t.Fatal("record not stored under the encoded alias")
	}

	table := mock.Materialize(ctx, s, logger.Logger)
	srv := httptest.NewServer(mock.New(table).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/ditto")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if string(body) != `{"id":132,"name":"ditto"}` {
		t.Errorf("body = %q", body)
	}
	if got := resp.Header.Get("X-Upstream"); got != "yes" {
		t.Errorf("X-Upstream = %q", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestAddURLFailureStoresNothing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	}))
	defer upstream.Close()

	data := setupEnv(t)
	code, _, errOut := runCLI(t, "add", upstream.URL, "/page", "--data-path", data, "--log-level", "error")
	if code != 1 {
		t.Fatalf("add exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "Error:") {
		t.Errorf("stderr = %q", errOut)
	}

	code, out, _ := runCLI(t, "list", "--output", "json", "--data-path", data, "--log-level", "error")
	if code != 0 || strings.TrimSpace(out) != "[]" {
		t.Errorf("list after failed add = %d %q", code, out)
	}
}

func TestBucketsAreIsolated(t *testing.T) {
	data := setupEnv(t)
	src := writeFile(t, t.TempDir(), "a.json", `{"a":1}`)

	code, _, _ := runCLI(t, "add", "--file", src, "/a", "--data-path", data, "--bucket", "other", "--log-level", "error")
	if code != 0 {
		t.Fatalf("add exit = %d", code)
	}

	_, out, _ := runCLI(t, "list", "--data-path", data, "--log-level", "error")
	if strings.Contains(out, "/a") {
		t.Errorf("default bucket lists record from another bucket: %q", out)
	}
	_, out, _ = runCLI(t, "list", "--data-path", data, "--bucket", "other", "--log-level", "error")
	if !strings.Contains(out, "/a") {
		t.Errorf("other bucket missing record: %q", out)
	}
}

func TestConfigFileDataPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := t.TempDir()

	cfgDir := filepath.Join(home, ".config", "jsonstash")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, cfgDir, "config.yaml", "data_path: "+data+"\nlog:\n  level: error\n")

	src := writeFile(t, t.TempDir(), "x.txt", "x")
	if code, _, errOut := runCLI(t, "add", "--file", src, "/x"); code != 0 {
		t.Fatalf("add exit = %d, stderr: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(data, store.FileName)); err != nil {
		t.Errorf("database not created in configured data_path: %v", err)
	}
}

func TestFlush(t *testing.T) {
	data := setupEnv(t)
	dir := t.TempDir()
	common := []string{"--data-path", data, "--log-level", "error"}

	for _, alias := range []string{"/one", "/two"} {
		src := writeFile(t, dir, strings.TrimPrefix(alias, "/"), alias)
		if code, _, _ := runCLI(t, append([]string{"add", "--file", src, alias}, common...)...); code != 0 {
			t.Fatalf("add %s exit = %d", alias, code)
		}
	}

	code, out, _ := runCLI(t, append([]string{"flush", "--yes"}, common...)...)
	if code != 0 {
		t.Fatalf("flush exit = %d", code)
	}
	if out != "Flushed 2 records from bucket json_data\n" {
		t.Errorf("flush output = %q", out)
	}

	_, out, _ = runCLI(t, append([]string{"list", "--output", "json"}, common...)...)
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("list after flush = %q", out)
	}
}

const importHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "test", "version": "1"},
    "entries": [
      {
        "request": {"method": "GET", "url": "https://api.test/users?page=1"},
        "response": {
          "status": 200,
          "headers": [{"name": "Content-Type", "value": "application/json"}],
          "content": {"mimeType": "application/json", "text": "{\"users\": [], \"page\": 1}"}
        }
      },
      {
        "request": {"method": "DELETE", "url": "https://api.test/users/1"},
        "response": {"status": 204, "content": {"mimeType": "", "text": ""}}
      }
    ]
  }
}`

func TestImportExport(t *testing.T) {
	data := setupEnv(t)
	dir := t.TempDir()
	harPath := writeFile(t, dir, "session.har", importHAR)
	common := []string{"--data-path", data, "--log-level", "error"}

	code, out, _ := runCLI(t, append([]string{"import", harPath, "--dry-run"}, common...)...)
	if code != 0 || !strings.Contains(out, "/users <- https://api.test/users?page=1") {
		t.Fatalf("import --dry-run = %d %q", code, out)
	}
	_, out, _ = runCLI(t, append([]string{"list", "--output", "json"}, common...)...)
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("dry run stored records: %q", out)
	}

	code, out, errOut := runCLI(t, append([]string{"import", harPath}, common...)...)
	if code != 0 {
		t.Fatalf("import exit = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "Imported 1 responses, skipped 1 entries") {
		t.Errorf("import output = %q", out)
	}

	_, out, _ = runCLI(t, append([]string{"show", "/users", "--raw"}, common...)...)
	if !strings.Contains(out, `"body":"{\"page\":1,\"users\":[]}"`) {
		t.Errorf("imported record = %q", out)
	}

	exported := filepath.Join(dir, "out.har")
	code, _, errOut = runCLI(t, append([]string{"export", "--output", exported, "--base-url", "http://mock.test"}, common...)...)
	if code != 0 {
		t.Fatalf("export exit = %d, stderr: %s", code, errOut)
	}

	raw, err := os.ReadFile(exported)
	if err != nil {
		t.Fatal(err)
	}
	archive, err := har.Parse(raw)
	if err != nil {
		t.Fatalf("exported HAR does not parse: %v", err)
	}
	if len(archive.Log.Entries) != 1 {
		t.Fatalf("exported %d entries, want 1", len(archive.Log.Entries))
	}
	entry := archive.Log.Entries[0]
	if entry.Request.URL != "http://mock.test/users" {
		t.Errorf("entry URL = %q", entry.Request.URL)
	}
	if entry.Response.Content.Text != `{"page":1,"users":[]}` {
		t.Errorf("entry body = %q", entry.Response.Content.Text)
	}
}

func TestImportInvalidHAR(t *testing.T) {
	data := setupEnv(t)
	harPath := writeFile(t, t.TempDir(), "bad.har", "not json")
	code, _, errOut := runCLI(t, "import", harPath, "--data-path", data, "--log-level", "error")
	if code != 1 || !strings.Contains(errOut, "parsing HAR") {
		t.Errorf("import invalid = %d %q", code, errOut)
	}
}
