package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rescale/rescale-analyses/internal/config"
	"github.com/rescale/rescale-analyses/internal/events"
	"github.com/rescale/rescale-analyses/internal/logging"
	"github.com/rescale/rescale-analyses/internal/session"
	"github.com/rescale/rescale-analyses/internal/state"
)

const testListing = `{"analyses": [
  {"id": "a1", "name": "jupyter", "app_name": "JupyterLab", "status": "Running",
   "username": "alice@iplantcollaborative.org", "interactive_urls": ["https://a1.example.org"],
   "startdate": "2024-03-01T10:00:00Z"},
  {"id": "a2", "name": "htbatch", "status": "Running", "username": "alice", "batch": true,
   "startdate": "2024-03-02T10:00:00Z"},
  {"id": "a3", "name": "bobs", "status": "Completed", "username": "bob",
   "startdate": "2024-03-03T10:00:00Z", "enddate": "2024-03-04T10:00:00Z"}
], "total": 3}`

// setupCLI isolates the CLI from the real home directory and environment.
func setupCLI(t *testing.T) (dir, listingPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)
	t.Setenv(config.EnvUser, "")
	t.Setenv(config.EnvListingURL, "")
	t.Setenv(config.EnvAPIKey, "")

	listingPath = filepath.Join(dir, "listing.json")
	if err := os.WriteFile(listingPath, []byte(testListing), 0600); err != nil {
		t.Fatal(err)
	}
	return dir, listingPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	AddCommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestAnalysesList(t *testing.T) {
	dir, listingPath := setupCLI(t)
	cfgPath := filepath.Join(dir, "missing.csv")

	out, err := runCLI(t, "analyses", "list", "-c", cfgPath, "--user", "alice",
		"--listing-file", listingPath, "--viewport", "wide", "--select", "a1")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}

	for _, want := range []string{"startdate desc", "Selected: 1 (partial)", "[x]", "a3", "go-to-vice", "Menu:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// owner realm is stripped for display
	if strings.Contains(out, "@iplantcollaborative.org") {
		t.Errorf("owner realm should be stripped:\n%s", out)
	}
	// newest first
	if strings.Index(out, "a3") > strings.Index(out, "a1") {
		t.Errorf("default sort should list a3 before a1:\n%s", out)
	}
}

func TestAnalysesListSortFlags(t *testing.T) {
	dir, listingPath := setupCLI(t)
	cfgPath := filepath.Join(dir, "missing.csv")

	out, err := runCLI(t, "analyses", "list", "-c", cfgPath, "--user", "alice",
		"--listing-file", listingPath, "--sort", "name")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "name asc") {
		t.Errorf("expected name asc sort:\n%s", out)
	}

	if _, err := runCLI(t, "analyses", "list", "-c", cfgPath, "--user", "alice",
		"--listing-file", listingPath, "--sort", "owner"); err == nil {
		t.Error("sorting by owner should fail")
	}
}

func TestAnalysesMenu(t *testing.T) {
	dir, listingPath := setupCLI(t)
	cfgPath := filepath.Join(dir, "missing.csv")

	out, err := runCLI(t, "analyses", "menu", "-c", cfgPath, "--user", "alice",
		"--listing-file", listingPath, "--viewport", "wide", "--select", "a1,a2")
	if err != nil {
		t.Fatalf("menu error = %v", err)
	}
	if !strings.Contains(out, "relaunch") || !strings.Contains(out, "delete") {
		t.Errorf("multi selection menu should offer relaunch and delete:\n%s", out)
	}
	if strings.Contains(out, "go-to-vice") || strings.Contains(out, "extend-time") {
		t.Errorf("single-only actions must be absent for multi selection:\n%s", out)
	}
}

func TestAnalysesInvoke(t *testing.T) {
	dir, listingPath := setupCLI(t)
	cfgPath := filepath.Join(dir, "missing.csv")
	base := []string{"-c", cfgPath, "--user", "alice", "--listing-file", listingPath, "--viewport", "wide"}

	out, err := runCLI(t, append([]string{"analyses", "invoke", "delete", "--select", "a1,a2"}, base...)...)
	if err != nil {
		t.Fatalf("invoke delete error = %v", err)
	}
	if !strings.Contains(out, "delete: deletion requested for a2, a1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	_, err = runCLI(t, append([]string{"analyses", "invoke", "delete", "--select", "a3"}, base...)...)
	if !errors.Is(err, session.ErrActionNotAvailable) {
		t.Errorf("deleting a foreign analysis = %v, want ErrActionNotAvailable", err)
	}

	out, err = runCLI(t, append([]string{"analyses", "invoke", "request-help", "--row", "a3"}, base...)...)
	if err != nil {
		t.Fatalf("invoke request-help error = %v", err)
	}
	if !strings.Contains(out, "request-help:") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := runCLI(t, append([]string{"analyses", "invoke", "launch-rocket"}, base...)...); err == nil {
		t.Error("unknown action should fail")
	}
	if _, err := runCLI(t, append([]string{"analyses", "invoke", "delete", "--select", "zz"}, base...)...); err == nil {
		t.Error("selecting an unlisted analysis should fail")
	}
}

func TestAnalysesActions(t *testing.T) {
	dir, listingPath := setupCLI(t)
	cfgPath := filepath.Join(dir, "missing.csv")

	out, err := runCLI(t, "analyses", "actions", "a3", "-c", cfgPath, "--user", "alice", "--listing-file", listingPath)
	if err != nil {
		t.Fatalf("actions error = %v", err)
	}
	if !strings.Contains(out, "go-output-folder") || !strings.Contains(out, "request-help") {
		t.Errorf("unexpected row actions:\n%s", out)
	}
	if strings.Contains(out, "extend-time") {
		t.Errorf("foreign analysis must not offer extend-time:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir, listingPath := setupCLI(t)
	cfgPath := filepath.Join(dir, "analyses.csv")

	out, err := runCLI(t, "config", "init", "-c", cfgPath, "--user", "alice", "--listing-file", listingPath, "--api-key", "k123")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, "Configuration saved to") {
		t.Errorf("unexpected init output:\n%s", out)
	}

	token, err := config.ReadTokenFile(config.GetDefaultTokenPath())
	if err != nil || token != "k123" {
		t.Errorf("token = %q, %v", token, err)
	}

	out, err = runCLI(t, "config", "show", "-c", cfgPath)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "alice") || strings.Contains(out, "k123") {
		t.Errorf("unexpected show output:\n%s", out)
	}

	// a saved config is enough to list without flags
	if _, err := runCLI(t, "analyses", "list", "-c", cfgPath); err != nil {
		t.Errorf("list with saved config error = %v", err)
	}
}

func TestMissingUserFails(t *testing.T) {
	dir, listingPath := setupCLI(t)

	_, err := runCLI(t, "analyses", "list", "-c", filepath.Join(dir, "missing.csv"), "--listing-file", listingPath)
	if err == nil || !strings.Contains(err.Error(), "username is required") {
		t.Errorf("error = %v, want username is required", err)
	}
}

func TestWatchEventsDrainsBeforeReturning(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewEventBus(0)
	stop := watchEvents(bus, logging.NewLogger(&buf))

	bus.Publish(state.NewSelectionChangedEvent([]string{"a2"}, []string{"a1", "a9"}))
	stop()

	out := buf.String()
	if !strings.Contains(out, "no longer listed") || !strings.Contains(out, "a9") {
		t.Errorf("log output %q missing dropped selection", out)
	}

	// publishing after stop is a no-op
	bus.Publish(state.NewSelectionChangedEvent(nil, []string{"late"}))
	if strings.Contains(buf.String(), "late") {
		t.Error("event published after stop was logged")
	}
}
