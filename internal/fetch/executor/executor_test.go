package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/quangvu/fetchd/internal/core/domain"
)

func TestExecuteToolMissing(t *testing.T) {
	e := New("/nonexistent/retrieval-tool", 0, nil)

	_, err := e.Execute(context.Background(), domain.Attempt{
		Target:    "https://example.com/v",
		UserAgent: "test",
	}, t.TempDir(), time.Second)

	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("Execute with missing tool: err = %v, want ErrToolUnavailable", err)
	}
}

// A caller abandoning the request must not kill the tool mid-attempt; the
// attempt finishes under its own deadline and the output still materializes.
func TestExecuteSurvivesCallerCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fake tool")
	}

	workDir := t.TempDir()
	tool := filepath.Join(t.TempDir(), "fake-tool")
	script := "#!/bin/sh\nsleep 0.2\n: > \"$(pwd)/abc.mp4\"\n"
	if err := os.WriteFile(tool, []byte(script), 0o700); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // caller is already gone

	e := New(tool, 0, nil)
	outcome, err := e.Execute(ctx, domain.Attempt{
		Target:    "https://example.com/v",
		UserAgent: "test",
	}, workDir, 5*time.Second)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if outcome.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, stderr: %s", outcome.ExitCode, outcome.Stderr)
	}
	if outcome.FilePath == "" {
		t.Fatal("no output file after caller cancellation")
	}
}

func TestBuildArgs(t *testing.T) {
	e := New("yt-dlp", 2048, nil)
	att := domain.Attempt{
		Target:         "https://www.youtube.com/watch?v=abc",
		UserAgent:      "test-agent",
		Referer:        "https://www.youtube.com/",
		UseCredentials: true,
		CookiesPath:    "/work/cookies.txt",
		RegionHint:     "DE",
	}

	args := e.buildArgs(att, "/work")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"--no-playlist",
		"--user-agent test-agent",
		"--add-headers Referer:https://www.youtube.com/",
		"--cookies /work/cookies.txt",
		"--geo-bypass-country DE",
		"--max-filesize 2048M",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}

	if args[len(args)-1] != att.Target {
		t.Errorf("target must be the final argument, got %q", args[len(args)-1])
	}
}

func TestBuildArgsNoOptionalFlags(t *testing.T) {
	e := New("yt-dlp", 0, nil)
	att := domain.Attempt{
		Target:    "https://www.youtube.com/watch?v=abc",
		UserAgent: "test-agent",
	}

	joined := strings.Join(e.buildArgs(att, "/work"), " ")
	for _, absent := range []string{"--cookies", "--geo-bypass-country", "--max-filesize", "--add-headers"} {
		if strings.Contains(joined, absent) {
			t.Errorf("args unexpectedly contain %q: %s", absent, joined)
		}
	}
}
