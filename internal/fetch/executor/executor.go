package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// ErrToolUnavailable marks the one fatal executor condition: the retrieval
// tool could not even be started. No further attempts can help.
var ErrToolUnavailable = errors.New("retrieval tool unavailable")

// Executor runs one fetch attempt as a retrieval-tool child process with a
// hard wall-clock timeout. A non-zero exit is a normal, expected outcome to
// be classified by the caller, never an error.
type Executor struct {
	toolPath      string
	maxFileSizeMB int
	log           *slog.Logger
}

// New creates an executor for the given tool binary.
func New(toolPath string, maxFileSizeMB int, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{toolPath: toolPath, maxFileSizeMB: maxFileSizeMB, log: log}
}

// Execute runs one attempt in workDir with a wall-clock timeout. Stdout and
// stderr are captured in full; classification and diagnostics need the
// complete text. The returned error is non-nil only for ErrToolUnavailable.
func (e *Executor) Execute(
	ctx context.Context,
	att domain.Attempt,
	workDir string,
	timeout time.Duration,
) (domain.FetchOutcome, error) {
	// An abandoned request must not kill the tool mid-attempt: the attempt
	// runs to its own deadline and the result is discarded by the caller.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	args := e.buildArgs(att, workDir)
	cmd := exec.CommandContext(ctx, e.toolPath, args...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return domain.FetchOutcome{}, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	waitErr := cmd.Wait()
	outcome := domain.FetchOutcome{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// Surface the timeout where the classifier can see it.
			outcome.Stderr += fmt.Sprintf("\nERROR: attempt timed out after %s", timeout)
		}
		if outcome.ExitCode == 0 {
			outcome.ExitCode = -1
		}
		return outcome, nil
	}

	if outcome.ExitCode == 0 {
		outcome.FilePath = findOutputFile(workDir)
	}
	return outcome, nil
}

func (e *Executor) buildArgs(att domain.Attempt, workDir string) []string {
	args := []string{
		"--no-playlist",
		"--newline",
		"--restrict-filenames",
		"-f", "bv*+ba/b",
		"-o", filepath.Join(workDir, "%(id)s.%(ext)s"),
		"--user-agent", att.UserAgent,
	}
	if att.Referer != "" {
		args = append(args, "--add-headers", "Referer:"+att.Referer)
	}
	if att.UseCredentials && att.CookiesPath != "" {
		args = append(args, "--cookies", att.CookiesPath)
	}
	if att.RegionHint != "" {
		args = append(args, "--geo-bypass-country", att.RegionHint)
	}
	if e.maxFileSizeMB > 0 {
		args = append(args, "--max-filesize", fmt.Sprintf("%dM", e.maxFileSizeMB))
	}
	return append(args, att.Target)
}

// Probe runs a metadata-only invocation: no file materializes. Used for
// preview and inline-result flows.
func (e *Executor) Probe(
	ctx context.Context,
	url string,
	timeout time.Duration,
) (*domain.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.toolPath,
		"--dump-single-json", "--skip-download", "--no-playlist", url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("metadata probe failed: %w: %s", err, stderr.String())
	}

	var meta domain.Metadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return nil, fmt.Errorf("invalid metadata payload: %w", err)
	}
	return &meta, nil
}
