package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/quangvu/fetchd/internal/core/domain"
	"github.com/quangvu/fetchd/internal/fetch/metrics"
)

// Runner executes a single attempt. Satisfied by executor.Executor.
type Runner interface {
	Execute(
		ctx context.Context,
		att domain.Attempt,
		workDir string,
		timeout time.Duration,
	) (domain.FetchOutcome, error)
}

// Classifier maps raw diagnostics to an ErrorKind. Satisfied by
// classify.Classifier.
type Classifier interface {
	Classify(stderr string, exitCode int) domain.ErrorKind
}

// Result is a successful run: the materialized file plus the winning
// attempt's outcome. Callers must not inspect intermediate attempts; earlier
// failures are discarded.
type Result struct {
	FilePath string
	Outcome  domain.FetchOutcome
	Attempts int
}

// Engine drives the planned attempts strictly in order. Attempts differ in
// surface area (client identity, region, credentials), not in timing, so
// there is no sleep or backoff between them. They are never parallelized:
// concurrent attempts against an anti-automation-hardened upstream raise the
// odds of tripping abuse detection.
type Engine struct {
	runner     Runner
	classifier Classifier
	log        *slog.Logger
}

// New creates a retry engine.
func New(runner Runner, classifier Classifier, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{runner: runner, classifier: classifier, log: log}
}

// Run tries attempts until the first success or the first non-retryable
// failure. On exhaustion the error carries the kind from the last attempt —
// the most refined failure, not the first. A runner error (tool cannot
// start) is fatal immediately and consumes no further attempts.
func (e *Engine) Run(
	ctx context.Context,
	prov domain.Provider,
	attempts []domain.Attempt,
	workDir string,
	timeout time.Duration,
) (*Result, error) {
	if len(attempts) == 0 {
		return nil, domain.NewClassifiedError(domain.ErrInternal)
	}

	var lastKind domain.ErrorKind
	for i, att := range attempts {
		outcome, err := e.runner.Execute(ctx, att, workDir, timeout)
		if err != nil {
			e.log.Error("Retrieval tool failed to start", "provider", prov, "error", err)
			metrics.AttemptsTotal.WithLabelValues(string(prov), "tool_unavailable").Inc()
			return nil, domain.NewClassifiedError(domain.ErrInternal)
		}

		if outcome.ExitCode == 0 && outcome.FilePath != "" {
			metrics.AttemptsTotal.WithLabelValues(string(prov), "success").Inc()
			return &Result{
				FilePath: outcome.FilePath,
				Outcome:  outcome,
				Attempts: i + 1,
			}, nil
		}

		// Exit 0 without a file means the tool believes it succeeded but
		// violated our expectations; a different failure mode than anything
		// stderr describes.
		if outcome.ExitCode == 0 {
			lastKind = domain.ErrFileNotFound
		} else {
			lastKind = e.classifier.Classify(outcome.Stderr, outcome.ExitCode)
		}
		metrics.AttemptsTotal.WithLabelValues(string(prov), string(lastKind)).Inc()

		e.log.Debug("Attempt failed",
			"provider", prov,
			"attempt", i+1,
			"of", len(attempts),
			"kind", lastKind,
			"client", att.Client,
			"credentials", att.UseCredentials,
			"region", att.RegionHint,
			"exit_code", outcome.ExitCode,
		)

		if !lastKind.Retryable() || !att.Retryable {
			break
		}
	}

	metrics.FetchErrors.WithLabelValues(string(prov), string(lastKind)).Inc()
	return nil, domain.NewClassifiedError(lastKind)
}
