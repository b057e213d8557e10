package classify

import (
	"log/slog"
	"strings"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// rule maps a stderr predicate to an error kind. Rules are evaluated in
// order; the first match wins.
type rule struct {
	kind  domain.ErrorKind
	match func(s string) bool
}

func anyOf(needles ...string) func(string) bool {
	return func(s string) bool {
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}

// rules is the fixed priority order. Restricted-content phrasing is checked
// before rate-limit phrasing because upstream tools often emit both in one
// message and the restriction is the root cause.
var rules = []rule{
	{domain.ErrPrivateOrRestricted, anyOf(
		"private video",
		"this video is private",
		"private account",
		"login required",
		"sign in to confirm",
		"requested content is not available",
		"members-only",
		"account's posts are private",
		"age-restricted",
		"confirm your age",
	)},
	{domain.ErrFetchFailed, anyOf(
		"http error 429",
		"http error 403",
		"http error 4",
		"too many requests",
		"rate limit",
		"rate-limit",
		"unable to download webpage",
		"temporarily blocked",
		"timed out",
		"timeout",
	)},
	{domain.ErrUnsupportedURL, anyOf(
		"unsupported url",
		"unable to extract",
		"video unavailable",
		"is not a valid url",
		"no video formats",
		"content is unreachable",
	)},
	{domain.ErrGeoBlocked, anyOf(
		"geo restriction",
		"geo-restricted",
		"not available in your country",
		"not available from your location",
		"blocked in your region",
	)},
	{domain.ErrTooLarge, anyOf(
		"exceeds the max-filesize",
		"larger than max-filesize",
		"file is larger than",
	)},
}

// errorMarkers are the prefixes upstream tools put on genuine error lines.
// Text carrying one of these but matching no rule is a classification gap.
var errorMarkers = []string{"error:", "error -", "fatal:"}

// Classifier maps raw tool diagnostics to semantic error kinds. The
// heuristics are inherently approximate — upstream error taxonomies are not
// programmatically discoverable from free-text output — so unmatched errors
// are logged in full rather than silently bucketed.
type Classifier struct {
	log *slog.Logger
}

// New creates a classifier.
func New(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{log: log}
}

// Classify maps stderr text and an exit code to an ErrorKind. Exit code 0
// with no output file is FileNotFound and is decided by the caller, not
// here; this path only sees failed invocations.
func (c *Classifier) Classify(stderr string, exitCode int) domain.ErrorKind {
	text := strings.ToLower(stderr)

	for _, r := range rules {
		if r.match(text) {
			return r.kind
		}
	}

	// Unmatched but clearly an error: surface the full text for later
	// taxonomy refinement. Never dropped.
	for _, marker := range errorMarkers {
		if strings.Contains(text, marker) {
			c.log.Warn("Unclassified tool error",
				"exit_code", exitCode, "stderr", strings.TrimSpace(stderr))
			return domain.ErrInternal
		}
	}

	c.log.Warn("Tool failed without recognizable diagnostics",
		"exit_code", exitCode, "stderr", strings.TrimSpace(stderr))
	return domain.ErrInternal
}
