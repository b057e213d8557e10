package domain

import "time"

// ClientIdentity selects which client surface an attempt impersonates.
type ClientIdentity string

const (
	ClientDesktop ClientIdentity = "desktop"
	ClientMobile  ClientIdentity = "mobile"
)

// Attempt is an immutable plan for one fetch try. Attempts are produced by
// the planner, executed in order, and discarded with the job.
type Attempt struct {
	Target         string
	Client         ClientIdentity
	UserAgent      string
	Referer        string
	UseCredentials bool
	CookiesPath    string
	RegionHint     string // ISO country code, empty for no hint
	Retryable      bool   // failure advances to the next attempt
}

// FetchOutcome is the result of executing one attempt. It lives only for the
// duration of that attempt.
type FetchOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	FilePath string // empty when no output file materialized
}

// Metadata is best-effort media metadata parsed from the tool's structured
// output.
type Metadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Uploader string  `json:"uploader"`
}
