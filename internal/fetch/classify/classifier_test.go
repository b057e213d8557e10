package classify

import (
	"testing"

	"github.com/quangvu/fetchd/internal/core/domain"
)

func TestClassify(t *testing.T) {
	c := New(nil)

	tests := []struct {
		stderr string
		expect domain.ErrorKind
	}{
		{"ERROR: This video is private", domain.ErrPrivateOrRestricted},
		{"ERROR: [instagram] login required to access this content", domain.ErrPrivateOrRestricted},
		{"ERROR: Sign in to confirm you're not a bot", domain.ErrPrivateOrRestricted},
		{"ERROR: This video is age-restricted", domain.ErrPrivateOrRestricted},
		{"ERROR: HTTP Error 429: Too Many Requests", domain.ErrFetchFailed},
		{"ERROR: HTTP Error 403: Forbidden", domain.ErrFetchFailed},
		{"ERROR: unable to download webpage (rate limit reached)", domain.ErrFetchFailed},
		{"ERROR: attempt timed out after 300s", domain.ErrFetchFailed},
		{"ERROR: Unsupported URL: https://example.com/page", domain.ErrUnsupportedURL},
		{"ERROR: [generic] unable to extract video data", domain.ErrUnsupportedURL},
		{"ERROR: Video unavailable", domain.ErrUnsupportedURL},
		{"ERROR: This video is not available in your country", domain.ErrGeoBlocked},
		{"ERROR: content blocked in your region", domain.ErrGeoBlocked},
		{"WARNING: file is larger than max-filesize (2147483648 bytes)", domain.ErrTooLarge},
		{"ERROR: something entirely novel happened", domain.ErrInternal},
		{"segfault, no marker at all", domain.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.stderr, func(t *testing.T) {
			if got := c.Classify(tt.stderr, 1); got != tt.expect {
				t.Errorf("Classify(%q) = %v, want %v", tt.stderr, got, tt.expect)
			}
		})
	}
}

// Restricted phrasing wins over rate-limit phrasing when both appear: the
// restriction is the root cause.
func TestClassifyPriority(t *testing.T) {
	c := New(nil)
	stderr := "ERROR: This video is private (HTTP Error 403)"
	if got := c.Classify(stderr, 1); got != domain.ErrPrivateOrRestricted {
		t.Errorf("Classify(%q) = %v, want %v", stderr, got, domain.ErrPrivateOrRestricted)
	}
}

func TestRetryableSet(t *testing.T) {
	tests := []struct {
		kind      domain.ErrorKind
		retryable bool
	}{
		{domain.ErrPrivateOrRestricted, true},
		{domain.ErrGeoBlocked, true},
		{domain.ErrFetchFailed, true},
		{domain.ErrFileNotFound, true},
		{domain.ErrTooLarge, false},
		{domain.ErrUnsupportedURL, false},
		{domain.ErrInternal, false},
	}
	for _, tt := range tests {
		if got := tt.kind.Retryable(); got != tt.retryable {
			t.Errorf("%s.Retryable() = %v, want %v", tt.kind, got, tt.retryable)
		}
	}
}
