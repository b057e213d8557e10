package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect ErrorKind
	}{
		{"classified", NewClassifiedError(ErrGeoBlocked), ErrGeoBlocked},
		{"wrapped", fmt.Errorf("job failed: %w", NewClassifiedError(ErrTooLarge)), ErrTooLarge},
		{"plain error", errors.New("disk full"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expect {
				t.Errorf("KindOf = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestEveryKindHasMessage(t *testing.T) {
	kinds := []ErrorKind{
		ErrPrivateOrRestricted, ErrGeoBlocked, ErrTooLarge, ErrFetchFailed,
		ErrUnsupportedURL, ErrFileNotFound, ErrInternal,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		msg := k.Message()
		if msg == "" {
			t.Errorf("%s has no message", k)
		}
		if seen[msg] {
			t.Errorf("%s reuses another kind's message", k)
		}
		seen[msg] = true
	}
}
