package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"concurrent modification", fmt.Errorf("balance update failed - %w", ErrConcurrentModification), true},
		{"transient", fmt.Errorf("begin: %w", ErrTransient), true},
		{"conflict", fmt.Errorf("like: %w", ErrConflict), false},
		{"insufficient funds", ErrInsufficientFunds, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsClientError(t *testing.T) {
	for _, err := range []error{ErrNotFound, ErrConflict, ErrInsufficientFunds, ErrAlreadyClaimed, ErrInvalidAmount, ErrForbidden, ErrInvalidInput} {
		if !IsClientError(fmt.Errorf("wrapped: %w", err)) {
			t.Errorf("Expected %v to be a client error", err)
		}
	}
	if IsClientError(ErrTransient) {
		t.Errorf("Transient failures must not be client errors")
	}
}
