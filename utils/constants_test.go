package utils

import (
	"testing"
	"time"
)

func TestDraftLockTTL(t *testing.T) {
	tests := []struct {
		apiTimeout time.Duration
		want       time.Duration
	}{
		{0, 30 * time.Second},
		{10 * time.Second, 30 * time.Second},
		{20 * time.Second, 30 * time.Second},
		{45 * time.Second, 55 * time.Second},
		{2 * time.Minute, 2*time.Minute + 10*time.Second},
	}
	for _, tt := range tests {
		if got := DraftLockTTL(tt.apiTimeout); got != tt.want {
			t.Errorf("got `%v`, want `%v` for an API timeout of %v", got, tt.want, tt.apiTimeout)
		}
		if got := DraftLockTTL(tt.apiTimeout); got <= tt.apiTimeout {
			t.Errorf("lock of %v does not outlive an API timeout of %v", got, tt.apiTimeout)
		}
	}
}
