package ratelimit

import (
	"testing"
	"time"
)

func TestState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    State{LastUpdate: time.Now()},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    State{LastUpdate: time.Now().Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_NeedsThrottling(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"never advertised", NewState(), false},
		{"plenty remaining", State{Remaining: 100}, false},
		{"low remaining", State{Remaining: 3}, true},
		{"low but window reset", State{Remaining: 3, ResetAt: time.Now().Add(-time.Second)}, false},
		{"blocked is not throttled", State{Remaining: 0, BlockedUntil: time.Now().Add(time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.NeedsThrottling(); got != tt.expected {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Block(t *testing.T) {
	s := State{BlockedUntil: time.Now().Add(2 * time.Second)}
	if !s.NeedsBlock() {
		t.Error("NeedsBlock() = false, want true")
	}
	if d := s.TimeUntilUnblocked(); d <= 0 || d > 2*time.Second {
		t.Errorf("TimeUntilUnblocked() = %v", d)
	}

	s = State{BlockedUntil: time.Now().Add(-time.Second)}
	if s.NeedsBlock() || s.TimeUntilUnblocked() != 0 {
		t.Error("expired block still in force")
	}
}

func TestState_PredicatesOnReturnedValue(t *testing.T) {
	blocked := func() State { return State{BlockedUntil: time.Now().Add(time.Minute)} }

	if !blocked().NeedsBlock() {
		t.Error("NeedsBlock() = false, want true")
	}
	if blocked().NeedsThrottling() {
		t.Error("NeedsThrottling() = true while blocked")
	}
	if blocked().TimeUntilUnblocked() <= 0 {
		t.Error("TimeUntilUnblocked() should be positive")
	}
	if !blocked().IsStale(time.Hour) {
		t.Error("IsStale() = false for a state never updated")
	}
}
