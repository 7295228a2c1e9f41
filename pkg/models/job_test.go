package models

import "testing"

func TestJobStatusTerminal(t *testing.T) {
	terminal := []JobStatus{StatusCompleted, StatusFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	active := []JobStatus{StatusQueued, StatusCloning, StatusPreprocessing, StatusEmbedding, StatusScoring, StatusReasoning}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{name: "queued to cloning", from: StatusQueued, to: StatusCloning, want: true},
		{name: "cloning to preprocessing", from: StatusCloning, to: StatusPreprocessing, want: true},
		{name: "skip ahead is allowed", from: StatusQueued, to: StatusScoring, want: true},
		{name: "backwards is illegal", from: StatusScoring, to: StatusCloning, want: false},
		{name: "same stage is illegal", from: StatusEmbedding, to: StatusEmbedding, want: false},
		{name: "failed from queued", from: StatusQueued, to: StatusFailed, want: true},
		{name: "failed from reasoning", from: StatusReasoning, to: StatusFailed, want: true},
		{name: "nothing leaves completed", from: StatusCompleted, to: StatusFailed, want: false},
		{name: "nothing leaves failed", from: StatusFailed, to: StatusCloning, want: false},
		{name: "reasoning to completed", from: StatusReasoning, to: StatusCompleted, want: true},
		{name: "unknown status", from: JobStatus("bogus"), to: StatusCloning, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
