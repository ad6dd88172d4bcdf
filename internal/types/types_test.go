package types

import (
	"testing"
)

func TestJobTypeValid(t *testing.T) {
	tests := []struct {
		in   JobType
		want bool
	}{
		{JobTypeCaptcha, true},
		{JobTypeTyping, true},
		{JobType("ocr"), false},
		{JobType(""), false},
	}

	for _, tt := range tests {
		if got := tt.in.Valid(); got != tt.want {
			t.Errorf("JobType(%q).Valid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJobStatusValid(t *testing.T) {
	for _, s := range []JobStatus{JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed} {
		if !s.Valid() {
			t.Errorf("JobStatus(%q).Valid() = false, want true", s)
		}
	}
	if JobStatus("cancelled").Valid() {
		t.Error("JobStatus(cancelled).Valid() = true, want false")
	}
}

func TestServiceErrorMessage(t *testing.T) {
	err := &ServiceError{Code: "NOT_FOUND", Message: "job not found"}
	if err.Error() != "job not found" {
		t.Errorf("Error() = %q, want %q", err.Error(), "job not found")
	}
}
