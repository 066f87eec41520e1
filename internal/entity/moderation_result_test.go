package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerationResultVerdictStatus(t *testing.T) {
	failedAt := func(s Stage) *Stage { return &s }

	tests := []struct {
		name   string
		result ModerationResult
		want   *string
	}{
		{"done approved", ModerationResult{Stage: StageDone}, strPtr(VerdictApproved)},
		{"done rejected", ModerationResult{Stage: StageDone, Flagged: true}, strPtr(VerdictRejected)},
		{"failed at classification", ModerationResult{Stage: StageFailed, FailedAt: failedAt(StageClassified)}, nil},
		{"failed at detection", ModerationResult{Stage: StageFailed, FailedAt: failedAt(StageDetected)}, nil},
		{"failed at routing", ModerationResult{Stage: StageFailed, FailedAt: failedAt(StageRouted), Flagged: true}, strPtr(VerdictRejected)},
		{"failed at report", ModerationResult{Stage: StageFailed, FailedAt: failedAt(StageReported)}, strPtr(VerdictApproved)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.result.VerdictStatus())
		})
	}
}

func strPtr(s string) *string {
	return &s
}
