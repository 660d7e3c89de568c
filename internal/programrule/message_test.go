package programrule

import (
	"testing"

	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

func TestRenderMessage(t *testing.T) {
	tests := []struct {
		name   string
		effect RuleEffect
		want   string
	}{
		{"content only", RuleEffect{Content: "Too old"}, "Too old"},
		{"content and data", RuleEffect{Content: "Age is", Data: "120"}, "Age is 120"},
		{"with field", RuleEffect{Content: "Too old", Data: "120", Field: "deAge"}, "Too old 120 (deAge)"},
		{"field only", RuleEffect{Field: "deAge"}, "(deAge)"},
		{"empty", RuleEffect{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderMessage(tt.effect); got != tt.want {
				t.Errorf("renderMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShowMessage(t *testing.T) {
	effect := RuleEffect{RuleID: "r1", Kind: ActionShowError, Content: "Bad value"}

	got := showMessage(effect, IssueError)
	if len(got) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(got))
	}
	if got[0].Code != E1300 || got[0].Type != IssueError || got[0].RuleID != "r1" {
		t.Errorf("unexpected issue %+v", got[0])
	}
	if want := "Generated by program rule (`r1`) - Bad value"; got[0].Message() != want {
		t.Errorf("Message() = %q, want %q", got[0].Message(), want)
	}
}

func TestShowMessageOnComplete(t *testing.T) {
	effect := RuleEffect{RuleID: "r1", Kind: ActionWarningOnComplete, Content: "Check"}

	tests := []struct {
		status tracker.Status
		want   int
	}{
		{tracker.EventActive, 0},
		{tracker.EventSchedule, 0},
		{tracker.EventCompleted, 1},
		{tracker.EnrollmentCancelled, 0},
		{tracker.EnrollmentCompleted, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := showMessageOnComplete(effect, tt.status, IssueWarning)
			if len(got) != tt.want {
				t.Fatalf("expected %d issues, got %v", tt.want, got)
			}
			if tt.want == 1 && got[0].Type != IssueWarning {
				t.Errorf("type = %s, want WARNING", got[0].Type)
			}
		})
	}
}
