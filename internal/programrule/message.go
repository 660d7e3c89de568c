package programrule

import (
	"strings"

	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// showMessage turns a SHOW_ERROR or SHOW_WARNING effect into an E1300 issue
// regardless of the entity status.
func showMessage(effect RuleEffect, issueType IssueType) []Issue {
	return []Issue{{
		RuleID: effect.RuleID,
		Code:   E1300,
		Type:   issueType,
		Args:   []string{renderMessage(effect)},
	}}
}

// showMessageOnComplete is showMessage restricted to completed entities.
func showMessageOnComplete(effect RuleEffect, status tracker.Status, issueType IssueType) []Issue {
	if !status.IsCompleted() {
		return nil
	}
	return showMessage(effect, issueType)
}

// renderMessage joins the rendered content with the evaluated data and
// names the target field, if any, in parentheses.
func renderMessage(effect RuleEffect) string {
	var sb strings.Builder
	sb.WriteString(effect.Content)
	if effect.Data != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(effect.Data)
	}
	if effect.Field != "" {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("(" + effect.Field + ")")
	}
	return sb.String()
}
