package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/TimurManjosov/trackerrules/internal/programrule"
)

// Status summarizes a report.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
)

// Report is the outcome of one validation run.
type Report struct {
	RunID       string             `json:"runId" yaml:"runId"`
	Enrollments programrule.Issues `json:"enrollments" yaml:"enrollments"`
	Events      programrule.Issues `json:"events" yaml:"events"`
	Committable Objects            `json:"committable" yaml:"committable"`
	Rejected    Objects            `json:"rejected" yaml:"rejected"`
}

// Status is ERROR when any object was rejected, WARNING when only warnings
// were raised and OK otherwise.
func (r *Report) Status() Status {
	switch {
	case r.Rejected.Count() > 0:
		return StatusError
	case r.Enrollments.Count()+r.Events.Count() > 0:
		return StatusWarning
	default:
		return StatusOK
	}
}

// Fingerprint hashes the issues and the commit decision, ignoring RunID.
// Two runs over the same input produce the same fingerprint.
func (r *Report) Fingerprint() string {
	h := xxhash.New()
	writeIssues(h, "enrollment", r.Enrollments)
	writeIssues(h, "event", r.Events)
	for _, uid := range r.Rejected.Enrollments {
		fmt.Fprintf(h, "rejected enrollment %s\n", uid)
	}
	for _, uid := range r.Rejected.Events {
		fmt.Fprintf(h, "rejected event %s\n", uid)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func writeIssues(h *xxhash.Digest, kind string, issues programrule.Issues) {
	uids := make([]string, 0, len(issues))
	for uid := range issues {
		uids = append(uids, uid)
	}
	sort.Strings(uids)
	for _, uid := range uids {
		for _, i := range issues[uid] {
			fmt.Fprintf(h, "%s %s %s %s %s %s\n", kind, uid, i.RuleID, i.Code, i.Type, strings.Join(i.Args, "\x1f"))
		}
	}
}
