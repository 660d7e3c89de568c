// Package cli renders command output for the trackerrules CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/trackerrules/internal/importer"
	"github.com/TimurManjosov/trackerrules/internal/programrule"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// reportView is the serialized form of a report.
type reportView struct {
	RunID       string           `json:"runId" yaml:"runId"`
	Status      importer.Status  `json:"status" yaml:"status"`
	Fingerprint string           `json:"fingerprint" yaml:"fingerprint"`
	Issues      []issueRow       `json:"issues" yaml:"issues"`
	Committable importer.Objects `json:"committable" yaml:"committable"`
	Rejected    importer.Objects `json:"rejected" yaml:"rejected"`
}

type issueRow struct {
	Entity  string                `json:"entity" yaml:"entity"`
	UID     string                `json:"uid" yaml:"uid"`
	RuleID  string                `json:"ruleId" yaml:"ruleId"`
	Code    programrule.IssueCode `json:"code" yaml:"code"`
	Type    programrule.IssueType `json:"type" yaml:"type"`
	Message string                `json:"message" yaml:"message"`
}

// PrintReport writes r to w in the given format.
func PrintReport(w io.Writer, r *importer.Report, format OutputFormat) error {
	view := reportView{
		RunID:       r.RunID,
		Status:      r.Status(),
		Fingerprint: r.Fingerprint(),
		Issues:      append(issueRows("ENROLLMENT", r.Enrollments), issueRows("EVENT", r.Events)...),
		Committable: r.Committable,
		Rejected:    r.Rejected,
	}
	switch format {
	case FormatJSON:
		return printJSON(w, view)
	case FormatYAML:
		return printYAML(w, view)
	case FormatTable:
		return printReportTable(w, view)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func issueRows(entity string, issues programrule.Issues) []issueRow {
	uids := make([]string, 0, len(issues))
	for uid := range issues {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	rows := []issueRow{}
	for _, uid := range uids {
		for _, i := range issues[uid] {
			rows = append(rows, issueRow{
				Entity:  entity,
				UID:     uid,
				RuleID:  i.RuleID,
				Code:    i.Code,
				Type:    i.Type,
				Message: i.Message(),
			})
		}
	}
	return rows
}

func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printReportTable(w io.Writer, view reportView) error {
	table := tablewriter.NewWriter(w)
	table.Header("Entity", "UID", "Rule", "Code", "Type", "Message")
	for _, row := range view.Issues {
		message := row.Message
		if len(message) > 80 {
			message = message[:77] + "..."
		}
		if err := table.Append(row.Entity, row.UID, row.RuleID, string(row.Code), string(row.Type), message); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nrun %s: %s (fingerprint %s)\ncommittable: %d enrollment(s), %d event(s)\nrejected: %d enrollment(s), %d event(s)\n",
		view.RunID, view.Status, view.Fingerprint,
		len(view.Committable.Enrollments), len(view.Committable.Events),
		len(view.Rejected.Enrollments), len(view.Rejected.Events))
	return err
}
