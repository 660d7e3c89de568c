package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/trackerrules/internal/config"
	"github.com/TimurManjosov/trackerrules/internal/importer"
	"github.com/TimurManjosov/trackerrules/internal/programrule"
)

func sampleReport() *importer.Report {
	return &importer.Report{
		RunID: "run-1",
		Events: programrule.Issues{
			"ev1": {{RuleID: "r1", Code: programrule.E1307, Type: programrule.IssueError, Args: []string{"deA"}}},
			"ev0": {{RuleID: "r2", Code: programrule.E1308, Type: programrule.IssueWarning, Args: []string{"deB", "5"}}},
		},
		Committable: importer.Objects{Events: []string{"ev0"}},
		Rejected:    importer.Objects{Events: []string{"ev1"}},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q): %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestPrintReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintReport(&buf, sampleReport(), FormatJSON); err != nil {
		t.Fatalf("PrintReport: %v", err)
	}

	var got reportView
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Status != importer.StatusError {
		t.Errorf("status = %s, want ERROR", got.Status)
	}
	if len(got.Issues) != 2 || got.Issues[0].UID != "ev0" {
		t.Fatalf("issues should be sorted by uid, got %+v", got.Issues)
	}
	if !strings.Contains(got.Issues[1].Message, "Unable to assign value to field `deA`") {
		t.Errorf("unexpected message %q", got.Issues[1].Message)
	}
}

func TestPrintReport_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintReport(&buf, sampleReport(), FormatYAML); err != nil {
		t.Fatalf("PrintReport: %v", err)
	}
	var got reportView
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got.RunID != "run-1" || len(got.Rejected.Events) != 1 {
		t.Errorf("unexpected report %+v", got)
	}
}

func TestPrintReport_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintReport(&buf, sampleReport(), FormatTable); err != nil {
		t.Fatalf("PrintReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"E1307", "ev1", "run run-1: ERROR", "rejected: 0 enrollment(s), 1 event(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintConfig(t *testing.T) {
	cfg := &config.Config{
		AppEnv:        "dev",
		StoreType:     "postgres",
		DatabaseDSN:   "postgres://user:secret@db/tracker",
		EngineWorkers: 4,
	}

	var buf bytes.Buffer
	if err := PrintConfig(&buf, cfg, FormatJSON); err != nil {
		t.Fatalf("PrintConfig: %v", err)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Errorf("DSN credentials leaked: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "postgres://****") {
		t.Errorf("expected masked DSN, got %s", buf.String())
	}

	buf.Reset()
	if err := PrintConfig(&buf, cfg, FormatTable); err != nil {
		t.Fatalf("PrintConfig table: %v", err)
	}
	if !strings.Contains(buf.String(), "ENGINE_WORKERS") {
		t.Errorf("table missing key: %s", buf.String())
	}
}
