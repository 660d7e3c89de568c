package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("ENGINE_WORKERS", "2")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("RULE_ENGINE_ASSIGN_OVERWRITE", "false")

	// Flag values persist between Execute calls on the package-level commands.
	format, logLevel, verbose, allowOverwrite = "table", "", false, false
	t.Cleanup(func() {
		_ = validateCmd.Flags().Set("allow-overwrite", "false")
		validateCmd.Flags().Lookup("allow-overwrite").Changed = false
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand_Rejected(t *testing.T) {
	out, err := runCommand(t, "validate", "../../../internal/bundlefile/testdata/bundle.yaml", "--format", "json")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if !strings.Contains(out, `"status": "ERROR"`) || !strings.Contains(out, "E1307") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommand_AllowOverwrite(t *testing.T) {
	out, err := runCommand(t, "validate", "../../../internal/bundlefile/testdata/bundle.yaml", "--format", "yaml", "--allow-overwrite")
	if err != nil {
		t.Fatalf("expected success with overwrite, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "status: WARNING") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestValidateCommand_MissingFile(t *testing.T) {
	if _, err := runCommand(t, "validate", "does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := runCommand(t, "config", "--format", "json")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "ENGINE_WORKERS") || !strings.Contains(out, `"2"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}
