// ABOUTME: Integration tests for the pelosync CLI.
// ABOUTME: Builds the binary and exercises the offline commands end to end.
package test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestOfflineWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(projectRoot, "pelosync")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/pelosync")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}
	defer os.Remove(binary)

	// Isolate all state in a temp directory
	tmpDir := t.TempDir()
	run := func(args ...string) (string, error) {
		cmd := exec.Command(binary, args...)
		cmd.Env = append(os.Environ(),
			"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
			"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
			"NO_COLOR=1",
		)
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Listing an empty library
	output, err := run("list")
	if err != nil {
		t.Fatalf("Failed to list: %v\n%s", err, output)
	}
	if !strings.Contains(output, "No workouts found") {
		t.Errorf("Expected empty-library message, got: %s", output)
	}

	// Export produces valid JSON even for an empty library
	output, err = run("export", "json")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	var export map[string]interface{}
	if jsonErr := json.Unmarshal([]byte(output), &export); jsonErr != nil {
		t.Errorf("Export is not valid JSON: %v\n%s", jsonErr, output)
	}
	if export["tool"] != "pelosync" {
		t.Errorf("Expected tool marker in export, got: %v", export["tool"])
	}

	// Backup, then listing backups
	output, err = run("backup")
	if err != nil {
		t.Fatalf("Failed to backup: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Backup written") {
		t.Errorf("Expected backup confirmation, got: %s", output)
	}

	output, err = run("backup", "list")
	if err != nil {
		t.Fatalf("Failed to list backups: %v\n%s", err, output)
	}
	if !strings.Contains(output, ".sql.gz") {
		t.Errorf("Expected backup file in listing, got: %s", output)
	}

	// Reshape rebuilds the web projection
	output, err = run("reshape")
	if err != nil {
		t.Fatalf("Failed to reshape: %v\n%s", err, output)
	}
	if !strings.Contains(output, "web_workouts rebuilt") {
		t.Errorf("Expected reshape confirmation, got: %s", output)
	}

	// Sync without credentials must fail fast with a clear message
	output, err = run("sync")
	if err == nil {
		t.Error("Expected sync to fail without credentials")
	}
	if !strings.Contains(output, "PELOTON_USERNAME") {
		t.Errorf("Expected credential hint, got: %s", output)
	}
}
