package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testConfig writes a config file pointing storage at a temp notes file.
func testConfig(t *testing.T, driver string) (cfgPath, notesPath string) {
	t.Helper()
	dir := t.TempDir()
	notesPath = filepath.Join(dir, "notes."+driver)
	cfgPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("app:\n  log_level: ERROR\n  http:\n    port: 8080\nstorage:\n  driver: %s\n  path: %s\n", driver, notesPath)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, notesPath
}

func runCLI(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"jera", "--config", cfgPath}, args...)
	err := newCLI(&out).Run(context.Background(), argv)
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("jera %v: %v", args, err)
	}
	return out
}

func TestCLIEndToEnd(t *testing.T) {
	for _, driver := range []string{"json", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg, notesPath := testConfig(t, driver)

			idA := strings.TrimSpace(mustRun(t, cfg, "add", "-t", "A", "-m", "x", "-g", "Work"))
			if idA == "" {
				t.Fatal("add should print the note id")
			}
			if got := mustRun(t, cfg, "categories"); got != "Uncategorized\nWork\n" {
				t.Errorf("categories = %q", got)
			}

			mustRun(t, cfg, "add", "-t", "B", "-m", "y")
			list := mustRun(t, cfg, "list", "-g", "Work")
			if !strings.Contains(list, "Work") || strings.Count(list, "\n") != 2 {
				t.Errorf("filtered list = %q", list)
			}

			mustRun(t, cfg, "rm", "0")
			list = mustRun(t, cfg, "list")
			if strings.Contains(list, idA) || !strings.Contains(list, "B") {
				t.Errorf("list after rm = %q", list)
			}

			if _, err := os.Stat(notesPath); err != nil {
				t.Errorf("notes file not written: %v", err)
			}
		})
	}
}

func TestCLIEditKeepsOmittedFields(t *testing.T) {
	cfg, _ := testConfig(t, "json")
	id := strings.TrimSpace(mustRun(t, cfg, "add", "-t", "A", "-m", "x", "-g", "Work"))

	mustRun(t, cfg, "edit", "-m", "changed", id)
	show := mustRun(t, cfg, "show", "0")
	if !strings.HasPrefix(show, "A\nCategory: Work\n") || !strings.HasSuffix(show, "\nchanged\n") {
		t.Errorf("show = %q", show)
	}
}

func TestCLIValidationAndMissing(t *testing.T) {
	cfg, notesPath := testConfig(t, "json")

	if _, err := runCLI(t, cfg, "add", "-t", "", "-m", "x"); err == nil {
		t.Error("empty title should fail")
	}
	if _, err := os.Stat(notesPath); !os.IsNotExist(err) {
		t.Error("failed add should not write the notes file")
	}
	if _, err := runCLI(t, cfg, "rm", "3"); err == nil {
		t.Error("rm out of range should fail")
	}
	if _, err := runCLI(t, cfg, "show"); err == nil {
		t.Error("show without a ref should fail")
	}
}

func TestCLIMissingConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := runCLI(t, filepath.Join(dir, "absent.yaml"), "add", "-t", "A", "-m", "x"); err != nil {
		t.Fatalf("add with defaults: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.json")); err != nil {
		t.Errorf("default notes.json not written: %v", err)
	}
}
