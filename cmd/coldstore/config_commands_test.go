package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Errorf("output should name the target, got %q", out)
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(raw), "[compression]") {
		t.Errorf("sample should contain the compression section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# mine"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("existing config should refuse init")
	}
	raw, err := os.ReadFile(target)
	if err != nil || string(raw) != "# mine" {
		t.Error("existing config must survive untouched")
	}
}

func TestConfigShowRendersToml(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatal(err)
	}
	out, err := runCommand(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, section := range []string{"[output]", "[compression]", "[redundancy]", "[tools]"} {
		if !strings.Contains(out, section) {
			t.Errorf("rendered config missing %s section:\n%s", section, out)
		}
	}
}

func TestConfigShowRejectsMissingExplicitFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	if _, err := runCommand(t, "--config", missing, "config", "show"); err == nil {
		t.Fatal("explicitly named missing config should fail")
	}
}
