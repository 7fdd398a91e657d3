package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name    string `envconfig:"NAME" required:"true"`
	Size    int    `envconfig:"SIZE" default:"3"`
	Enabled bool   `envconfig:"ENABLED"`
}

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNewReadsEnvFile(t *testing.T) {
	path := writeEnvFile(t, "CFGTEST_NAME=demo\nCFGTEST_ENABLED=true\n")
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGTEST_NAME")
		_ = os.Unsetenv("CFGTEST_ENABLED")
	})

	SetEnvFile(path)
	got, err := New[testConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got.Name != "demo" || got.Size != 3 || !got.Enabled {
		t.Fatalf("New() = %+v", got)
	}
}

func TestNewEnvironmentWinsOverFile(t *testing.T) {
	path := writeEnvFile(t, "CFGPREC_NAME=from-file\nCFGPREC_SIZE=9\n")
	t.Setenv("CFGPREC_NAME", "from-env")
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGPREC_SIZE")
	})

	SetEnvFile(path)
	got, err := New[testConfig]("CFGPREC")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got.Name != "from-env" || got.Size != 9 {
		t.Fatalf("New() = %+v, want env name and file size", got)
	}
}

func TestNewExportsFileOnce(t *testing.T) {
	path := writeEnvFile(t, "CFGONCE_NAME=first\n")
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGONCE_NAME")
	})

	SetEnvFile(path)
	if _, err := New[testConfig]("CFGONCE"); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("not a valid env line\n=\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := New[testConfig]("CFGONCE")
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	if got.Name != "first" {
		t.Fatalf("New() = %+v", got)
	}
}

func TestNewMissingEnvFile(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })

	SetEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	if _, err := New[testConfig]("CFGTEST_MISSING"); err == nil {
		t.Fatalf("New() error = nil, want missing file error")
	}
}

func TestNewRequiredField(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })

	SetEnvFile("")
	_, err := New[testConfig]("CFGTEST_REQUIRED")
	if err == nil {
		t.Fatalf("New() error = nil, want required field error")
	}
	if !strings.Contains(err.Error(), "cfgtest_required config") {
		t.Fatalf("New() error = %v, want prefix in message", err)
	}
}
