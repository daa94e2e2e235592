package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QuestionsDuePerDay != 10 {
		t.Errorf("questions_due_per_day = %d, want 10", cfg.QuestionsDuePerDay)
	}
	if cfg.DatetimeFormat != "2006-01-02" {
		t.Errorf("datetime_format = %q, want 2006-01-02", cfg.DatetimeFormat)
	}
	if cfg.Database == "" {
		t.Error("database path should have a default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drillbook.yaml")
	body := "questions_due_per_day: 5\ndatetime_format: \"02 Jan 2006\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QuestionsDuePerDay != 5 {
		t.Errorf("questions_due_per_day = %d, want 5", cfg.QuestionsDuePerDay)
	}
	if cfg.DatetimeFormat != "02 Jan 2006" {
		t.Errorf("datetime_format = %q, want %q", cfg.DatetimeFormat, "02 Jan 2006")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drillbook.yaml")
	if err := os.WriteFile(path, []byte("questions_due_per_day: 5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("DRILLBOOK_QUESTIONS_DUE_PER_DAY", "3")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.QuestionsDuePerDay != 3 {
		t.Errorf("questions_due_per_day = %d, want env override 3", cfg.QuestionsDuePerDay)
	}
}

func TestLoadFlagsWinOverEnv(t *testing.T) {
	t.Setenv("DRILLBOOK_DATABASE", "/tmp/env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database", "", "")
	if err := flags.Parse([]string{"--database", "/tmp/flag.db"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != "/tmp/flag.db" {
		t.Errorf("database = %q, want flag override /tmp/flag.db", cfg.Database)
	}
}

func TestLoadRejectsNonPositiveLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drillbook.yaml")
	if err := os.WriteFile(path, []byte("questions_due_per_day: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("expected an error for questions_due_per_day = 0")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drillbook.yaml")
	if err := os.WriteFile(path, []byte(":\n\t bad yaml ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}
