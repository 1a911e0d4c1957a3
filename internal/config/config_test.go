package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8086 {
		t.Errorf("server defaults wrong: %+v", cfg.Server)
	}
	if cfg.Analysis.KBLimit != 10 || cfg.Analysis.ScriptLimit != 5 {
		t.Errorf("analysis defaults wrong: %+v", cfg.Analysis)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("llm defaults wrong: %+v", cfg.LLM)
	}
}

func TestLoadExpandsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "corpus:\n  workbook_path: ./corpus.xlsx\nsession:\n  database_path: ./db/session.db\n"
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Corpus.WorkbookPath != filepath.Join(dir, "corpus.xlsx") {
		t.Errorf("workbook path not expanded: %s", cfg.Corpus.WorkbookPath)
	}
	if cfg.Session.DatabasePath != filepath.Join(dir, "db/session.db") {
		t.Errorf("database path not expanded: %s", cfg.Session.DatabasePath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing config file should error")
	}
}
