package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Document.PageClass != "page" || cfg.Document.Page.Size != "A4" {
		t.Errorf("Document = %+v, want page class and A4", cfg.Document)
	}
	if cfg.Document.Overflow != "error" || cfg.Document.Output.Format != "html" {
		t.Errorf("Document = %+v", cfg.Document)
	}
	if cfg.Document.Tolerance != 0.000001 {
		t.Errorf("Tolerance = %v, want 1e-6", cfg.Document.Tolerance)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `version: 1
document:
  page_class: sheet
  page:
    size: custom
    width: 100mm
    height: 150mm
  capacity: 400
  overflow: place
  output:
    format: pdf
    title: Report
logging:
  console:
    level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	d := cfg.Document
	if d.PageClass != "sheet" || d.Page.Size != "custom" || d.Page.Width != "100mm" || d.Page.Height != "150mm" {
		t.Errorf("Document = %+v", d)
	}
	if d.Capacity != 400 || d.Overflow != "place" || d.Output.Format != "pdf" || d.Output.Title != "Report" {
		t.Errorf("Document = %+v", d)
	}
	// values missing from the file keep their defaults
	if d.Tolerance != 0.000001 || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("defaults were lost: %+v", cfg)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "version: 1\ndocument:\n  margins: 10\n", "decode"},
		{"bad version", "version: 2\n", "invalid configuration"},
		{"bad overflow", "version: 1\ndocument:\n  overflow: drop\n", "invalid configuration"},
		{"custom without size", "version: 1\ndocument:\n  page:\n    size: custom\n", "invalid configuration"},
		{"negative capacity", "version: 1\ndocument:\n  capacity: -1\n", "invalid configuration"},
		{"selector in page class", "version: 1\ndocument:\n  page_class: .page\n", "invalid configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfiguration(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfiguration() error = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfiguration() of a missing file should fail")
	}
}

func TestDumpAndPrepare(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "page_class: page") {
		t.Errorf("Dump() = %s", data)
	}
	if !strings.Contains(string(Prepare()), "overflow: error") {
		t.Error("Prepare() lacks the overflow default")
	}
}

func TestLoggingPrepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "run.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hello from test")
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file = %q", data)
	}

	conf.FileLogger.Destination = ""
	if _, err := conf.Prepare(); err == nil {
		t.Error("Prepare() without destination should fail")
	}

	conf.FileLogger.Level = "none"
	if _, err := conf.Prepare(); err != nil {
		t.Errorf("Prepare() console only error = %v", err)
	}
}
