package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/carprep/pkg/errors"
	"github.com/YuminosukeSato/carprep/pkg/log"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "carprep.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Artifacts.PreprocessorPath != filepath.Join("artifacts", "preprocessor.gob") {
		t.Errorf("PreprocessorPath = %q", cfg.Artifacts.PreprocessorPath)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Report.Bins != 20 || cfg.Report.PlotDir != "" {
		t.Errorf("Report = %+v", cfg.Report)
	}
	if cfg.LogLevel() != log.LevelInfo {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data:
  train_path: data/train.csv
artifacts:
  preprocessor_path: out/pre.gob
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.TrainPath != "data/train.csv" {
		t.Errorf("TrainPath = %q", cfg.Data.TrainPath)
	}
	// ファイルに無いキーはデフォルトのまま
	if cfg.Data.TestPath != filepath.Join("artifacts", "test.csv") {
		t.Errorf("TestPath = %q", cfg.Data.TestPath)
	}
	if cfg.Artifacts.PreprocessorPath != "out/pre.gob" {
		t.Errorf("PreprocessorPath = %q", cfg.Artifacts.PreprocessorPath)
	}
	if cfg.LogLevel() != log.LevelDebug {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "artifacts:\n  preprocessor_path: out/pre.gob\n")
	t.Setenv("CARPREP_ARTIFACTS_PREPROCESSOR_PATH", "env/pre.gob")
	t.Setenv("CARPREP_LOGGING_FORMAT", "console")
	t.Setenv("CARPREP_REPORT_BINS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Artifacts.PreprocessorPath != "env/pre.gob" {
		t.Errorf("PreprocessorPath = %q", cfg.Artifacts.PreprocessorPath)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Format = %q", cfg.Logging.Format)
	}
	if cfg.Report.Bins != 7 {
		t.Errorf("Bins = %d", cfg.Report.Bins)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid level", "logging:\n  level: verbose\n"},
		{"invalid format", "logging:\n  format: xml\n"},
		{"empty artifact path", "artifacts:\n  preprocessor_path: \"\"\n"},
		{"zero bins", "report:\n  bins: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	if _, err := Load(writeConfig(t, "logging: [")); err == nil {
		t.Error("expected YAML parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}
