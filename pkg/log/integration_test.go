package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/YuminosukeSato/carprep/pkg/errors"
)

func TestTestLogger_Levels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("debug message")
	testLogger.Info("info message", OperationKey, OperationFit, SamplesKey, 181)
	testLogger.Warn("warning message")

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty string")
	}
	if testLogger.ContainsMessage("debug message") {
		t.Error("Debug message should not appear when level is Info")
	}
	if !testLogger.ContainsMessage("info message") {
		t.Error("Info message not found in output")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Expected operation field not found")
	}
	// JSON unmarshaling converts numbers to float64
	if !testLogger.ContainsField(SamplesKey, 181.0) {
		t.Error("Expected samples field not found")
	}

	ctx := context.Background()
	if testLogger.Enabled(ctx, LevelDebug) {
		t.Error("Logger should not be enabled for Debug level")
	}
	if !testLogger.Enabled(ctx, LevelError) {
		t.Error("Logger should be enabled for Error level")
	}
}

func TestTestLogger_LeadingError(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	testLogger.Error("preprocessing failed", fmt.Errorf("boom"), StageKey, "load")

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0][ErrAttrKey] != "boom" {
		t.Errorf("error = %v, want boom", entries[0][ErrAttrKey])
	}
	if entries[0][StageKey] != "load" {
		t.Errorf("stage = %v, want load", entries[0][StageKey])
	}
}

func TestTestLogger_With(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(ModelNameKey, "ColumnTransformer", ComponentKey, "compose")
	contextLogger.Info("contextual message", BranchKey, "num_pipeline")

	if !testLogger.ContainsField(ModelNameKey, "ColumnTransformer") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(BranchKey, "num_pipeline") {
		t.Error("Branch field not found")
	}

	testLogger.Clear()
	if testLogger.ContainsMessage("contextual message") {
		t.Error("Clear should drop captured output")
	}
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProviderWithWriter(&buf, LevelInfo, false)
	logger := provider.GetLoggerWithName("transformation")

	logger.Debug("hidden")
	logger.Info("Read train and test data completed", SamplesKey, 181, ColumnsKey, []string{"price"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["message"] != "Read train and test data completed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[ComponentKey] != "transformation" {
		t.Errorf("component = %v", entry[ComponentKey])
	}
	if entry[SamplesKey] != 181.0 {
		t.Errorf("samples = %v", entry[SamplesKey])
	}

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at info level")
	}

	provider.SetLevel(LevelDebug)
	if !provider.GetLogger().Enabled(context.Background(), LevelDebug) {
		t.Error("new loggers should pick up the provider level")
	}
}

func TestZerologProvider_StructuredError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProviderWithWriter(&buf, LevelDebug, false).GetLogger()

	cause := errors.NewColumnError("drop", "car_ID")
	logger.Error("preprocessing failed", errors.NewTransformationError("Prepare", "drop columns", cause))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := entry[ErrAttrKey]; !ok {
		t.Fatal("error key missing")
	}
	detail, ok := entry[ErrAttrKey+"_detail"].(map[string]interface{})
	if !ok {
		t.Fatalf("error detail missing: %v", entry)
	}
	if detail["stage"] != "drop columns" {
		t.Errorf("stage = %v", detail["stage"])
	}
}

func TestRouteWarnings(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)
	RouteWarnings(testLogger)
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewUnknownCategoryWarning("company", []string{"subaru"}))

	if !testLogger.ContainsMessage("subaru") {
		t.Error("warning was not routed to the logger")
	}
}

func TestSetupLoggerWithWriter(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, "info")

	slog.Error("persist failed", ErrAttr(errors.NewValueError("SaveModel", "disk full")))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["severity"] != "ERROR" {
		t.Errorf("severity = %v", entry["severity"])
	}
	if entry["message"] != "persist failed" {
		t.Errorf("message = %v", entry["message"])
	}
	if _, ok := entry[StacktraceAttrKey]; !ok {
		t.Error("stacktrace attribute missing")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
