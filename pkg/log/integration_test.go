package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
)

// TestLoggerInterface tests the TestLogger implementation of Logger
func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationLoad)
	testLogger.Warn("warning message", ErrorCodeKey, "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, "TEST_ERROR")

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty buffer")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) { // JSON numbers decode as float64
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrorKey, "test error") {
		t.Error("leading error should be logged under ErrorKey")
	}
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelTypeKey, "logistic_regression",
		ComponentKey, "loader",
	)
	contextLogger.Info("model loaded", FeaturesKey, 3)

	if !testLogger.ContainsField(ModelTypeKey, "logistic_regression") {
		t.Error("model type context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "loader") {
		t.Error("component context not found")
	}

	// The parent logger must not inherit the child's fields.
	testLogger.Clear()
	testLogger.Info("plain")
	if testLogger.ContainsField(ComponentKey, "loader") {
		t.Error("With leaked fields into the parent logger")
	}
}

func TestLogLevelFiltering(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("debug message")
	testLogger.Info("info message")
	testLogger.Warn("warn message")

	if testLogger.ContainsMessage("debug message") || testLogger.ContainsMessage("info message") {
		t.Error("messages below the level should be filtered")
	}
	if !testLogger.ContainsMessage("warn message") {
		t.Error("warn message should pass")
	}
	if testLogger.Enabled(context.Background(), LevelInfo) {
		t.Error("Enabled(Info) should be false at Warn level")
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("hidden")
	logger.With(ComponentKey, "loader").Info("model loaded",
		SourceKey, "models/spam.json",
		SizeKey, 128,
	)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["message"] != "model loaded" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry[ComponentKey] != "loader" || entry[SourceKey] != "models/spam.json" {
		t.Errorf("missing context fields: %v", entry)
	}
	if entry[SizeKey] != 128.0 {
		t.Errorf("%s = %v, want 128", SizeKey, entry[SizeKey])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected a timestamp")
	}
}

func TestZerologLogger_ErrorDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := lserrors.NewModelTooLargeError("big.json", 2048, 1024)
	logger.Error("model load failed", err, OperationKey, OperationLoad)

	var entry map[string]interface{}
	if jerr := json.Unmarshal(buf.Bytes(), &entry); jerr != nil {
		t.Fatalf("output is not JSON: %v", jerr)
	}
	if entry[ErrorKey] != err.Error() {
		t.Errorf("%s = %v, want %q", ErrorKey, entry[ErrorKey], err.Error())
	}
	if st, _ := entry[StacktraceKey].(string); !strings.Contains(st, "integration_test.go") {
		t.Errorf("stack trace should point at the caller, got %q", st)
	}
	detail, ok := entry[ErrorKey+".detail"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error detail object, got %v", entry[ErrorKey+".detail"])
	}
	if detail["limit"] != 1024.0 {
		t.Errorf("detail limit = %v, want 1024", detail["limit"])
	}
}

func TestZerologLogger_Enabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)
	ctx := context.Background()

	if logger.Enabled(ctx, LevelInfo) {
		t.Error("Info should be disabled at Warn")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("Error should be enabled at Warn")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestProvider(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	original := GetProvider()
	SetProvider(provider)
	defer SetProvider(original)

	GetLoggerWithName("registry").Info("cache miss", CacheKey, "spam")

	if !provider.Logger().ContainsField(ComponentKey, "registry") {
		t.Error("named logger should carry the component field")
	}

	SetLevel(LevelError)
	GetLogger().Info("suppressed")
	if provider.Logger().ContainsMessage("suppressed") {
		t.Error("SetLevel should apply to the default provider")
	}
}

func TestWarningsRouteToLogger(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelDebug)
	original := GetProvider()
	SetProvider(provider)
	defer SetProvider(original)

	lserrors.Warn(lserrors.NewUnknownModelTypeWarning("inline", "gbdt", "one_vs_all"))

	if !provider.Logger().ContainsMessage(`unknown modelType \"gbdt\"`) {
		t.Error("warning should be logged by the default provider")
	}
	if !provider.Logger().ContainsField(ComponentKey, "warnings") {
		t.Error("warnings should be tagged with their component")
	}
}

func TestZerologProvider_SetOutput(t *testing.T) {
	var first, second bytes.Buffer
	provider := NewZerologProvider(&first, LevelInfo)

	provider.GetLogger().Info("one")
	provider.SetOutput(&second)
	provider.GetLoggerWithName("cli").Info("two")

	if !strings.Contains(first.String(), "one") || strings.Contains(first.String(), "two") {
		t.Errorf("unexpected first output %q", first.String())
	}
	if !strings.Contains(second.String(), `"ml.component":"cli"`) {
		t.Errorf("unexpected second output %q", second.String())
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			testLogger.With("goroutine", id).Info("scored", SamplesKey, id)
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("failed to parse entries: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("expected 10 entries, got %d", len(entries))
	}
}

func BenchmarkZerologLogger(b *testing.B) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelInfo).With(ComponentKey, "bench")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("predict", SamplesKey, i)
	}
}
