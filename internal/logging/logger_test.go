package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildSilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	l, err := Build(Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without a level should be silent")
	}
}

func TestBuildWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightstack.log")

	l, err := Build(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	LogWebSocketMessage(l, "ws://ha.local:8123/api/websocket", "sent", 1,
		[]byte(`{"type":"auth","access_token":"secret-token"}`))
	LogServiceCall(l, "light", "turn_on", map[string]any{"entity_id": "light.kitchen"}, nil, errors.New("boom"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if strings.Contains(out, "secret-token") {
		t.Error("access token leaked into the log")
	}
	if !strings.Contains(out, "Service call failed") {
		t.Errorf("log missing service call entry:\n%s", out)
	}
}

func TestRedactTokens(t *testing.T) {
	in := `{"type": "auth", "access_token" : "abc.def"}`
	want := `{"type": "auth", "access_token" : "***"}`
	if got := RedactTokens(in); got != want {
		t.Errorf("RedactTokens() = %s, want %s", got, want)
	}
	if got := RedactTokens(`{"id":1}`); got != `{"id":1}` {
		t.Errorf("RedactTokens() changed a token-free document: %s", got)
	}
}

func TestGetLoggerNeverNil(t *testing.T) {
	logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
	GetLogger().Info("silent")
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("a", maxPreview+10)
	got := preview([]byte(long))
	if len(got) != maxPreview+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview() length = %d", len(got))
	}
	if got := preview([]byte(`{"access_token":"x"}`)); got != `{"access_token":"***"}` {
		t.Errorf("preview() = %s", got)
	}
}

func TestInitializeWithInstallsGlobal(t *testing.T) {
	defer func() { logger = nil }()

	path := filepath.Join(t.TempDir(), "global.log")
	if err := InitializeWith(Options{Level: "warn", File: path}); err != nil {
		t.Fatalf("InitializeWith() error = %v", err)
	}
	GetLogger().Info("hidden")
	GetLogger().Warn("shown")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
		t.Errorf("log = %q", data)
	}
}
