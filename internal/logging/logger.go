package logging

import (
	"fmt"
	"os"
	"regexp"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "LIGHTSTACK_LOG_LEVEL"

// LogFileEnvVar names a file to log to instead of stderr. The dashboard owns
// the terminal, so interactive sessions should always log to a file.
const LogFileEnvVar = "LIGHTSTACK_LOG_FILE"

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Empty falls back to
	// LIGHTSTACK_LOG_LEVEL, and then to silent mode.
	Level string

	// File is the log destination. Empty falls back to LIGHTSTACK_LOG_FILE,
	// and then to stderr.
	File string

	// JSON switches the encoder from console to JSON.
	JSON bool
}

// InitializeWith creates the global logger from opts.
func InitializeWith(opts Options) error {
	l, err := Build(opts)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Build constructs a logger without installing it globally.
func Build(opts Options) (*zap.Logger, error) {
	level := opts.Level
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		return zap.NewNop(), nil
	}

	output := opts.File
	if output == "" {
		output = os.Getenv(LogFileEnvVar)
	}
	if output == "" {
		output = "stderr"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
	if opts.JSON {
		config.Encoding = "json"
		config.EncoderConfig = zap.NewProductionEncoderConfig()
	}

	// Colors only make sense on a terminal
	if output == "stderr" || output == "stdout" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	l, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// LogConnection logs a change in the Home Assistant connection.
func LogConnection(l *zap.Logger, url string, event string) {
	l.Info("Connection event",
		zap.String("url", url),
		zap.String("event", event),
	)
}

// LogWebSocketMessage logs a frame at debug level with access tokens masked.
func LogWebSocketMessage(l *zap.Logger, url string, direction string, messageType int, data []byte) {
	if !l.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.Debug("WebSocket message",
		zap.String("url", url),
		zap.String("direction", direction),
		zap.String("message_type", frameTypeName(messageType)),
		zap.Int("length", len(data)),
		zap.String("content", preview(data)),
	)
}

// LogServiceCall logs an outgoing Home Assistant service call.
func LogServiceCall(l *zap.Logger, domain, service string, data, target map[string]any, err error) {
	fields := []zap.Field{
		zap.String("domain", domain),
		zap.String("service", service),
		zap.Any("data", data),
	}
	if target != nil {
		fields = append(fields, zap.Any("target", target))
	}
	if err != nil {
		l.Warn("Service call failed", append(fields, zap.Error(err))...)
		return
	}
	l.Info("Service call", fields...)
}

// LogMalformedFrame logs a frame that could not be decoded.
func LogMalformedFrame(l *zap.Logger, url string, data []byte) {
	l.Debug("Ignoring malformed frame",
		zap.String("url", url),
		zap.Int("length", len(data)),
		zap.String("content", preview(data)),
	)
}

var tokenPattern = regexp.MustCompile(`("access_token"\s*:\s*")[^"]*(")`)

// RedactTokens masks access_token values in a JSON document.
func RedactTokens(s string) string {
	return tokenPattern.ReplaceAllString(s, `${1}***${2}`)
}

// maxPreview bounds the logged part of a frame. get_states answers run to
// megabytes on large installations.
const maxPreview = 2048

func preview(data []byte) string {
	s := RedactTokens(string(data))
	if len(s) > maxPreview {
		return s[:maxPreview] + "..."
	}
	return s
}

func frameTypeName(messageType int) string {
	switch messageType {
	case websocket.TextMessage:
		return "text"
	case websocket.BinaryMessage:
		return "binary"
	case websocket.CloseMessage:
		return "close"
	case websocket.PingMessage:
		return "ping"
	case websocket.PongMessage:
		return "pong"
	default:
		return fmt.Sprintf("unknown(%d)", messageType)
	}
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
