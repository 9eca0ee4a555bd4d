package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a flag value such as "debug" into a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "fatal":
		return LogLevelFatal, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelError:
		return logrus.ErrorLevel
	case LogLevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger interface defines the logging contract
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})

	SetLevel(level LogLevel)
	SetOutput(w io.Writer)
	SetFormat(format LogFormat)

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// LogFormat represents the log output format
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
	LogFormatCompact
)

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level       LogLevel
	Format      LogFormat
	Output      io.Writer
	EnableFile  bool
	FilePath    string
	EnableColor bool
}

// DefaultLoggerConfig returns a default logger configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:       LogLevelWarn,
		Format:      LogFormatText,
		Output:      os.Stderr,
		EnableFile:  false,
		EnableColor: true,
	}
}

// InspectLogger is the logrus-backed Logger implementation
type InspectLogger struct {
	base   *logrus.Logger
	entry  *logrus.Entry
	config *LoggerConfig
	file   *os.File
}

// NewLogger creates a new logger with the given configuration
func NewLogger(config *LoggerConfig) (*InspectLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	base := logrus.New()
	l := &InspectLogger{
		base:   base,
		entry:  logrus.NewEntry(base),
		config: config,
	}

	if err := l.setupOutput(); err != nil {
		return nil, fmt.Errorf("failed to setup logger output: %w", err)
	}
	l.SetLevel(config.Level)
	l.SetFormat(config.Format)

	return l, nil
}

// NewLoggerFrom wraps an existing logrus logger, e.g. one carrying a test hook
func NewLoggerFrom(base *logrus.Logger) *InspectLogger {
	return &InspectLogger{
		base:   base,
		entry:  logrus.NewEntry(base),
		config: &LoggerConfig{Level: LogLevelDebug, Output: base.Out},
	}
}

// NewDiscardLogger returns a logger that drops everything
func NewDiscardLogger() *InspectLogger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return NewLoggerFrom(base)
}

// OrDiscard returns l, or a discard logger when l is nil
func OrDiscard(l Logger) Logger {
	if l == nil {
		return NewDiscardLogger()
	}
	return l
}

// setupOutput configures the logger output
func (l *InspectLogger) setupOutput() error {
	output := l.config.Output
	if output == nil {
		output = os.Stderr
	}

	if l.config.EnableFile && l.config.FilePath != "" {
		dir := filepath.Dir(l.config.FilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(l.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		l.file = file
		output = io.MultiWriter(output, file)
	}

	l.base.SetOutput(output)
	return nil
}

func (l *InspectLogger) Debug(msg string, args ...interface{}) {
	l.entry.Logf(logrus.DebugLevel, msg, args...)
}

func (l *InspectLogger) Info(msg string, args ...interface{}) {
	l.entry.Logf(logrus.InfoLevel, msg, args...)
}

func (l *InspectLogger) Warn(msg string, args ...interface{}) {
	l.entry.Logf(logrus.WarnLevel, msg, args...)
}

func (l *InspectLogger) Error(msg string, args ...interface{}) {
	l.entry.Logf(logrus.ErrorLevel, msg, args...)
}

// Fatal logs a fatal message and exits
func (l *InspectLogger) Fatal(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}

// SetLevel sets the logging level
func (l *InspectLogger) SetLevel(level LogLevel) {
	l.config.Level = level
	l.base.SetLevel(level.logrusLevel())
}

// SetOutput sets the output writer
func (l *InspectLogger) SetOutput(w io.Writer) {
	l.config.Output = w
	l.setupOutput()
}

// SetFormat sets the log format
func (l *InspectLogger) SetFormat(format LogFormat) {
	l.config.Format = format

	switch format {
	case LogFormatJSON:
		l.base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	case LogFormatCompact:
		l.base.SetFormatter(&compactFormatter{color: l.config.EnableColor})
	default:
		l.base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     l.config.EnableColor,
			DisableColors:   !l.config.EnableColor,
		})
	}
}

// WithField returns a logger with an additional field
func (l *InspectLogger) WithField(key string, value interface{}) Logger {
	return &InspectLogger{
		base:   l.base,
		entry:  l.entry.WithField(key, value),
		config: l.config,
		file:   l.file,
	}
}

// WithFields returns a logger with additional fields
func (l *InspectLogger) WithFields(fields map[string]interface{}) Logger {
	return &InspectLogger{
		base:   l.base,
		entry:  l.entry.WithFields(logrus.Fields(fields)),
		config: l.config,
		file:   l.file,
	}
}

// Close closes the logger and any open files
func (l *InspectLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// compactFormatter prints "W 15:04:05 message"
type compactFormatter struct {
	color bool
}

func (f *compactFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	if f.color {
		b.WriteString(colorCode(e.Level))
	}
	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(&b, "%c %s %s", level[0], e.Time.Format("15:04:05"), e.Message)
	if f.color {
		b.WriteString("\033[0m")
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func colorCode(level logrus.Level) string {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "\033[36m"
	case logrus.InfoLevel:
		return "\033[32m"
	case logrus.WarnLevel:
		return "\033[33m"
	case logrus.ErrorLevel:
		return "\033[31m"
	default:
		return "\033[35m"
	}
}

// Global logger instance
var globalLogger Logger

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(config *LoggerConfig) error {
	logger, err := NewLogger(config)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() Logger {
	if globalLogger == nil {
		logger, _ := NewLogger(DefaultLoggerConfig())
		globalLogger = logger
	}
	return globalLogger
}
