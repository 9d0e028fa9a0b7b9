package utils

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	standardErrorOutputPathConstant      = "stderr"
	consoleMessageKeyConstant            = "message"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	loggerBuildErrorTemplateConstant     = "unable to build %s logger: %w"
	diagnosticLoggerLabelConstant        = "diagnostic"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerOutputs bundles the loggers produced for a single CLI run.
type LoggerOutputs struct {
	// DiagnosticLogger carries structured telemetry in the requested encoding.
	DiagnosticLogger *zap.Logger
	// ConsoleLogger prints bare progress messages for human-readable runs. It is a no-op logger for structured runs.
	ConsoleLogger *zap.Logger
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	consoleSink zapcore.WriteSyncer
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a logger factory whose console logger writes to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{consoleSink: zapcore.Lock(os.Stderr)}
}

// NewLoggerFactoryWithConsoleSink constructs a logger factory whose console logger writes to the provided sink.
func NewLoggerFactoryWithConsoleSink(consoleSink zapcore.WriteSyncer) *LoggerFactory {
	if consoleSink == nil {
		return NewLoggerFactory()
	}
	return &LoggerFactory{consoleSink: consoleSink}
}

// DefaultLogFormat selects console output when the file is an interactive terminal and structured output otherwise.
func DefaultLogFormat(file *os.File) LogFormat {
	if file == nil {
		return LogFormatStructured
	}
	descriptor := file.Fd()
	if isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor) {
		return LogFormatConsole
	}
	return LogFormatStructured
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	configuration.OutputPaths = []string{standardErrorOutputPathConstant}
	if requestedLogFormat == LogFormatConsole {
		configuration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, fmt.Errorf(loggerBuildErrorTemplateConstant, diagnosticLoggerLabelConstant, buildError)
	}

	return logger, nil
}

// CreateLoggerOutputs produces the diagnostic logger and, for console runs, a message-only progress logger.
//
// Progress lines honor the requested level so that debug runs also show read-only git queries.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	diagnosticLogger, diagnosticError := factory.CreateLogger(requestedLogLevel, requestedLogFormat)
	if diagnosticError != nil {
		return LoggerOutputs{}, diagnosticError
	}

	if requestedLogFormat != LogFormatConsole {
		return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.NewNop()}, nil
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: consoleMessageKeyConstant,
		LineEnding: zapcore.DefaultLineEnding,
	})
	consoleCore := zapcore.NewCore(consoleEncoder, factory.consoleSink, logLevelMapping[requestedLogLevel])

	return LoggerOutputs{DiagnosticLogger: diagnosticLogger, ConsoleLogger: zap.New(consoleCore)}, nil
}
