package internal

import (
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// LogFormatEnv selects the log format before config is loaded: "json" or text.
const LogFormatEnv = "MILLIE_LOG_FORMAT"

var (
	once   sync.Once
	logger *logrus.Logger
)

// GetLogger returns the process-wide logger. Its level is raised or lowered
// by SetLogLevel once config.yaml has been read.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.Out = os.Stdout
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(newFormatter(os.Getenv(LogFormatEnv)))
	})

	return logger
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		PadLevelText:  true,
	}
}

func SetLogLevel(level logrus.Level) {
	GetLogger().SetLevel(level)
}

var _ retryablehttp.LeveledLogger = &RetryLogger{}

// RetryLogger adapts logrus to the key/value logger retryablehttp calls on
// every attempt. Retry warnings drop to debug; the caller reports the final
// failure.
type RetryLogger struct {
	logger *logrus.Logger
}

func NewRetryLogger(logger *logrus.Logger) *RetryLogger {
	return &RetryLogger{logger: logger}
}

func (l *RetryLogger) entry(keysAndValues []interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return l.logger.WithFields(fields)
}

func (l *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error(msg)
}

func (l *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Info(msg)
}

func (l *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}
