package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

var sentryEnabled bool

// Options controls how the process-wide logger is configured.
type Options struct {
	Level       string
	Format      string
	SentryDSN   string
	Environment string
}

// Setup configures logrus and, when a DSN is given, the Sentry client.
func Setup(opts Options) error {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if opts.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Environment,
	}); err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	sentryEnabled = true
	return nil
}

// Flush waits for buffered Sentry events to be sent.
func Flush() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

// LogError logs an error with structured context and reports it to Sentry.
func LogError(errorType string, err error, fields logrus.Fields) {
	entry := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	}).WithFields(fields)
	entry.Error("error occurred")

	if !sentryEnabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range fields {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs a notable event and records it as a Sentry breadcrumb.
func LogEvent(eventType string, fields logrus.Fields) {
	logrus.WithField("event_type", eventType).WithFields(fields).Info("event occurred")

	if !sentryEnabled {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      fields,
		Timestamp: time.Now(),
	})
}

// GormLevel maps a logrus level name onto GORM's coarser levels.
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "trace", "debug":
		return gormlogger.Info
	case "info", "warn", "warning":
		return gormlogger.Warn
	case "error", "fatal", "panic":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
