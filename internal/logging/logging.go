package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	std        = logrus.New()
	configured sync.Once
)

func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(textFormatter())
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006/01/02 15:04:05"}
}

// ParseLevel maps a LOG_LEVEL value to a logrus level. Anything it does not
// recognize is treated as info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}

// Configure applies LOG_LEVEL, DEBUG and LOG_FORMAT from getenv. It runs
// lazily on first use with os.Getenv; calling it directly reconfigures.
func Configure(getenv func(string) string) {
	configured.Do(func() {})
	configure(getenv)
}

func configure(getenv func(string) string) {
	level := ParseLevel(getenv("LOG_LEVEL"))
	if on, err := strconv.ParseBool(getenv("DEBUG")); err == nil && on {
		level = logrus.DebugLevel
	}
	std.SetLevel(level)

	if strings.EqualFold(getenv("LOG_FORMAT"), "json") {
		std.SetFormatter(&logrus.JSONFormatter{})
	} else {
		std.SetFormatter(textFormatter())
	}
}

func ensure() {
	configured.Do(func() { configure(os.Getenv) })
}

func SetLevel(level logrus.Level) {
	ensure()
	std.SetLevel(level)
}

func GetLevel() logrus.Level {
	ensure()
	return std.GetLevel()
}

// SetOutput redirects everything written through this package.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func IsDebugEnabled() bool {
	return GetLevel() >= logrus.DebugLevel
}

// WithField starts a structured entry, e.g. WithField("component", "poster").
func WithField(key string, value interface{}) *logrus.Entry {
	ensure()
	return std.WithField(key, value)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	ensure()
	return std.WithFields(fields)
}

func Debug(format string, args ...interface{}) {
	ensure()
	std.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	ensure()
	std.Infof(format, args...)
}

func Warn(format string, args ...interface{}) {
	ensure()
	std.Warnf(format, args...)
}

func Error(format string, args ...interface{}) {
	ensure()
	std.Errorf(format, args...)
}

// Fatal logs at fatal level and exits with status 1.
func Fatal(format string, args ...interface{}) {
	ensure()
	std.Fatalf(format, args...)
}
